package models

// Session records a self-reported client context captured at login. The JWT
// itself stays stateless: revoking a session row does not invalidate a token
// that was already issued for it.
type Session struct {
	Base
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip_address"`
}
