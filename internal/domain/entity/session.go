package entity

import "time"

// SessionUser datos del usuario guardados en la sesión.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	Username string
	Role     Role
}

// Session sesión autenticada. Remember=true sobrevive reinicios; si no, vive lo que el proceso.
type Session struct {
	ID        string
	User      SessionUser
	Remember  bool
	CreatedAt time.Time
}

// Actor identidad a estampar en las ventas registradas en esta sesión.
func (s *Session) Actor() Actor {
	return Actor{UserID: s.User.ID, Name: s.User.Name, Role: s.User.Role}
}
