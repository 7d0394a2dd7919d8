package domain

import "time"

// Ban representa una suspensión activa sobre un usuario.
// Email y Name se copian del usuario al momento del baneo.
type Ban struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Reason      string     `json:"reason,omitempty"`
	BannedUntil *time.Time `json:"bannedUntil,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Active indica si el ban sigue vigente en el instante dado.
// Sin BannedUntil el ban es permanente.
func (b Ban) Active(now time.Time) bool {
	if b.BannedUntil == nil {
		return true
	}
	return now.Before(*b.BannedUntil)
}
