package domain

import "time"

type Member struct {
	ID               int32     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	RotationPosition *int32    `json:"rotation_position,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// DisplayName falls back to the email and then to the member id when no name was recorded.
func (m *Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Email != "" {
		return m.Email
	}
	return fmtMemberID(m.ID)
}
