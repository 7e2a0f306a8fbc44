package domain

import "time"

type Group struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OwnerID        uint      `json:"owner_id"`
	Members        []uint    `json:"members"`
	InvitedMembers []string  `json:"invited_members"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (g Group) HasMember(userID uint) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

func (g Group) IsInvited(email string) bool {
	for _, e := range g.InvitedMembers {
		if e == email {
			return true
		}
	}
	return false
}
