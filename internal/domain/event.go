package domain

import "time"

type EventStatus string

const (
	EventUpcoming   EventStatus = "upcoming"
	EventInProgress EventStatus = "in-progress"
	EventCompleted  EventStatus = "completed"
)

// Place identifies a ranked winner slot of a completed event.
type Place int

const (
	PlaceFirst Place = iota + 1
	PlaceSecond
	PlaceThird
)

// WinnerEntry assigns a prize (integer cents) to a player for one place.
type WinnerEntry struct {
	UserID     uint  `json:"user_id"`
	PrizeCents int64 `json:"prize_cents"`
}

// Winners is the ranked assignment of up to three places. A nil entry means
// the place was not awarded.
type Winners struct {
	First  *WinnerEntry `json:"first,omitempty"`
	Second *WinnerEntry `json:"second,omitempty"`
	Third  *WinnerEntry `json:"third,omitempty"`
}

func (w Winners) Entries() map[Place]WinnerEntry {
	entries := make(map[Place]WinnerEntry, 3)
	if w.First != nil {
		entries[PlaceFirst] = *w.First
	}
	if w.Second != nil {
		entries[PlaceSecond] = *w.Second
	}
	if w.Third != nil {
		entries[PlaceThird] = *w.Third
	}
	return entries
}

// IsEmpty reports whether no place carries both a player and a positive prize.
func (w Winners) IsEmpty() bool {
	for _, e := range w.Entries() {
		if e.UserID != 0 && e.PrizeCents > 0 {
			return false
		}
	}
	return true
}

type Event struct {
	ID             uint        `json:"id"`
	Title          string      `json:"title"`
	Date           time.Time   `json:"date"`
	Location       string      `json:"location"`
	BuyInCents     int64       `json:"buy_in_cents"`
	MaxPlayers     int         `json:"max_players"`
	CurrentPlayers []uint      `json:"current_players"`
	InvitedPlayers []string    `json:"invited_players"`
	OwnerID        uint        `json:"owner_id"`
	GroupID        *uint       `json:"group_id,omitempty"`
	Winners        *Winners    `json:"winners,omitempty"`
	Status         EventStatus `json:"status"`
	Timezone       string      `json:"timezone,omitempty"`
	Tables         []Table     `json:"tables,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// PrizePoolCents is the total prize pool: buy-in times current roster size.
func (e Event) PrizePoolCents() int64 {
	return e.BuyInCents * int64(len(e.CurrentPlayers))
}

func (e Event) HasPlayer(userID uint) bool {
	for _, id := range e.CurrentPlayers {
		if id == userID {
			return true
		}
	}
	return false
}

func (e Event) IsFull() bool {
	return len(e.CurrentPlayers) >= e.MaxPlayers
}
