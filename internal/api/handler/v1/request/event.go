package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateEventRequest struct {
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Location   string    `json:"location"`
	BuyInCents int64     `json:"buy_in_cents"`
	MaxPlayers int       `json:"max_players"`
	Timezone   string    `json:"timezone"`
	GroupID    *uint     `json:"group_id"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.BuyInCents, validation.Min(int64(0))),
		validation.Field(&req.MaxPlayers, validation.Required, validation.Min(2), validation.Max(100)),
	)
}

type InvitePlayerRequest struct {
	Email string `json:"email"`
}

func (req *InvitePlayerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

// WinnerEntryRequest assigns a prize in integer cents to one player.
type WinnerEntryRequest struct {
	UserID     uint  `json:"user_id"`
	PrizeCents int64 `json:"prize_cents"`
}

type SetWinnersRequest struct {
	First  *WinnerEntryRequest `json:"first"`
	Second *WinnerEntryRequest `json:"second"`
	Third  *WinnerEntryRequest `json:"third"`
}

func (req *SetWinnersRequest) Validate() error {
	for _, entry := range []*WinnerEntryRequest{req.First, req.Second, req.Third} {
		if entry == nil {
			continue
		}
		err := validation.ValidateStruct(
			entry,
			validation.Field(&entry.UserID, validation.Required),
			validation.Field(&entry.PrizeCents, validation.Min(int64(0))),
		)
		if err != nil {
			return err
		}
	}

	return nil
}
