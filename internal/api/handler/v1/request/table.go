package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AddTableRequest struct {
	Name     string `json:"name"`
	MaxSeats int    `json:"max_seats"`
}

func (req *AddTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.MaxSeats, validation.Required, validation.Min(2), validation.Max(10)),
	)
}

type ReserveSeatRequest struct {
	SeatNumber int `json:"seat_number"`
}

func (req *ReserveSeatRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SeatNumber, validation.Required, validation.Min(1)),
	)
}
