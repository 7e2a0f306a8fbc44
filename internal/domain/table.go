package domain

// SeatReservation holds one player's claim on one numbered seat.
// Seat numbers and players are each unique within a table.
type SeatReservation struct {
	SeatNumber int  `json:"seat_number"`
	PlayerID   uint `json:"player_id"`
}

type Table struct {
	ID            uint              `json:"id"`
	EventID       uint              `json:"event_id"`
	Name          string            `json:"name"`
	MaxSeats      int               `json:"max_seats"`
	ReservedSeats []SeatReservation `json:"reserved_seats"`
}

func (t Table) SeatTaken(seatNumber int) bool {
	for _, r := range t.ReservedSeats {
		if r.SeatNumber == seatNumber {
			return true
		}
	}
	return false
}

// SeatOccupant returns the player holding the seat, if any.
func (t Table) SeatOccupant(seatNumber int) (uint, bool) {
	for _, r := range t.ReservedSeats {
		if r.SeatNumber == seatNumber {
			return r.PlayerID, true
		}
	}
	return 0, false
}

func (t Table) PlayerSeated(playerID uint) bool {
	for _, r := range t.ReservedSeats {
		if r.PlayerID == playerID {
			return true
		}
	}
	return false
}
