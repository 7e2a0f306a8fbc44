package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

var (
	ErrTableNotFound   = repository.ErrTableNotFound
	ErrSeatTaken       = repository.ErrSeatTaken
	ErrAlreadySeated   = repository.ErrAlreadySeated
	ErrNotParticipant  = errors.New("only event participants may reserve seats")
	ErrSeatOutOfRange  = errors.New("seat number is out of range for this table")
	ErrNotSeatOccupant = errors.New("only the occupant or the event owner may release a seat")
	ErrSeatNotReserved = errors.New("seat is not reserved")
)

type TableRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	CreateTable(ctx context.Context, table domain.Table) (domain.Table, error)
	FindTable(ctx context.Context, eventID, tableID uint) (domain.Table, error)
	DeleteTable(ctx context.Context, eventID, tableID uint) error
	ReserveSeat(ctx context.Context, tableID uint, seatNumber int, playerID uint) error
	ReleaseSeat(ctx context.Context, tableID uint, seatNumber int) error
}

type TableService struct {
	repo TableRepository
	hub  *watch.Hub
}

func NewTableService(repo TableRepository, hub *watch.Hub) *TableService {
	return &TableService{repo: repo, hub: hub}
}

func (s *TableService) AddTable(ctx context.Context, session domain.Session, eventID uint, name string, maxSeats int) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID != session.UserID {
		return domain.Event{}, ErrNotEventOwner
	}

	_, err = s.repo.CreateTable(ctx, domain.Table{
		EventID:  eventID,
		Name:     name,
		MaxSeats: maxSeats,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.CreateTable -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

// RemoveTable drops the table and every seat reservation on it.
func (s *TableService) RemoveTable(ctx context.Context, session domain.Session, eventID, tableID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID != session.UserID {
		return domain.Event{}, ErrNotEventOwner
	}

	if err = s.repo.DeleteTable(ctx, eventID, tableID); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.DeleteTable -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

// ReserveSeat seats the caller at the given table. Participants only, one
// seat per player per table; the unique constraints in the store back up the
// pre-checks, so a racing reservation still surfaces as a conflict.
func (s *TableService) ReserveSeat(ctx context.Context, session domain.Session, eventID, tableID uint, seatNumber int) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !event.HasPlayer(session.UserID) {
		return domain.Event{}, ErrNotParticipant
	}

	table, err := s.repo.FindTable(ctx, eventID, tableID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindTable -> %w", err)
	}

	if seatNumber < 1 || seatNumber > table.MaxSeats {
		return domain.Event{}, ErrSeatOutOfRange
	}

	if table.SeatTaken(seatNumber) {
		return domain.Event{}, ErrSeatTaken
	}

	if table.PlayerSeated(session.UserID) {
		return domain.Event{}, ErrAlreadySeated
	}

	if err = s.repo.ReserveSeat(ctx, tableID, seatNumber, session.UserID); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.ReserveSeat -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

// ReleaseSeat frees a reservation. The occupant may release their own seat;
// the event owner may release any seat.
func (s *TableService) ReleaseSeat(ctx context.Context, session domain.Session, eventID, tableID uint, seatNumber int) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	table, err := s.repo.FindTable(ctx, eventID, tableID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindTable -> %w", err)
	}

	occupant, reserved := table.SeatOccupant(seatNumber)
	if !reserved {
		return domain.Event{}, ErrSeatNotReserved
	}

	if occupant != session.UserID && event.OwnerID != session.UserID {
		return domain.Event{}, ErrNotSeatOccupant
	}

	if err = s.repo.ReleaseSeat(ctx, tableID, seatNumber); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.ReleaseSeat -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

func (s *TableService) reloadAndPublish(ctx context.Context, eventID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.hub.Publish(watch.Snapshot{Topic: watch.EventTopic(eventID), Data: event})

	return event, nil
}
