package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
	ErrTableNotFound = dao.ErrTableNotFound
	ErrSeatTaken     = dao.ErrSeatTaken
	ErrAlreadySeated = dao.ErrAlreadySeated
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindByPlayer(ctx context.Context, userID uint) ([]dao.Event, error)
	FindCompletedByPlayers(ctx context.Context, userIDs []uint) ([]dao.Event, error)
	CountUpcomingByPlayer(ctx context.Context, userID uint, now time.Time) (int64, error)
	AddPlayer(ctx context.Context, eventID, userID uint, email string) error
	RemovePlayer(ctx context.Context, eventID, userID uint) error
	AddInvite(ctx context.Context, eventID uint, email string) error
	RemoveInvite(ctx context.Context, eventID uint, email string) error
	SetWinners(ctx context.Context, eventID uint, winners []dao.EventWinner) error
	Delete(ctx context.Context, eventID uint) error
	MarkDueInProgress(ctx context.Context, now time.Time) (int64, error)
	InsertTable(ctx context.Context, table dao.Table) (dao.Table, error)
	FindTable(ctx context.Context, eventID, tableID uint) (dao.Table, error)
	DeleteTable(ctx context.Context, eventID, tableID uint) error
	InsertSeat(ctx context.Context, seat dao.SeatReservation) error
	DeleteSeat(ctx context.Context, tableID uint, seatNumber int) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindByPlayer(ctx context.Context, userID uint) ([]domain.Event, error) {
	found, err := r.dao.FindByPlayer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByPlayer -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) FindCompletedByPlayers(ctx context.Context, userIDs []uint) ([]domain.Event, error) {
	if len(userIDs) == 0 {
		return []domain.Event{}, nil
	}

	found, err := r.dao.FindCompletedByPlayers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCompletedByPlayers -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) CountUpcomingByPlayer(ctx context.Context, userID uint, now time.Time) (int, error) {
	count, err := r.dao.CountUpcomingByPlayer(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountUpcomingByPlayer -> %w", err)
	}

	return int(count), nil
}

func (r *EventRepository) AddPlayer(ctx context.Context, eventID, userID uint, email string) error {
	if err := r.dao.AddPlayer(ctx, eventID, userID, email); err != nil {
		return fmt.Errorf("r.dao.AddPlayer -> %w", err)
	}

	return nil
}

func (r *EventRepository) RemovePlayer(ctx context.Context, eventID, userID uint) error {
	if err := r.dao.RemovePlayer(ctx, eventID, userID); err != nil {
		return fmt.Errorf("r.dao.RemovePlayer -> %w", err)
	}

	return nil
}

func (r *EventRepository) AddInvite(ctx context.Context, eventID uint, email string) error {
	if err := r.dao.AddInvite(ctx, eventID, email); err != nil {
		return fmt.Errorf("r.dao.AddInvite -> %w", err)
	}

	return nil
}

func (r *EventRepository) RemoveInvite(ctx context.Context, eventID uint, email string) error {
	if err := r.dao.RemoveInvite(ctx, eventID, email); err != nil {
		return fmt.Errorf("r.dao.RemoveInvite -> %w", err)
	}

	return nil
}

func (r *EventRepository) SetWinners(ctx context.Context, eventID uint, winners domain.Winners) error {
	rows := make([]dao.EventWinner, 0, 3)
	for place, entry := range winners.Entries() {
		rows = append(rows, dao.EventWinner{
			EventID:    eventID,
			Place:      int(place),
			UserID:     entry.UserID,
			PrizeCents: entry.PrizeCents,
		})
	}

	if err := r.dao.SetWinners(ctx, eventID, rows); err != nil {
		return fmt.Errorf("r.dao.SetWinners -> %w", err)
	}

	return nil
}

func (r *EventRepository) Delete(ctx context.Context, eventID uint) error {
	if err := r.dao.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) MarkDueInProgress(ctx context.Context, now time.Time) (int64, error) {
	promoted, err := r.dao.MarkDueInProgress(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("r.dao.MarkDueInProgress -> %w", err)
	}

	return promoted, nil
}

func (r *EventRepository) CreateTable(ctx context.Context, table domain.Table) (domain.Table, error) {
	created, err := r.dao.InsertTable(ctx, dao.Table{
		EventID:  table.EventID,
		Name:     table.Name,
		MaxSeats: table.MaxSeats,
	})
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.InsertTable -> %w", err)
	}

	return r.tableDaoToDomain(created), nil
}

func (r *EventRepository) FindTable(ctx context.Context, eventID, tableID uint) (domain.Table, error) {
	found, err := r.dao.FindTable(ctx, eventID, tableID)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.FindTable -> %w", err)
	}

	return r.tableDaoToDomain(found), nil
}

func (r *EventRepository) DeleteTable(ctx context.Context, eventID, tableID uint) error {
	if err := r.dao.DeleteTable(ctx, eventID, tableID); err != nil {
		return fmt.Errorf("r.dao.DeleteTable -> %w", err)
	}

	return nil
}

func (r *EventRepository) ReserveSeat(ctx context.Context, tableID uint, seatNumber int, playerID uint) error {
	err := r.dao.InsertSeat(ctx, dao.SeatReservation{
		TableID:    tableID,
		SeatNumber: seatNumber,
		PlayerID:   playerID,
	})
	if err != nil {
		return fmt.Errorf("r.dao.InsertSeat -> %w", err)
	}

	return nil
}

func (r *EventRepository) ReleaseSeat(ctx context.Context, tableID uint, seatNumber int) error {
	if err := r.dao.DeleteSeat(ctx, tableID, seatNumber); err != nil {
		return fmt.Errorf("r.dao.DeleteSeat -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:         e.ID,
		Title:      e.Title,
		Date:       e.Date,
		Location:   e.Location,
		BuyInCents: e.BuyInCents,
		MaxPlayers: e.MaxPlayers,
		OwnerID:    e.OwnerID,
		GroupID:    e.GroupID,
		Status:     string(e.Status),
		Timezone:   e.Timezone,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	players := make([]uint, len(e.Players))
	for i, p := range e.Players {
		players[i] = p.UserID
	}

	invites := make([]string, len(e.Invites))
	for i, inv := range e.Invites {
		invites[i] = inv.Email
	}

	tables := make([]domain.Table, len(e.Tables))
	for i, t := range e.Tables {
		tables[i] = r.tableDaoToDomain(t)
	}

	return domain.Event{
		ID:             e.ID,
		Title:          e.Title,
		Date:           e.Date,
		Location:       e.Location,
		BuyInCents:     e.BuyInCents,
		MaxPlayers:     e.MaxPlayers,
		CurrentPlayers: players,
		InvitedPlayers: invites,
		OwnerID:        e.OwnerID,
		GroupID:        e.GroupID,
		Winners:        r.winnersDaoToDomain(e.Winners),
		Status:         domain.EventStatus(e.Status),
		Timezone:       e.Timezone,
		Tables:         tables,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (r *EventRepository) winnersDaoToDomain(rows []dao.EventWinner) *domain.Winners {
	if len(rows) == 0 {
		return nil
	}

	winners := &domain.Winners{}
	for _, row := range rows {
		entry := &domain.WinnerEntry{UserID: row.UserID, PrizeCents: row.PrizeCents}
		switch domain.Place(row.Place) {
		case domain.PlaceFirst:
			winners.First = entry
		case domain.PlaceSecond:
			winners.Second = entry
		case domain.PlaceThird:
			winners.Third = entry
		}
	}

	return winners
}

func (r *EventRepository) tableDaoToDomain(t dao.Table) domain.Table {
	seats := make([]domain.SeatReservation, len(t.Seats))
	for i, s := range t.Seats {
		seats[i] = domain.SeatReservation{
			SeatNumber: s.SeatNumber,
			PlayerID:   s.PlayerID,
		}
	}

	return domain.Table{
		ID:            t.ID,
		EventID:       t.EventID,
		Name:          t.Name,
		MaxSeats:      t.MaxSeats,
		ReservedSeats: seats,
	}
}
