package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrTableNotFound = errors.New("table not found")
	ErrSeatTaken     = errors.New("seat already taken")
	ErrAlreadySeated = errors.New("player already has a seat at this table")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Title      string    `gorm:"not null"`
	Date       time.Time `gorm:"not null;index"`
	Location   string    `gorm:"not null"`
	BuyInCents int64     `gorm:"not null"`
	MaxPlayers int       `gorm:"not null"`
	OwnerID    uint      `gorm:"not null;index"`
	GroupID    *uint     `gorm:"index"`
	Status     string    `gorm:"not null;default:'upcoming';index"`
	Timezone   string

	Players []EventPlayer `gorm:"foreignKey:EventID"`
	Invites []EventInvite `gorm:"foreignKey:EventID"`
	Winners []EventWinner `gorm:"foreignKey:EventID"`
	Tables  []Table       `gorm:"foreignKey:EventID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// EventPlayer is one roster entry. The composite key gives the roster set
// semantics: re-adding an existing player is a no-op.
type EventPlayer struct {
	EventID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID  uint `gorm:"primaryKey;autoIncrement:false"`
}

type EventInvite struct {
	EventID uint   `gorm:"primaryKey;autoIncrement:false"`
	Email   string `gorm:"primaryKey"`
}

type EventWinner struct {
	EventID    uint  `gorm:"primaryKey;autoIncrement:false"`
	Place      int   `gorm:"primaryKey;autoIncrement:false"`
	UserID     uint  `gorm:"not null"`
	PrizeCents int64 `gorm:"not null"`
}

type Table struct {
	ID       uint   `gorm:"primaryKey"`
	EventID  uint   `gorm:"not null;index"`
	Name     string `gorm:"not null"`
	MaxSeats int    `gorm:"not null"`

	Seats []SeatReservation `gorm:"foreignKey:TableID"`
}

// SeatReservation rows carry the two uniqueness rules as database
// constraints, so concurrent reservations conflict instead of clobbering.
type SeatReservation struct {
	ID         uint `gorm:"primaryKey"`
	TableID    uint `gorm:"not null;uniqueIndex:uni_seat_table_number;uniqueIndex:uni_seat_table_player"`
	SeatNumber int  `gorm:"not null;uniqueIndex:uni_seat_table_number"`
	PlayerID   uint `gorm:"not null;uniqueIndex:uni_seat_table_player"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&event).Error; err != nil {
			return err
		}

		// The owner is always on the roster at creation.
		return tx.Create(&EventPlayer{EventID: event.ID, UserID: event.OwnerID}).Error
	})
	if err != nil {
		return Event{}, err
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Preload("Players").
		Preload("Invites").
		Preload("Winners").
		Preload("Tables.Seats").
		First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByPlayer(ctx context.Context, userID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Joins("JOIN event_players ep ON ep.event_id = events.id").
		Where("ep.user_id = ?", userID).
		Preload("Players").
		Preload("Invites").
		Preload("Winners").
		Order("events.date").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindCompletedByPlayers(ctx context.Context, userIDs []uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Distinct("events.*").
		Joins("JOIN event_players ep ON ep.event_id = events.id").
		Where("ep.user_id IN ? AND events.status = ?", userIDs, "completed").
		Preload("Players").
		Preload("Winners").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) CountUpcomingByPlayer(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Event{}).
		Joins("JOIN event_players ep ON ep.event_id = events.id").
		Where("ep.user_id = ? AND events.date >= ?", userID, now).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// AddPlayer puts the user on the roster and clears their invitation in one
// transaction. Both halves merge safely under concurrency.
func (d *EventDAO) AddPlayer(ctx context.Context, eventID, userID uint, email string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&EventPlayer{EventID: eventID, UserID: userID}).Error
		if err != nil {
			return err
		}

		return tx.Where("event_id = ? AND email = ?", eventID, email).
			Delete(&EventInvite{}).Error
	})
}

func (d *EventDAO) RemovePlayer(ctx context.Context, eventID, userID uint) error {
	return d.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&EventPlayer{}).Error
}

func (d *EventDAO) AddInvite(ctx context.Context, eventID uint, email string) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&EventInvite{EventID: eventID, Email: email}).Error
}

func (d *EventDAO) RemoveInvite(ctx context.Context, eventID uint, email string) error {
	return d.db.WithContext(ctx).
		Where("event_id = ? AND email = ?", eventID, email).
		Delete(&EventInvite{}).Error
}

// SetWinners replaces the winners rows and forces the event to completed.
func (d *EventDAO) SetWinners(ctx context.Context, eventID uint, winners []EventWinner) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&EventWinner{}).Error; err != nil {
			return err
		}

		if len(winners) > 0 {
			if err := tx.Create(&winners).Error; err != nil {
				return err
			}
		}

		return tx.Model(&Event{}).Where("id = ?", eventID).
			Update("status", "completed").Error
	})
}

func (d *EventDAO) Delete(ctx context.Context, eventID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tableIDs []uint
		if err := tx.Model(&Table{}).Where("event_id = ?", eventID).
			Pluck("id", &tableIDs).Error; err != nil {
			return err
		}

		if len(tableIDs) > 0 {
			if err := tx.Where("table_id IN ?", tableIDs).Delete(&SeatReservation{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []interface{}{&Table{}, &EventPlayer{}, &EventInvite{}, &EventWinner{}} {
			if err := tx.Where("event_id = ?", eventID).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&Event{}, eventID).Error
	})
}

// MarkDueInProgress promotes upcoming events whose date has passed.
func (d *EventDAO) MarkDueInProgress(ctx context.Context, now time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("status = ? AND date <= ?", "upcoming", now).
		Update("status", "in-progress")
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (d *EventDAO) InsertTable(ctx context.Context, table Table) (Table, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&table)
	if result.Error != nil {
		return Table{}, result.Error
	}

	return table, nil
}

func (d *EventDAO) FindTable(ctx context.Context, eventID, tableID uint) (Table, error) {
	var table Table

	result := d.db.WithContext(ctx).
		Preload("Seats").
		First(&table, "id = ? AND event_id = ?", tableID, eventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Table{}, ErrTableNotFound
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *EventDAO) DeleteTable(ctx context.Context, eventID, tableID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", tableID).Delete(&SeatReservation{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND event_id = ?", tableID, eventID).Delete(&Table{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTableNotFound
		}

		return nil
	})
}

// InsertSeat relies on the unique indexes for both seat rules; a concurrent
// duplicate surfaces as a conflict error rather than a lost update.
func (d *EventDAO) InsertSeat(ctx context.Context, seat SeatReservation) error {
	result := d.db.WithContext(ctx).Create(&seat)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "uni_seat_table_number":
				return ErrSeatTaken
			case "uni_seat_table_player":
				return ErrAlreadySeated
			}
		}

		return result.Error
	}

	return nil
}

func (d *EventDAO) DeleteSeat(ctx context.Context, tableID uint, seatNumber int) error {
	return d.db.WithContext(ctx).
		Where("table_id = ? AND seat_number = ?", tableID, seatNumber).
		Delete(&SeatReservation{}).Error
}
