package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

var (
	ErrEventNotFound    = repository.ErrEventNotFound
	ErrEventFull        = errors.New("event is full")
	ErrNotEventOwner    = errors.New("only the event owner may perform this action")
	ErrOwnerCannotLeave = errors.New("the owner cannot leave their own event")

	ErrPrizesExceedPool    = errors.New("total prizes cannot exceed the prize pool")
	ErrPrizesNotDescending = errors.New("prizes must be strictly descending by place")
	ErrNoWinners           = errors.New("at least one winner with a prize is required")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindByPlayer(ctx context.Context, userID uint) ([]domain.Event, error)
	AddPlayer(ctx context.Context, eventID, userID uint, email string) error
	RemovePlayer(ctx context.Context, eventID, userID uint) error
	AddInvite(ctx context.Context, eventID uint, email string) error
	RemoveInvite(ctx context.Context, eventID uint, email string) error
	SetWinners(ctx context.Context, eventID uint, winners domain.Winners) error
	Delete(ctx context.Context, eventID uint) error
}

type EventNotifier interface {
	SendEventInvitation(ctx context.Context, email, title, date, location string, buyInCents int64, eventLink, replyTo string) error
	SendCancellations(ctx context.Context, emails []string, title, date, location string) error
}

type EventService struct {
	repo       EventRepository
	userRepo   UserRepository
	notifier   EventNotifier
	hub        *watch.Hub
	webBaseURL string
}

func NewEventService(repo EventRepository, userRepo UserRepository, notifier EventNotifier, hub *watch.Hub, webBaseURL string) *EventService {
	return &EventService{
		repo:       repo,
		userRepo:   userRepo,
		notifier:   notifier,
		hub:        hub,
		webBaseURL: webBaseURL,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, session domain.Session, event domain.Event) (domain.Event, error) {
	event.OwnerID = session.UserID
	event.Status = domain.EventUpcoming

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.publish(created)

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) GetEvents(ctx context.Context, session domain.Session) ([]domain.Event, error) {
	events, err := s.repo.FindByPlayer(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByPlayer -> %w", err)
	}

	return events, nil
}

// GetParticipants resolves the event roster to its public profiles.
func (s *EventService) GetParticipants(ctx context.Context, eventID uint) ([]domain.UserInfo, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	infos, err := s.userRepo.FindInfoByIDs(ctx, event.CurrentPlayers)
	if err != nil {
		return nil, fmt.Errorf("s.userRepo.FindInfoByIDs -> %w", err)
	}

	return infos, nil
}

// JoinEvent adds the caller to the roster and clears their invitation.
// Capacity is checked here; two racing joins may still both land, the store
// does not enforce the cap.
func (s *EventService) JoinEvent(ctx context.Context, session domain.Session, eventID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.HasPlayer(session.UserID) {
		return event, nil
	}

	if event.IsFull() {
		return domain.Event{}, ErrEventFull
	}

	if err = s.repo.AddPlayer(ctx, eventID, session.UserID, strings.ToLower(session.Email)); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.AddPlayer -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

func (s *EventService) LeaveEvent(ctx context.Context, session domain.Session, eventID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID == session.UserID {
		return domain.Event{}, ErrOwnerCannotLeave
	}

	if err = s.repo.RemovePlayer(ctx, eventID, session.UserID); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.RemovePlayer -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

// InvitePlayer records the invitation, then attempts the notification email.
// The invitation row is the source of truth; the email is advisory and its
// failure is reported as the secondary outcome.
func (s *EventService) InvitePlayer(ctx context.Context, session domain.Session, eventID uint, email string) (domain.Event, domain.NotifyOutcome, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.NotifyOutcome{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID != session.UserID {
		return domain.Event{}, domain.NotifyOutcome{}, ErrNotEventOwner
	}

	email = strings.ToLower(email)
	if err = s.repo.AddInvite(ctx, eventID, email); err != nil {
		return domain.Event{}, domain.NotifyOutcome{}, fmt.Errorf("s.repo.AddInvite -> %w", err)
	}

	outcome := domain.NotifySucceeded()
	eventLink := fmt.Sprintf("%s/#/event/%d", s.webBaseURL, eventID)
	err = s.notifier.SendEventInvitation(ctx, email, event.Title, s.formatDate(event), event.Location,
		event.BuyInCents, eventLink, session.Email)
	if err != nil {
		zap.L().Warn("event invitation email failed",
			zap.Uint("event_id", eventID),
			zap.String("email", email),
			zap.Error(err))
		outcome = domain.NotifyFailed(err)
	}

	updated, err := s.reloadAndPublish(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.NotifyOutcome{}, err
	}

	return updated, outcome, nil
}

func (s *EventService) RemoveInvite(ctx context.Context, session domain.Session, eventID uint, email string) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID != session.UserID {
		return domain.Event{}, ErrNotEventOwner
	}

	if err = s.repo.RemoveInvite(ctx, eventID, strings.ToLower(email)); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.RemoveInvite -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

// SetWinners validates the assignment against the prize pool and ordering
// rules, then overwrites the winners and forces the event to completed.
// Nothing is written when validation fails.
func (s *EventService) SetWinners(ctx context.Context, session domain.Session, eventID uint, winners domain.Winners) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID != session.UserID {
		return domain.Event{}, ErrNotEventOwner
	}

	if err = ValidateWinners(event, winners); err != nil {
		return domain.Event{}, err
	}

	if err = s.repo.SetWinners(ctx, eventID, winners); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.SetWinners -> %w", err)
	}

	return s.reloadAndPublish(ctx, eventID)
}

// ValidateWinners enforces the prize rules: the positive prizes may not sum
// past buy-in times roster size, consecutively provided places must be
// strictly descending, and at least one place needs both a player and a
// positive prize.
func ValidateWinners(event domain.Event, winners domain.Winners) error {
	var first, second, third int64
	if winners.First != nil {
		first = winners.First.PrizeCents
	}
	if winners.Second != nil {
		second = winners.Second.PrizeCents
	}
	if winners.Third != nil {
		third = winners.Third.PrizeCents
	}

	var total int64
	for _, prize := range []int64{first, second, third} {
		if prize > 0 {
			total += prize
		}
	}

	if total > event.PrizePoolCents() {
		return ErrPrizesExceedPool
	}

	if first > 0 && second > 0 && first <= second {
		return ErrPrizesNotDescending
	}
	if second > 0 && third > 0 && second <= third {
		return ErrPrizesNotDescending
	}

	if winners.IsEmpty() {
		return ErrNoWinners
	}

	return nil
}

// CancelEvent notifies every participant and still-invited player, then hard
// deletes the event. A failed notification aborts before deletion; a failed
// deletion leaves the event with notifications already sent.
func (s *EventService) CancelEvent(ctx context.Context, session domain.Session, eventID uint) error {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OwnerID != session.UserID {
		return ErrNotEventOwner
	}

	participantEmails, err := s.userRepo.FindEmailsByIDs(ctx, event.CurrentPlayers)
	if err != nil {
		return fmt.Errorf("s.userRepo.FindEmailsByIDs -> %w", err)
	}

	recipients := mergeEmails(participantEmails, event.InvitedPlayers)
	if len(recipients) > 0 {
		err = s.notifier.SendCancellations(ctx, recipients, event.Title, s.formatDate(event), event.Location)
		if err != nil {
			return fmt.Errorf("s.notifier.SendCancellations -> %w", err)
		}
	}

	if err = s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.hub.Publish(watch.Snapshot{Topic: watch.EventTopic(eventID), Deleted: true})

	return nil
}

func (s *EventService) reloadAndPublish(ctx context.Context, eventID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.publish(event)

	return event, nil
}

func (s *EventService) publish(event domain.Event) {
	s.hub.Publish(watch.Snapshot{Topic: watch.EventTopic(event.ID), Data: event})
}

func (s *EventService) formatDate(event domain.Event) string {
	tz := event.Timezone
	if tz == "" {
		tz = "America/Los_Angeles"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	return event.Date.In(loc).Format("Monday, January 2, 2006 at 3:04 PM")
}

func mergeEmails(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, email := range list {
			email = strings.ToLower(email)
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			merged = append(merged, email)
		}
	}

	return merged
}
