package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/repository"
)

// fakeEventRepo is an in-memory stand-in for the Postgres-backed event
// repository, keeping the same not-found and conflict semantics.
type fakeEventRepo struct {
	mu     sync.Mutex
	nextID uint
	events map[uint]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		nextID: 1,
		events: make(map[uint]*domain.Event),
	}
}

func (f *fakeEventRepo) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event.ID = f.nextID
	f.nextID++
	event.CurrentPlayers = []uint{event.OwnerID}
	stored := event
	f.events[event.ID] = &stored

	return event, nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id uint) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	return *event, nil
}

func (f *fakeEventRepo) FindByPlayer(_ context.Context, userID uint) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var events []domain.Event
	for _, event := range f.events {
		if event.HasPlayer(userID) {
			events = append(events, *event)
		}
	}

	return events, nil
}

func (f *fakeEventRepo) FindCompletedByPlayers(_ context.Context, userIDs []uint) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var events []domain.Event
	for _, event := range f.events {
		if event.Status != domain.EventCompleted {
			continue
		}
		for _, id := range userIDs {
			if event.HasPlayer(id) {
				events = append(events, *event)
				break
			}
		}
	}

	return events, nil
}

func (f *fakeEventRepo) CountUpcomingByPlayer(_ context.Context, userID uint, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, event := range f.events {
		if event.Status == domain.EventUpcoming && event.HasPlayer(userID) && !event.Date.Before(now) {
			count++
		}
	}

	return count, nil
}

func (f *fakeEventRepo) AddPlayer(_ context.Context, eventID, userID uint, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	if !event.HasPlayer(userID) {
		event.CurrentPlayers = append(event.CurrentPlayers, userID)
	}
	event.InvitedPlayers = removeString(event.InvitedPlayers, email)

	return nil
}

func (f *fakeEventRepo) RemovePlayer(_ context.Context, eventID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	players := event.CurrentPlayers[:0]
	for _, id := range event.CurrentPlayers {
		if id != userID {
			players = append(players, id)
		}
	}
	event.CurrentPlayers = players

	return nil
}

func (f *fakeEventRepo) AddInvite(_ context.Context, eventID uint, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	for _, e := range event.InvitedPlayers {
		if e == email {
			return nil
		}
	}
	event.InvitedPlayers = append(event.InvitedPlayers, email)

	return nil
}

func (f *fakeEventRepo) RemoveInvite(_ context.Context, eventID uint, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	event.InvitedPlayers = removeString(event.InvitedPlayers, email)

	return nil
}

func (f *fakeEventRepo) SetWinners(_ context.Context, eventID uint, winners domain.Winners) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	stored := winners
	event.Winners = &stored
	event.Status = domain.EventCompleted

	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, eventID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[eventID]; !ok {
		return repository.ErrEventNotFound
	}
	delete(f.events, eventID)

	return nil
}

func (f *fakeEventRepo) CreateTable(_ context.Context, table domain.Table) (domain.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[table.EventID]
	if !ok {
		return domain.Table{}, repository.ErrEventNotFound
	}

	table.ID = f.nextID
	f.nextID++
	event.Tables = append(event.Tables, table)

	return table, nil
}

func (f *fakeEventRepo) FindTable(_ context.Context, eventID, tableID uint) (domain.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return domain.Table{}, repository.ErrEventNotFound
	}

	for _, table := range event.Tables {
		if table.ID == tableID {
			return table, nil
		}
	}

	return domain.Table{}, repository.ErrTableNotFound
}

func (f *fakeEventRepo) DeleteTable(_ context.Context, eventID, tableID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	for i, table := range event.Tables {
		if table.ID == tableID {
			event.Tables = append(event.Tables[:i], event.Tables[i+1:]...)
			return nil
		}
	}

	return repository.ErrTableNotFound
}

func (f *fakeEventRepo) ReserveSeat(_ context.Context, tableID uint, seatNumber int, playerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, event := range f.events {
		for i, table := range event.Tables {
			if table.ID != tableID {
				continue
			}
			if table.SeatTaken(seatNumber) {
				return repository.ErrSeatTaken
			}
			if table.PlayerSeated(playerID) {
				return repository.ErrAlreadySeated
			}
			event.Tables[i].ReservedSeats = append(table.ReservedSeats, domain.SeatReservation{
				SeatNumber: seatNumber,
				PlayerID:   playerID,
			})
			return nil
		}
	}

	return repository.ErrTableNotFound
}

func (f *fakeEventRepo) ReleaseSeat(_ context.Context, tableID uint, seatNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, event := range f.events {
		for i, table := range event.Tables {
			if table.ID != tableID {
				continue
			}
			for j, seat := range table.ReservedSeats {
				if seat.SeatNumber == seatNumber {
					event.Tables[i].ReservedSeats = append(table.ReservedSeats[:j], table.ReservedSeats[j+1:]...)
					return nil
				}
			}
			return nil
		}
	}

	return repository.ErrTableNotFound
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	nextID uint
	groups map[uint]*domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		nextID: 1,
		groups: make(map[uint]*domain.Group),
	}
}

func (f *fakeGroupRepo) Create(_ context.Context, group domain.Group) (domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	group.ID = f.nextID
	f.nextID++
	group.Members = []uint{group.OwnerID}
	stored := group
	f.groups[group.ID] = &stored

	return group, nil
}

func (f *fakeGroupRepo) FindByID(_ context.Context, id uint) (domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	group, ok := f.groups[id]
	if !ok {
		return domain.Group{}, repository.ErrGroupNotFound
	}

	return *group, nil
}

func (f *fakeGroupRepo) FindByMember(_ context.Context, userID uint) ([]domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var groups []domain.Group
	for _, group := range f.groups {
		if group.HasMember(userID) {
			groups = append(groups, *group)
		}
	}

	return groups, nil
}

func (f *fakeGroupRepo) AddInvite(_ context.Context, groupID uint, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	group, ok := f.groups[groupID]
	if !ok {
		return repository.ErrGroupNotFound
	}

	if !group.IsInvited(email) {
		group.InvitedMembers = append(group.InvitedMembers, email)
	}

	return nil
}

func (f *fakeGroupRepo) RemoveInvite(_ context.Context, groupID uint, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	group, ok := f.groups[groupID]
	if !ok {
		return repository.ErrGroupNotFound
	}

	group.InvitedMembers = removeString(group.InvitedMembers, email)

	return nil
}

func (f *fakeGroupRepo) AddMember(_ context.Context, groupID, userID uint, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	group, ok := f.groups[groupID]
	if !ok {
		return repository.ErrGroupNotFound
	}

	if !group.HasMember(userID) {
		group.Members = append(group.Members, userID)
	}
	group.InvitedMembers = removeString(group.InvitedMembers, email)

	return nil
}

func (f *fakeGroupRepo) RemoveMember(_ context.Context, groupID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	group, ok := f.groups[groupID]
	if !ok {
		return repository.ErrGroupNotFound
	}

	members := group.Members[:0]
	for _, id := range group.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	group.Members = members

	return nil
}

type fakeUserRepo struct {
	users map[uint]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	byID := make(map[uint]domain.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	return &fakeUserRepo{users: byID}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	f.users[user.ID] = user

	return user, nil
}

func (f *fakeUserRepo) FindInfoByIDs(_ context.Context, ids []uint) ([]domain.UserInfo, error) {
	infos := make([]domain.UserInfo, 0, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			infos = append(infos, user.Info())
		}
	}

	return infos, nil
}

func (f *fakeUserRepo) FindEmailsByIDs(_ context.Context, ids []uint) ([]string, error) {
	emails := make([]string, 0, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			emails = append(emails, strings.ToLower(user.Email))
		}
	}

	return emails, nil
}

// fakeNotifier records sends and fails on demand.
type fakeNotifier struct {
	mu            sync.Mutex
	failWith      error
	invitations   []string
	groupInvites  []string
	cancellations []string
}

func (f *fakeNotifier) SendEventInvitation(_ context.Context, email, _, _, _ string, _ int64, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.invitations = append(f.invitations, email)

	return nil
}

func (f *fakeNotifier) SendGroupInvitation(_ context.Context, email, _, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.groupInvites = append(f.groupInvites, email)

	return nil
}

func (f *fakeNotifier) SendCancellations(_ context.Context, emails []string, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.cancellations = append(f.cancellations, emails...)

	return nil
}

func removeString(list []string, value string) []string {
	kept := list[:0]
	for _, item := range list {
		if item != value {
			kept = append(kept, item)
		}
	}

	return kept
}
