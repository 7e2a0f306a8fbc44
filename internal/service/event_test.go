package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

func newEventServiceForTest(users ...domain.User) (*EventService, *fakeEventRepo, *fakeNotifier, *watch.Hub) {
	if len(users) == 0 {
		users = []domain.User{
			{ID: 1, Email: "owner@example.com", DisplayName: "Owner"},
			{ID: 2, Email: "player@example.com", DisplayName: "Player"},
		}
	}

	repo := newFakeEventRepo()
	notifier := &fakeNotifier{}
	hub := watch.NewHub()
	svc := NewEventService(repo, newFakeUserRepo(users...), notifier, hub, "http://localhost:5173")

	return svc, repo, notifier, hub
}

func ownerSession() domain.Session {
	return domain.Session{UserID: 1, Email: "owner@example.com", Verified: true}
}

func playerSession() domain.Session {
	return domain.Session{UserID: 2, Email: "player@example.com", Verified: true}
}

func TestEventService_CreateEvent(t *testing.T) {
	svc, _, _, hub := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		Location:   "Dave's place",
		BuyInCents: 2000,
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), created.OwnerID)
	assert.Equal(t, domain.EventUpcoming, created.Status)
	assert.Equal(t, []uint{1}, created.CurrentPlayers)
	assert.Equal(t, 0, hub.Subscribers(watch.EventTopic(created.ID)))
}

func TestEventService_JoinEvent(t *testing.T) {
	svc, repo, _, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 3,
	})
	require.NoError(t, err)

	require.NoError(t, repo.AddInvite(context.Background(), created.ID, "player@example.com"))

	joined, err := svc.JoinEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{1, 2}, joined.CurrentPlayers)
	assert.Empty(t, joined.InvitedPlayers, "joining clears the player's invitation")

	// Joining twice is a no-op.
	again, err := svc.JoinEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)
	assert.Len(t, again.CurrentPlayers, 2)
}

func TestEventService_JoinEvent_Full(t *testing.T) {
	svc, _, _, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Heads Up Only",
		Date:       time.Now().Add(24 * time.Hour),
		MaxPlayers: 2,
	})
	require.NoError(t, err)

	_, err = svc.JoinEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	_, err = svc.JoinEvent(context.Background(), domain.Session{UserID: 3, Email: "late@example.com"}, created.ID)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestEventService_LeaveEvent(t *testing.T) {
	svc, _, _, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	_, err = svc.JoinEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	left, err := svc.LeaveEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, left.CurrentPlayers)

	_, err = svc.LeaveEvent(context.Background(), ownerSession(), created.ID)
	assert.ErrorIs(t, err, ErrOwnerCannotLeave)
}

func TestEventService_InvitePlayer(t *testing.T) {
	svc, _, notifier, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	_, _, err = svc.InvitePlayer(context.Background(), playerSession(), created.ID, "friend@example.com")
	assert.ErrorIs(t, err, ErrNotEventOwner)

	updated, outcome, err := svc.InvitePlayer(context.Background(), ownerSession(), created.ID, "Friend@Example.com")
	require.NoError(t, err)

	assert.True(t, outcome.NotificationSent)
	assert.Equal(t, []string{"friend@example.com"}, updated.InvitedPlayers, "emails are stored lowercased")
	assert.Equal(t, []string{"friend@example.com"}, notifier.invitations)
}

func TestEventService_InvitePlayer_Idempotent(t *testing.T) {
	svc, _, _, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	_, _, err = svc.InvitePlayer(context.Background(), ownerSession(), created.ID, "friend@example.com")
	require.NoError(t, err)

	// Set semantics: a repeat invite leaves a single entry.
	updated, _, err := svc.InvitePlayer(context.Background(), ownerSession(), created.ID, "Friend@Example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"friend@example.com"}, updated.InvitedPlayers)
}

func TestEventService_InvitePlayer_EmailFailureKeepsInvite(t *testing.T) {
	svc, _, notifier, _ := newEventServiceForTest()
	notifier.failWith = errors.New("smtp down")

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	updated, outcome, err := svc.InvitePlayer(context.Background(), ownerSession(), created.ID, "friend@example.com")
	require.NoError(t, err, "a failed email is not a failed invitation")

	assert.False(t, outcome.NotificationSent)
	assert.Contains(t, outcome.NotificationErr, "smtp down")
	assert.Equal(t, []string{"friend@example.com"}, updated.InvitedPlayers)
}

func TestEventService_RemoveInvite(t *testing.T) {
	svc, _, _, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	_, _, err = svc.InvitePlayer(context.Background(), ownerSession(), created.ID, "friend@example.com")
	require.NoError(t, err)

	_, err = svc.RemoveInvite(context.Background(), playerSession(), created.ID, "friend@example.com")
	assert.ErrorIs(t, err, ErrNotEventOwner)

	updated, err := svc.RemoveInvite(context.Background(), ownerSession(), created.ID, "friend@example.com")
	require.NoError(t, err)
	assert.Empty(t, updated.InvitedPlayers)
}

func TestValidateWinners(t *testing.T) {
	event := domain.Event{
		BuyInCents:     1000,
		CurrentPlayers: []uint{1, 2, 3, 4, 5}, // pool = 5000
	}

	tests := []struct {
		name    string
		winners domain.Winners
		wantErr error
	}{
		{
			name: "valid single winner",
			winners: domain.Winners{
				First: &domain.WinnerEntry{UserID: 1, PrizeCents: 5000},
			},
		},
		{
			name: "valid full podium",
			winners: domain.Winners{
				First:  &domain.WinnerEntry{UserID: 1, PrizeCents: 2500},
				Second: &domain.WinnerEntry{UserID: 2, PrizeCents: 1500},
				Third:  &domain.WinnerEntry{UserID: 3, PrizeCents: 1000},
			},
		},
		{
			name: "prizes exceed pool",
			winners: domain.Winners{
				First: &domain.WinnerEntry{UserID: 1, PrizeCents: 5001},
			},
			wantErr: ErrPrizesExceedPool,
		},
		{
			name: "second outranks first",
			winners: domain.Winners{
				First:  &domain.WinnerEntry{UserID: 1, PrizeCents: 1000},
				Second: &domain.WinnerEntry{UserID: 2, PrizeCents: 2000},
			},
			wantErr: ErrPrizesNotDescending,
		},
		{
			name: "third ties second",
			winners: domain.Winners{
				Second: &domain.WinnerEntry{UserID: 2, PrizeCents: 1000},
				Third:  &domain.WinnerEntry{UserID: 3, PrizeCents: 1000},
			},
			wantErr: ErrPrizesNotDescending,
		},
		{
			name:    "no winners at all",
			winners: domain.Winners{},
			wantErr: ErrNoWinners,
		},
		{
			name: "zero prize only",
			winners: domain.Winners{
				First: &domain.WinnerEntry{UserID: 1, PrizeCents: 0},
			},
			wantErr: ErrNoWinners,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWinners(event, tt.winners)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEventService_SetWinners(t *testing.T) {
	svc, repo, _, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(-2 * time.Hour),
		BuyInCents: 1000,
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	_, err = svc.JoinEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	winners := domain.Winners{
		First: &domain.WinnerEntry{UserID: 2, PrizeCents: 2000},
	}

	_, err = svc.SetWinners(context.Background(), playerSession(), created.ID, winners)
	assert.ErrorIs(t, err, ErrNotEventOwner)

	completed, err := svc.SetWinners(context.Background(), ownerSession(), created.ID, winners)
	require.NoError(t, err)
	assert.Equal(t, domain.EventCompleted, completed.Status)
	require.NotNil(t, completed.Winners)
	assert.Equal(t, uint(2), completed.Winners.First.UserID)

	// An invalid assignment writes nothing.
	_, err = svc.SetWinners(context.Background(), ownerSession(), created.ID, domain.Winners{
		First: &domain.WinnerEntry{UserID: 1, PrizeCents: 99999},
	})
	assert.ErrorIs(t, err, ErrPrizesExceedPool)

	unchanged, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), unchanged.Winners.First.UserID)
}

func TestEventService_CancelEvent(t *testing.T) {
	svc, repo, notifier, hub := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	_, err = svc.JoinEvent(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	_, _, err = svc.InvitePlayer(context.Background(), ownerSession(), created.ID, "friend@example.com")
	require.NoError(t, err)

	err = svc.CancelEvent(context.Background(), playerSession(), created.ID)
	assert.ErrorIs(t, err, ErrNotEventOwner)

	sub := hub.Subscribe(watch.EventTopic(created.ID))
	defer sub.Cancel()

	require.NoError(t, svc.CancelEvent(context.Background(), ownerSession(), created.ID))

	assert.ElementsMatch(t, []string{"owner@example.com", "player@example.com", "friend@example.com"}, notifier.cancellations)

	_, err = repo.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	select {
	case snapshot := <-sub.Updates():
		assert.True(t, snapshot.Deleted)
	case <-time.After(time.Second):
		t.Fatal("expected a deletion snapshot")
	}
}

func TestEventService_CancelEvent_NotifyFailureAborts(t *testing.T) {
	svc, repo, notifier, _ := newEventServiceForTest()

	created, err := svc.CreateEvent(context.Background(), ownerSession(), domain.Event{
		Title:      "Friday Night Poker",
		Date:       time.Now().Add(48 * time.Hour),
		MaxPlayers: 8,
	})
	require.NoError(t, err)

	notifier.failWith = errors.New("provider down")

	err = svc.CancelEvent(context.Background(), ownerSession(), created.ID)
	require.Error(t, err)

	// The event survives a failed notification round.
	_, err = repo.FindByID(context.Background(), created.ID)
	assert.NoError(t, err)
}
