package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

func newGroupServiceForTest() (*GroupService, *fakeGroupRepo, *fakeNotifier) {
	repo := newFakeGroupRepo()
	notifier := &fakeNotifier{}
	userRepo := newFakeUserRepo(
		domain.User{ID: 1, Email: "owner@example.com", DisplayName: "Owner"},
		domain.User{ID: 2, Email: "player@example.com", DisplayName: "Player"},
	)
	svc := NewGroupService(repo, userRepo, notifier, watch.NewHub(), "http://localhost:5173")

	return svc, repo, notifier
}

func TestGroupService_CreateGroup(t *testing.T) {
	svc, _, _ := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{
		Name:        "Thursday Regulars",
		Description: "Weekly home game",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), created.OwnerID)
	assert.Equal(t, []uint{1}, created.Members, "the owner is seeded as the first member")
}

func TestGroupService_InviteMember(t *testing.T) {
	svc, _, notifier := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	_, _, err = svc.InviteMember(context.Background(), playerSession(), created.ID, "friend@example.com")
	assert.ErrorIs(t, err, ErrNotGroupOwner)

	updated, outcome, err := svc.InviteMember(context.Background(), ownerSession(), created.ID, "Player@Example.com")
	require.NoError(t, err)

	assert.True(t, outcome.NotificationSent)
	assert.Equal(t, []string{"player@example.com"}, updated.InvitedMembers)
	assert.Equal(t, []string{"player@example.com"}, notifier.groupInvites)
}

func TestGroupService_InviteMember_Idempotent(t *testing.T) {
	svc, _, _ := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	_, _, err = svc.InviteMember(context.Background(), ownerSession(), created.ID, "player@example.com")
	require.NoError(t, err)

	// Set semantics: a repeat invite leaves a single entry.
	updated, _, err := svc.InviteMember(context.Background(), ownerSession(), created.ID, "Player@Example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"player@example.com"}, updated.InvitedMembers)
}

func TestGroupService_InviteMember_EmailFailureKeepsInvite(t *testing.T) {
	svc, _, notifier := newGroupServiceForTest()
	notifier.failWith = errors.New("provider down")

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	updated, outcome, err := svc.InviteMember(context.Background(), ownerSession(), created.ID, "player@example.com")
	require.NoError(t, err)

	assert.False(t, outcome.NotificationSent)
	assert.Contains(t, outcome.NotificationErr, "provider down")
	assert.Equal(t, []string{"player@example.com"}, updated.InvitedMembers)
}

func TestGroupService_AcceptInvite(t *testing.T) {
	svc, _, _ := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	// No invitation, no entry.
	_, err = svc.AcceptInvite(context.Background(), playerSession(), created.ID)
	assert.ErrorIs(t, err, ErrNotInvited)

	_, _, err = svc.InviteMember(context.Background(), ownerSession(), created.ID, "player@example.com")
	require.NoError(t, err)

	joined, err := svc.AcceptInvite(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{1, 2}, joined.Members)
	assert.Empty(t, joined.InvitedMembers, "accepting consumes the invitation")

	// Accepting twice is a no-op.
	again, err := svc.AcceptInvite(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)
	assert.Len(t, again.Members, 2)
}

func TestGroupService_CancelInvite(t *testing.T) {
	svc, _, _ := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	_, _, err = svc.InviteMember(context.Background(), ownerSession(), created.ID, "player@example.com")
	require.NoError(t, err)

	_, err = svc.CancelInvite(context.Background(), playerSession(), created.ID, "player@example.com")
	assert.ErrorIs(t, err, ErrNotGroupOwner)

	updated, err := svc.CancelInvite(context.Background(), ownerSession(), created.ID, "player@example.com")
	require.NoError(t, err)
	assert.Empty(t, updated.InvitedMembers)
}

func TestGroupService_RemoveMember(t *testing.T) {
	svc, _, _ := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	_, _, err = svc.InviteMember(context.Background(), ownerSession(), created.ID, "player@example.com")
	require.NoError(t, err)
	_, err = svc.AcceptInvite(context.Background(), playerSession(), created.ID)
	require.NoError(t, err)

	// A member cannot remove another member.
	thirdParty := domain.Session{UserID: 3, Email: "third@example.com"}
	_, err = svc.RemoveMember(context.Background(), thirdParty, created.ID, 2)
	assert.ErrorIs(t, err, ErrNotGroupOwner)

	// Nobody removes the owner.
	_, err = svc.RemoveMember(context.Background(), ownerSession(), created.ID, 1)
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)

	// A member can leave on their own.
	updated, err := svc.RemoveMember(context.Background(), playerSession(), created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, updated.Members)
}

func TestGroupService_GetMembers(t *testing.T) {
	svc, _, _ := newGroupServiceForTest()

	created, err := svc.CreateGroup(context.Background(), ownerSession(), domain.Group{Name: "Thursday Regulars"})
	require.NoError(t, err)

	members, err := svc.GetMembers(context.Background(), created.ID)
	require.NoError(t, err)

	require.Len(t, members, 1)
	assert.Equal(t, "Owner", members[0].DisplayName)
}
