package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suckingout/poker-nights-api/internal/domain"
)

func completedEvent(repo *fakeEventRepo, players []uint, winners domain.Winners) {
	event, _ := repo.Create(context.Background(), domain.Event{
		Title:      "Past Game",
		Date:       time.Now().Add(-72 * time.Hour),
		BuyInCents: 10000,
		MaxPlayers: 10,
		OwnerID:    players[0],
		Status:     domain.EventUpcoming,
	})
	for _, id := range players[1:] {
		_ = repo.AddPlayer(context.Background(), event.ID, id, "")
	}
	_ = repo.SetWinners(context.Background(), event.ID, winners)
}

func TestStatsService_GetUserStats(t *testing.T) {
	repo := newFakeEventRepo()
	userRepo := newFakeUserRepo(domain.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice"})
	svc := NewStatsService(repo, newFakeGroupRepo(), userRepo, nil)

	// Alice wins the first game outright.
	completedEvent(repo, []uint{1, 2, 3}, domain.Winners{
		First: &domain.WinnerEntry{UserID: 1, PrizeCents: 10000},
	})

	// The second game's podium goes entirely to other players.
	completedEvent(repo, []uint{1, 2, 3}, domain.Winners{
		First:  &domain.WinnerEntry{UserID: 2, PrizeCents: 15000},
		Second: &domain.WinnerEntry{UserID: 3, PrizeCents: 10000},
		Third:  &domain.WinnerEntry{UserID: 2, PrizeCents: 1000},
	})

	// One upcoming game on the calendar.
	upcoming, err := repo.Create(context.Background(), domain.Event{
		Title:      "Next Game",
		Date:       time.Now().Add(72 * time.Hour),
		MaxPlayers: 8,
		OwnerID:    1,
		Status:     domain.EventUpcoming,
	})
	require.NoError(t, err)
	require.NotZero(t, upcoming.ID)

	stats, err := svc.GetUserStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.GamesPlayed, "only completed events count as games played")
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, int64(10000), stats.TotalEarningsCents)
	assert.Equal(t, 1, stats.UpcomingGames)
}

func TestStatsService_GetUserStats_PlacedFinishesEarnWithoutWinning(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewStatsService(repo, newFakeGroupRepo(), newFakeUserRepo(), nil)

	completedEvent(repo, []uint{1, 2, 3}, domain.Winners{
		First:  &domain.WinnerEntry{UserID: 2, PrizeCents: 20000},
		Second: &domain.WinnerEntry{UserID: 1, PrizeCents: 7000},
	})
	completedEvent(repo, []uint{1, 2, 3}, domain.Winners{
		First: &domain.WinnerEntry{UserID: 3, PrizeCents: 20000},
		Third: &domain.WinnerEntry{UserID: 1, PrizeCents: 3000},
	})

	stats, err := svc.GetUserStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.GamesWon, "second and third place are not wins")
	assert.Equal(t, int64(10000), stats.TotalEarningsCents)
}

func TestStatsService_GetGroupLeaderboard(t *testing.T) {
	eventRepo := newFakeEventRepo()
	groupRepo := newFakeGroupRepo()
	userRepo := newFakeUserRepo(
		domain.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice"},
		domain.User{ID: 2, Email: "bob@example.com", DisplayName: "Bob"},
		domain.User{ID: 3, Email: "carol@example.com", DisplayName: "Carol"},
	)
	svc := NewStatsService(eventRepo, groupRepo, userRepo, nil)

	group, err := groupRepo.Create(context.Background(), domain.Group{Name: "Regulars", OwnerID: 1})
	require.NoError(t, err)
	require.NoError(t, groupRepo.AddMember(context.Background(), group.ID, 2, "bob@example.com"))
	require.NoError(t, groupRepo.AddMember(context.Background(), group.ID, 3, "carol@example.com"))

	// Bob wins twice, Alice once, Carol never.
	completedEvent(eventRepo, []uint{1, 2, 3}, domain.Winners{
		First: &domain.WinnerEntry{UserID: 2, PrizeCents: 30000},
	})
	completedEvent(eventRepo, []uint{1, 2, 3}, domain.Winners{
		First:  &domain.WinnerEntry{UserID: 2, PrizeCents: 20000},
		Second: &domain.WinnerEntry{UserID: 3, PrizeCents: 8000},
	})
	completedEvent(eventRepo, []uint{1, 2, 3}, domain.Winners{
		First: &domain.WinnerEntry{UserID: 1, PrizeCents: 30000},
	})

	leaderboard, err := svc.GetGroupLeaderboard(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, leaderboard, 3)

	assert.Equal(t, "Bob", leaderboard[0].DisplayName)
	assert.Equal(t, 2, leaderboard[0].GamesWon)
	assert.Equal(t, int64(50000), leaderboard[0].TotalEarningsCents)

	assert.Equal(t, "Alice", leaderboard[1].DisplayName)
	assert.Equal(t, 1, leaderboard[1].GamesWon)

	assert.Equal(t, "Carol", leaderboard[2].DisplayName)
	assert.Equal(t, 0, leaderboard[2].GamesWon)
	assert.Equal(t, int64(8000), leaderboard[2].TotalEarningsCents, "placed finishes still count toward earnings")
	assert.Equal(t, 3, leaderboard[2].GamesPlayed)
}

func TestStatsService_GetGroupLeaderboard_StableForTies(t *testing.T) {
	eventRepo := newFakeEventRepo()
	groupRepo := newFakeGroupRepo()
	userRepo := newFakeUserRepo(
		domain.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice"},
		domain.User{ID: 2, Email: "bob@example.com", DisplayName: "Bob"},
	)
	svc := NewStatsService(eventRepo, groupRepo, userRepo, nil)

	group, err := groupRepo.Create(context.Background(), domain.Group{Name: "Regulars", OwnerID: 1})
	require.NoError(t, err)
	require.NoError(t, groupRepo.AddMember(context.Background(), group.ID, 2, "bob@example.com"))

	leaderboard, err := svc.GetGroupLeaderboard(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, leaderboard, 2)

	// With no wins anywhere, member order is preserved.
	assert.Equal(t, "Alice", leaderboard[0].DisplayName)
	assert.Equal(t, "Bob", leaderboard[1].DisplayName)
}
