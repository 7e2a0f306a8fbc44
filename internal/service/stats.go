package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/suckingout/poker-nights-api/internal/domain"
)

const leaderboardTTL = time.Minute

type StatsEventRepository interface {
	FindCompletedByPlayers(ctx context.Context, userIDs []uint) ([]domain.Event, error)
	CountUpcomingByPlayer(ctx context.Context, userID uint, now time.Time) (int, error)
}

type StatsGroupRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Group, error)
}

type StatsService struct {
	eventRepo StatsEventRepository
	groupRepo StatsGroupRepository
	userRepo  UserRepository
	cache     *redis.Client
}

// NewStatsService builds the stats service. cache may be nil, in which case
// leaderboards are computed on every call.
func NewStatsService(eventRepo StatsEventRepository, groupRepo StatsGroupRepository, userRepo UserRepository, cache *redis.Client) *StatsService {
	return &StatsService{
		eventRepo: eventRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		cache:     cache,
	}
}

// GetUserStats derives a player's record from their completed events. Each
// completed event counts as a game played; a first place win counts as a
// game won, and any placed finish adds its prize to the earnings.
func (s *StatsService) GetUserStats(ctx context.Context, userID uint) (domain.UserStats, error) {
	completed, err := s.eventRepo.FindCompletedByPlayers(ctx, []uint{userID})
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.eventRepo.FindCompletedByPlayers -> %w", err)
	}

	stats := domain.UserStats{GamesPlayed: len(completed)}
	for _, event := range completed {
		wins, earnings := tally(event, userID)
		stats.GamesWon += wins
		stats.TotalEarningsCents += earnings
	}

	upcoming, err := s.eventRepo.CountUpcomingByPlayer(ctx, userID, time.Now())
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.eventRepo.CountUpcomingByPlayer -> %w", err)
	}
	stats.UpcomingGames = upcoming

	return stats, nil
}

// GetGroupLeaderboard aggregates every member's record over the group's
// completed events and ranks by wins. Results are cached briefly since the
// aggregation walks all completed events of the member set.
func (s *StatsService) GetGroupLeaderboard(ctx context.Context, groupID uint) ([]domain.GroupStats, error) {
	cacheKey := fmt.Sprintf("leaderboard:group:%d", groupID)

	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("s.groupRepo.FindByID -> %w", err)
	}

	infos, err := s.userRepo.FindInfoByIDs(ctx, group.Members)
	if err != nil {
		return nil, fmt.Errorf("s.userRepo.FindInfoByIDs -> %w", err)
	}

	completed, err := s.eventRepo.FindCompletedByPlayers(ctx, group.Members)
	if err != nil {
		return nil, fmt.Errorf("s.eventRepo.FindCompletedByPlayers -> %w", err)
	}

	leaderboard := make([]domain.GroupStats, len(infos))
	for i, info := range infos {
		row := domain.GroupStats{UserID: info.ID, DisplayName: info.DisplayName}
		for _, event := range completed {
			if !event.HasPlayer(info.ID) {
				continue
			}
			row.GamesPlayed++
			wins, earnings := tally(event, info.ID)
			row.GamesWon += wins
			row.TotalEarningsCents += earnings
		}
		leaderboard[i] = row
	}

	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].GamesWon > leaderboard[j].GamesWon
	})

	s.cacheSet(ctx, cacheKey, leaderboard)

	return leaderboard, nil
}

func tally(event domain.Event, userID uint) (wins int, earningsCents int64) {
	if event.Winners == nil {
		return 0, 0
	}

	w := *event.Winners
	if w.First != nil && w.First.UserID == userID {
		return 1, w.First.PrizeCents
	}
	if w.Second != nil && w.Second.UserID == userID {
		return 0, w.Second.PrizeCents
	}
	if w.Third != nil && w.Third.UserID == userID {
		return 0, w.Third.PrizeCents
	}

	return 0, 0
}

func (s *StatsService) cacheGet(ctx context.Context, key string) ([]domain.GroupStats, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("leaderboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var leaderboard []domain.GroupStats
	if err = json.Unmarshal(raw, &leaderboard); err != nil {
		zap.L().Warn("leaderboard cache decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return leaderboard, true
}

func (s *StatsService) cacheSet(ctx context.Context, key string, leaderboard []domain.GroupStats) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(leaderboard)
	if err != nil {
		return
	}

	if err = s.cache.Set(ctx, key, raw, leaderboardTTL).Err(); err != nil {
		zap.L().Warn("leaderboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
