package app

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/suckingout/poker-nights-api/internal/api"
	"github.com/suckingout/poker-nights-api/internal/config"
	"github.com/suckingout/poker-nights-api/internal/db"
	"github.com/suckingout/poker-nights-api/internal/logger"
	"github.com/suckingout/poker-nights-api/internal/repository"
	"github.com/suckingout/poker-nights-api/internal/repository/dao"
	"github.com/suckingout/poker-nights-api/internal/scheduler"
)

const statusSweepInterval = time.Minute

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	// The leaderboard cache is optional; the API serves without it.
	var cache *redis.Client
	if conf.Redis != nil && conf.Redis.Addr != "" {
		cache, err = db.OpenRedis(conf.Redis)
		if err != nil {
			zap.L().Warn("redis unavailable, leaderboard caching disabled", zap.Error(err))
			cache = nil
		}
	}

	eventRepo := repository.NewEventRepository(dao.NewEventDAO(postgresDB))
	sched, err := scheduler.New(eventRepo)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler -> %w", err)
	}
	if err = sched.Start(statusSweepInterval); err != nil {
		return fmt.Errorf("failed to start scheduler -> %w", err)
	}
	defer sched.Stop()

	s := api.NewServer(conf, postgresDB, cache)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
