package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dinehub/restaurant-portal/restaurant-portal-backend/internal/config"
)

// SessionReaper cancels onboarding sessions that sat paused or idle past
// the configured cutoff, so abandoned wizards do not hold the
// one-active-session-per-user slot forever.
type SessionReaper struct {
	db         *sqlx.DB
	logger     *zap.Logger
	staleAfter time.Duration
}

// NewSessionReaper creates a new reaper
func NewSessionReaper(db *sqlx.DB, logger *zap.Logger, staleAfter time.Duration) *SessionReaper {
	return &SessionReaper{
		db:         db,
		logger:     logger,
		staleAfter: staleAfter,
	}
}

// Reap cancels every stale session and reports how many were touched.
// Step data stays on the cancelled rows for audit.
func (r *SessionReaper) Reap(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-r.staleAfter)

	result, err := r.db.ExecContext(ctx, `
		UPDATE onboarding_sessions
		SET status = 'cancelled', updated_at = NOW()
		WHERE status IN ('not_started', 'in_progress', 'paused')
		  AND updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	reaper := NewSessionReaper(db, logger, cfg.Onboarding.StaleAfter)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Onboarding.ReaperSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		reaped, err := reaper.Reap(ctx)
		if err != nil {
			logger.Error("Session reap failed", zap.Error(err))
			return
		}
		if reaped > 0 {
			logger.Info("Stale sessions cancelled", zap.Int64("count", reaped))
		}
	})
	if err != nil {
		logger.Fatal("Invalid reaper schedule",
			zap.String("schedule", cfg.Onboarding.ReaperSchedule),
			zap.Error(err))
	}

	scheduler.Start()
	logger.Info("Session reaper started",
		zap.String("schedule", cfg.Onboarding.ReaperSchedule),
		zap.Duration("stale_after", cfg.Onboarding.StaleAfter))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := scheduler.Stop()
	<-ctx.Done()
	logger.Info("Session reaper stopped")
}
