package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/adrnhkm/nearby-chat/internal/presence"
)

const sweepBatchSize = 512

// PresenceSweeper reclaims presence records that aged far beyond the
// staleness window. Freshness itself is always decided at read time; the
// sweeper only keeps the geo and last-seen indexes from growing without
// bound as users stop reporting.
type PresenceSweeper struct {
	Redis     *redis.Client
	Tracker   *presence.Tracker
	Interval  time.Duration
	Retention time.Duration

	wg sync.WaitGroup
}

func NewPresenceSweeper(rdb *redis.Client, tracker *presence.Tracker) *PresenceSweeper {
	return &PresenceSweeper{
		Redis:     rdb,
		Tracker:   tracker,
		Interval:  10 * time.Minute,
		Retention: 24 * time.Hour,
	}
}

func (s *PresenceSweeper) Start(ctx context.Context) {
	log.Info().Dur("interval", s.Interval).Dur("retention", s.Retention).Msg("sweeper: starting presence sweeper")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sweeper: stopping presence sweeper")
				return
			case <-ticker.C:
				swept, err := s.Sweep(ctx)
				if err != nil {
					log.Error().Err(err).Msg("sweeper: sweep pass failed")
					continue
				}
				if swept > 0 {
					log.Info().Int("swept", swept).Msg("sweeper: reclaimed expired presence records")
				}
			}
		}
	}()
}

// Sweep removes every presence record whose last report is older than the
// retention horizon. Returns how many users were reclaimed.
func (s *PresenceSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.Tracker.Now().Add(-s.Retention).UnixMilli()

	swept := 0
	for {
		ids, err := s.Redis.ZRangeByScore(ctx, presence.LastSeenKey, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   strconv.FormatInt(cutoff, 10),
			Count: sweepBatchSize,
		}).Result()
		if err != nil {
			return swept, err
		}
		if len(ids) == 0 {
			return swept, nil
		}

		for _, userID := range ids {
			if appErr := s.Tracker.Clear(ctx, userID); appErr != nil {
				log.Warn().Str("userID", userID).Str("error", appErr.Message).Msg("sweeper: failed to clear presence")
				continue
			}
			swept++
		}

		if len(ids) < sweepBatchSize {
			return swept, nil
		}
	}
}

func (s *PresenceSweeper) Wait() {
	s.wg.Wait()
	log.Info().Msg("sweeper: presence sweeper stopped")
}
