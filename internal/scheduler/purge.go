package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog/log"
)

// CommentPurger deletes the full comment feed and reports how many rows went.
type CommentPurger interface {
	DeleteAll(ctx context.Context) (int64, error)
}

// StartCommentPurge runs the nightly comment wipe on the given cron
// expression. It computes the next tick with gronx, sleeps until then,
// purges, and repeats until the returned cancel func fires.
func StartCommentPurge(ctx context.Context, cronExpr string, store CommentPurger) (context.CancelFunc, error) {
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid purge cron expression: %s", cronExpr)
	}

	ctx, cancel := context.WithCancel(ctx)
	go run(ctx, cronExpr, store)

	log.Info().Str("cron", cronExpr).Msg("Comment purge scheduler started")
	return cancel, nil
}

func run(ctx context.Context, cronExpr string, store CommentPurger) {
	for {
		next, err := gronx.NextTickAfter(cronExpr, time.Now(), false)
		if err != nil {
			log.Error().Err(err).Str("cron", cronExpr).Msg("Failed to compute next purge tick")
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-time.After(time.Until(next)):
			purgeOnce(ctx, store)
		case <-ctx.Done():
			log.Info().Msg("Comment purge scheduler stopping")
			return
		}
	}
}

func purgeOnce(ctx context.Context, store CommentPurger) {
	deleted, err := store.DeleteAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Comment purge failed")
		return
	}
	log.Info().Int64("deleted", deleted).Msg("Comment purge completed")
}
