package mediaservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sushihentaime/haerin/internal/common"
)

// OrphanCleaner deletes assets named in media.orphaned events.
type OrphanCleaner struct {
	mb     common.MessageConsumer
	store  Store
	logger Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewOrphanCleaner(mb common.MessageConsumer, store Store, logger Logger) *OrphanCleaner {
	ctx, cancel := context.WithCancel(context.Background())
	return &OrphanCleaner{
		mb:     mb,
		store:  store,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *OrphanCleaner) Run() {
	msgs, err := c.mb.Consume(common.MediaOrphanedKey, common.MediaExchange, common.MediaOrphanedQueue)
	if err != nil {
		c.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				// the delete is never retried, a failed cleanup only leaves a stray file
				if err := c.handle(msg.Body); err != nil {
					c.logger.Error("could not delete orphaned asset", slog.String("error", err.Error()))
				}

				if err := msg.Ack(false); err != nil {
					c.logger.Error("could not ack message", slog.String("error", err.Error()))
				}

			case <-c.ctx.Done():
				c.logger.Info("stopping OrphanCleaner due to context cancellation")
				return
			}
		}
	}()
}

func (c *OrphanCleaner) handle(body []byte) error {
	var event common.MediaOrphanedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	err := c.store.Delete(ctx, event.AssetID)
	switch {
	case err == nil:
		c.logger.Info("orphaned asset deleted", slog.String("asset_id", event.AssetID))
		return nil
	case errors.Is(err, ErrAssetNotFound):
		return nil
	default:
		return err
	}
}

func (c *OrphanCleaner) Close() {
	c.cancel()
}
