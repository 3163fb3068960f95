package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classgrid/classgrid-backend/internal/config"
	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/store"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker consumes the audit queue and persists events in batches.
// Events are append-only and tolerate delay, so batching by size or age
// keeps the write load off the request path.
type AuditWorker struct {
	auditStore *store.AuditStore
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(auditStore *store.AuditStore, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		auditStore: auditStore,
		rdb:        rdb,
		log:        log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine; returns when ctx
// is cancelled, after flushing whatever is buffered.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]model.AuditEvent, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.PersistAuditQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e model.AuditEvent
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, e)
		}
	}
}

// flushSafe writes the batch, requeueing it on failure so events are
// not lost across a database hiccup. Reports whether the write landed.
func (w *AuditWorker) flushSafe(ctx context.Context, batch []model.AuditEvent) bool {
	if len(batch) == 0 {
		return true
	}

	if err := w.auditStore.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Batch insert failed, requeueing")
		for _, e := range batch {
			raw, err := json.Marshal(e)
			if err != nil {
				continue
			}
			w.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, raw)
		}
		return false
	}

	w.log.Debug().Int("count", len(batch)).Msg("Audit batch persisted")
	return true
}

// drain persists whatever is still queued before shutdown. Stops on the
// first failed flush; requeued items wait for the next run.
func (w *AuditWorker) drain(ctx context.Context) {
	batch := make([]model.AuditEvent, 0, AuditBatchSize)
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAuditQueue).Result()
		if err != nil {
			break
		}

		var e model.AuditEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}
		batch = append(batch, e)

		if len(batch) >= AuditBatchSize {
			if !w.flushSafe(ctx, batch) {
				return
			}
			batch = batch[:0]
		}
	}
	w.flushSafe(ctx, batch)
}
