package worker

import (
	"context"
	"encoding/json"
	"time"

	"registras/internal/model"
	"registras/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueAudit = "jobs:audit"

// AuditEvent is the queue payload for one recorded mutation. Services enqueue
// events after their transaction commits; the worker pool persists them.
// Losing an event degrades the history, never the pricing state.
type AuditEvent struct {
	Entity   string    `json:"entity"`
	EntityID uuid.UUID `json:"entity_id"`
	Action   string    `json:"action"`
	Before   *string   `json:"before,omitempty"`
	After    *string   `json:"after,omitempty"`
	Actor    *string   `json:"actor,omitempty"`
}

// Dispatcher enqueues audit events into a Redis list.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAudit pushes one audit event. Best effort — callers ignore the error
// beyond logging it.
func (d *Dispatcher) EnqueueAudit(ctx context.Context, ev AuditEvent) error {
	encoded, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueAudit, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the audit queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, audit repository.AuditRepository, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, audit, i)
	}
	log.Info().Msgf("audit worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, audit repository.AuditRepository, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("audit worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueAudit).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			persistAudit(ctx, audit, result[1])
		}
	}
}

func persistAudit(ctx context.Context, audit repository.AuditRepository, raw string) {
	var ev AuditEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal audit event")
		return
	}
	rec := &model.AuditRecord{
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Action:   ev.Action,
		Before:   ev.Before,
		After:    ev.After,
		Actor:    ev.Actor,
	}
	if err := audit.Append(ctx, rec); err != nil {
		log.Error().
			Str("entity", ev.Entity).
			Str("entity_id", ev.EntityID.String()).
			Err(err).
			Msg("failed to persist audit record")
	}
}
