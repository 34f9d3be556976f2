package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gccn-chatbot/session-service/internal/pkg/metrics"
	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrWriterStopped is returned for appends submitted after the workers exited.
var ErrWriterStopped = errors.New("history writer stopped")

type appendJob struct {
	ctx    context.Context
	userID string
	turns  []domain.Turn
	done   chan error
}

// HistoryWriter routes history appends to a fixed set of workers using
// consistent hashing on the user ID, so all appends of one user run on one
// goroutine in submission order and never interleave.
type HistoryWriter struct {
	workers []chan appendJob
	repo    ports.HistoryRepository
	stopped chan struct{}
	log     zerolog.Logger
}

// NewHistoryWriter creates a HistoryWriter with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHistoryWriter(numWorkers int, repo ports.HistoryRepository, log zerolog.Logger) *HistoryWriter {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &HistoryWriter{
		workers: make([]chan appendJob, numWorkers),
		repo:    repo,
		stopped: make(chan struct{}),
		log:     log.With().Str("component", "history_writer").Logger(),
	}
	for i := range w.workers {
		w.workers[i] = make(chan appendJob, channelBuffer)
	}
	return w
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (w *HistoryWriter) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		close(w.stopped)
	}()
	for i, ch := range w.workers {
		go w.runWorker(ctx, i, ch)
	}
}

// Append hands the turns to the worker owning userID and waits for the
// store's answer.
func (w *HistoryWriter) Append(ctx context.Context, userID string, turns ...domain.Turn) error {
	select {
	case <-w.stopped:
		return ErrWriterStopped
	default:
	}

	job := appendJob{ctx: ctx, userID: userID, turns: turns, done: make(chan error, 1)}
	idx := w.shardIndex(userID)

	select {
	case w.workers[idx] <- job:
		metrics.HistoryWriterQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(w.workers[idx])))
	case <-w.stopped:
		return ErrWriterStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-job.done:
		return err
	case <-w.stopped:
		return ErrWriterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (w *HistoryWriter) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(w.workers)))
}

func (w *HistoryWriter) runWorker(ctx context.Context, id int, ch <-chan appendJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-ch:
			metrics.HistoryWriterQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			err := w.repo.Append(job.ctx, job.userID, job.turns...)
			if err != nil {
				w.log.Error().Err(err).
					Str("user_id", job.userID).
					Int("worker_id", id).
					Msg("history append failed")
			}
			job.done <- err
		}
	}
}
