package cloud

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/pcview/cutaway/internal/logger"
)

// DefaultBatchSize is the reference producer-to-consumer transfer unit.
const DefaultBatchSize = 500_000

// batchChannelDepth bounds how far the producer can run ahead of the
// consumer. Batches are large, so a small depth keeps memory pressure down
// without stalling file reads between consumer ticks.
const batchChannelDepth = 4

// Session is one active load operation. It owns a background producer
// goroutine that reads points from the source and publishes them in batches.
// Exactly one Session should be current at a time; starting a new load must
// Cancel the previous Session so its producer exits instead of running to
// completion unobserved.
type Session struct {
	declared  uint64
	effective uint64
	batchSize uint64

	batches chan Batch
	cancel  context.CancelFunc

	// Consumer-side state, touched only from the consumer goroutine.
	batchesSeen uint64
	finished    bool
}

// BeginLoad starts a load session over r. countLimit caps the number of
// points delivered (0 = all points the reader yields, bounded by its
// declared total). The returned Session owns r and closes it when the
// producer exits.
//
// The producer cuts off once the point count exceeds the effective total,
// so a reader that outlives its declared count delivers one extra record;
// progress accounting expects this.
func BeginLoad(r Reader, countLimit uint64, batchSize int) *Session {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	declared := r.Header().PointCount
	effective := countLimit
	if effective == 0 {
		effective = declared
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		declared:  declared,
		effective: effective,
		batchSize: uint64(batchSize),
		batches:   make(chan Batch, batchChannelDepth),
		cancel:    cancel,
	}

	logger.Info("loading point cloud",
		zap.Uint64("points", effective),
		zap.Uint64("declared", declared),
	)

	go s.run(ctx, r)

	return s
}

// run is the producer loop. It owns the batches channel; closing it is the
// authoritative end-of-load signal to the consumer.
func (s *Session) run(ctx context.Context, r Reader) {
	defer close(s.batches)
	defer r.Close()

	var processed uint64
	batch := make(Batch, 0, s.batchSize)

	for {
		if ctx.Err() != nil {
			logger.Debug("load cancelled", zap.Uint64("points", processed))
			return
		}

		rec, err := r.ReadNext()
		if err != nil {
			// io.EOF is a clean end; anything else is a malformed record,
			// which truncates the load silently rather than failing it.
			if err != io.EOF {
				logger.Warn("unreadable record ends load early",
					zap.Uint64("points", processed),
					zap.Error(err),
				)
			}
			s.deliver(ctx, batch)
			logger.Info("points loaded", zap.Uint64("points", processed))
			return
		}

		batch = append(batch, rec)
		processed++

		if processed%s.batchSize == 0 {
			if !s.deliver(ctx, batch) {
				return
			}
			batch = make(Batch, 0, s.batchSize)
		}

		if processed > s.effective {
			s.deliver(ctx, batch)
			logger.Info("points loaded", zap.Uint64("points", processed))
			return
		}
	}
}

// deliver sends a batch unless the session has been cancelled.
func (s *Session) deliver(ctx context.Context, batch Batch) bool {
	select {
	case s.batches <- batch:
		return true
	case <-ctx.Done():
		return false
	}
}

// Poll receives at most one batch without blocking. It returns (nil, false)
// both when no batch is ready yet and when the stream is exhausted; use
// Finished to tell the cases apart.
func (s *Session) Poll() (Batch, bool) {
	select {
	case batch, ok := <-s.batches:
		if !ok {
			s.finished = true
			return nil, false
		}
		s.batchesSeen++
		return batch, true
	default:
		return nil, false
	}
}

// Finished reports whether the producer has disconnected: no more batches
// will ever arrive. This, not any count heuristic, is the end-of-load signal.
func (s *Session) Finished() bool {
	return s.finished
}

// Progress returns the load fraction in [0, 1], counting received batches
// against the expected total (including the final partial batch).
func (s *Session) Progress() float64 {
	if s.finished {
		return 1
	}
	expected := s.effective/s.batchSize + 1
	p := float64(s.batchesSeen) / float64(expected)
	if p > 1 {
		p = 1
	}
	return p
}

// DeclaredTotal returns the reader's declared point count.
func (s *Session) DeclaredTotal() uint64 {
	return s.declared
}

// EffectiveTotal returns the point-count target for this load.
func (s *Session) EffectiveTotal() uint64 {
	return s.effective
}

// Cancel signals the producer to exit between reads. Safe to call more than
// once and after the producer has already finished.
func (s *Session) Cancel() {
	s.cancel()
}
