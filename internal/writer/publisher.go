// internal/writer/publisher.go
package writer

import (
	"log/slog"
	"sync"

	"github.com/tamzrod/trainwatch/internal/status"
)

// Publisher turns watcher notifications into status snapshots and
// delivers them to a StatusWriter. Write failures are logged, never returned
// to the watcher.
type Publisher struct {
	mu     sync.Mutex
	sw     StatusWriter
	snap   status.Snapshot
	logger *slog.Logger
}

// NewPublisher starts from HealthUnknown over the seed status.
func NewPublisher(sw StatusWriter, seed status.Status, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		sw: sw,
		snap: status.Snapshot{
			Health:        status.HealthUnknown,
			LastErrorCode: status.ErrorCodeNone,
			Status:        seed.Clone(),
		},
		logger: logger.With("component", "status_memory"),
	}
}

// Publish records one notified cycle and writes the resulting snapshot.
// It matches the watcher callback signature.
func (p *Publisher) Publish(s status.Status, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.snap.Health = status.HealthError
		p.snap.LastErrorCode = status.ErrorCode(err)
		if p.snap.FailedCycles < 0xFFFF {
			p.snap.FailedCycles++
		}
	} else {
		p.snap.Health = status.HealthOK
		p.snap.LastErrorCode = status.ErrorCodeNone
		p.snap.FailedCycles = 0
	}
	p.snap.Status = s.Clone()

	if werr := p.sw.WriteStatus(p.snap); werr != nil {
		p.logger.Warn("status memory write failed", "error", werr)
		return
	}
	p.logger.Debug("status memory updated",
		"health", p.snap.Health,
		"train", p.snap.Status.Train,
		"failedCycles", p.snap.FailedCycles,
	)
}

// Snapshot returns the last snapshot handed to the writer.
func (p *Publisher) Snapshot() status.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.snap
	out.Status = p.snap.Status.Clone()
	return out
}
