// internal/writer/publisher_test.go
package writer

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tamzrod/trainwatch/internal/poller"
	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/version"
)

type recordingWriter struct {
	snaps []status.Snapshot
	fail  error
}

func (r *recordingWriter) WriteStatus(s status.Snapshot) error {
	r.snaps = append(r.snaps, s)
	return r.fail
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_TracksHealthAndFailedCycles(t *testing.T) {
	rw := &recordingWriter{}
	seed := okSnapshot(81, 0).Status
	p := NewPublisher(rw, seed, quietLogger())

	if got := p.Snapshot().Health; got != status.HealthUnknown {
		t.Fatalf("expected unknown health before first cycle, got %d", got)
	}

	repoErr := &poller.FetchError{Endpoint: "auth", Err: &version.NoMatchError{Source: "x"}}
	p.Publish(seed, repoErr)
	p.Publish(seed, &poller.FetchError{Endpoint: "auth", Err: errors.New("timeout")})

	snap := p.Snapshot()
	if snap.Health != status.HealthError || snap.FailedCycles != 2 {
		t.Fatalf("unexpected error snapshot %+v", snap)
	}
	if snap.LastErrorCode != status.ErrorCodeFetch {
		t.Fatalf("expected fetch error code, got %d", snap.LastErrorCode)
	}
	if rw.snaps[0].LastErrorCode != status.ErrorCodeRepoMismatch {
		t.Fatalf("expected repo mismatch code on first failure, got %d", rw.snaps[0].LastErrorCode)
	}

	next := okSnapshot(82, 0).Status
	p.Publish(next, nil)

	snap = p.Snapshot()
	if snap.Health != status.HealthOK || snap.FailedCycles != 0 || snap.LastErrorCode != status.ErrorCodeNone {
		t.Fatalf("recovery not reflected: %+v", snap)
	}
	if snap.Status.Train != 82 {
		t.Fatalf("expected train 82, got %d", snap.Status.Train)
	}
	if len(rw.snaps) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(rw.snaps))
	}
}

func TestPublisher_FailedCyclesSaturate(t *testing.T) {
	p := NewPublisher(&recordingWriter{}, status.Status{}, quietLogger())
	p.snap.FailedCycles = 0xFFFF

	p.Publish(status.Status{}, errors.New("down"))

	if got := p.Snapshot().FailedCycles; got != 0xFFFF {
		t.Fatalf("failed cycles wrapped: %d", got)
	}
}

func TestPublisher_WriteErrorIsSwallowed(t *testing.T) {
	rw := &recordingWriter{fail: errors.New("broken pipe")}
	p := NewPublisher(rw, status.Status{}, quietLogger())

	p.Publish(okSnapshot(81, 0).Status, nil)

	if p.Snapshot().Health != status.HealthOK {
		t.Fatalf("snapshot should advance even when delivery fails")
	}
}
