// internal/watcher/scheduler.go
package watcher

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned stop func is called.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// TickerScheduler is the default Scheduler.
// fn runs on the ticker goroutine, so a slow fn delays (and the ticker drops)
// later ticks instead of piling them up.
type TickerScheduler struct{}

// Every starts the ticker loop. One goroutine per call. No overlap. No retries.
func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
