// Package autolock runs an idle timer that fires a callback, typically
// Vault.Lock, after a period without activity.
package autolock

import (
	"sync"
	"time"
)

// Timer calls onIdle once the timeout elapses without a Touch. A
// non-positive timeout disables it.
type Timer struct {
	mu      sync.Mutex
	timeout time.Duration
	onIdle  func()
	timer   *time.Timer
	stopped bool
}

// Minutes converts a configured auto-lock value to a duration.
func Minutes(m uint32) time.Duration {
	return time.Duration(m) * time.Minute
}

// New starts an idle timer.
func New(timeout time.Duration, onIdle func()) *Timer {
	t := &Timer{timeout: timeout, onIdle: onIdle}
	t.Touch()
	return t
}

// Touch records activity and restarts the countdown. It also re-arms a timer
// that has already fired.
func (t *Timer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.timeout <= 0 {
		return
	}
	t.timer = time.AfterFunc(t.timeout, t.onIdle)
}

// SetTimeout changes the timeout and restarts the countdown.
func (t *Timer) SetTimeout(timeout time.Duration) {
	t.mu.Lock()
	t.timeout = timeout
	t.mu.Unlock()
	t.Touch()
}

// Timeout returns the current timeout.
func (t *Timer) Timeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeout
}

// Stop disarms the timer permanently. A callback already running is not
// interrupted.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
