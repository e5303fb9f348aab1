package engine

import (
	"sync"
	"time"
)

// countdown runs fn once per interval until stopped. Stop is idempotent
// and safe to call from fn itself or from another goroutine; Start cancels
// any run already in progress so at most one loop is ever active.
type countdown struct {
	mu   sync.Mutex
	stop chan struct{}
}

func (c *countdown) Start(interval time.Duration, fn func()) {
	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (c *countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// delayed is a cancelable one-shot task. Schedule replaces any pending
// task; Cancel is idempotent.
type delayed struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (d *delayed) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

func (d *delayed) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
