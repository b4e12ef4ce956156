package filter

import "time"

// loadingGuard owns the timer that delays the loading decoration. At
// most one timer is armed; arming again stops the previous one. The
// generation counter lets a callback that already started notice it was
// superseded.
type loadingGuard struct {
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// arm stops any running timer and schedules fire(gen) after the delay
func (g *loadingGuard) arm(fire func(gen uint64)) {
	g.release()
	g.gen++
	gen := g.gen
	g.timer = time.AfterFunc(g.delay, func() { fire(gen) })
}

// release stops the timer. Callbacks already running see a newer gen.
func (g *loadingGuard) release() {
	if g.timer == nil {
		return
	}
	g.timer.Stop()
	g.timer = nil
	g.gen++
}

// current reports whether gen belongs to the armed timer
func (g *loadingGuard) current(gen uint64) bool {
	return g.timer != nil && g.gen == gen
}
