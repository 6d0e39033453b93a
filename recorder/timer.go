package recorder

import (
	"fmt"
	"sync"
	"time"
)

// FormatElapsed renders a duration as zero-padded MM:SS, truncating toward
// zero. Sessions longer than an hour keep counting minutes past 59.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// sessionTimer ticks once a second and reports the elapsed time measured
// from a fixed origin, so display drift cannot accumulate across ticks.
type sessionTimer struct {
	stop chan struct{}
	once sync.Once
}

func startSessionTimer(origin time.Time, tick func(elapsed string)) *sessionTimer {
	t := &sessionTimer{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case now := <-ticker.C:
				tick(FormatElapsed(now.Sub(origin)))
			}
		}
	}()
	return t
}

// Stop cancels the timer. Safe to call more than once.
func (t *sessionTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}
