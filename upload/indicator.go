package upload

import (
	"sync"

	"github.com/google/uuid"
)

// Indicator counts in-flight submissions. The busy state is visible exactly
// while the count is above zero, so overlapping submissions cannot clear
// each other's indicator the way a shared boolean would.
type Indicator struct {
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	onChange func(visible bool, inflight int)
}

// NewIndicator constructs an Indicator. onChange fires on every count
// transition and may be nil.
func NewIndicator(onChange func(visible bool, inflight int)) *Indicator {
	return &Indicator{
		inflight: make(map[uuid.UUID]struct{}),
		onChange: onChange,
	}
}

// Acquire registers one in-flight submission and returns its token. The
// caller must release the token when the submission settles.
func (i *Indicator) Acquire() *Token {
	i.mu.Lock()
	id := uuid.New()
	i.inflight[id] = struct{}{}
	n := len(i.inflight)
	i.mu.Unlock()

	i.notify(n)
	return &Token{id: id, indicator: i}
}

// Visible reports whether any submission is still in flight.
func (i *Indicator) Visible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.inflight) > 0
}

// InFlight returns the current submission count.
func (i *Indicator) InFlight() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.inflight)
}

func (i *Indicator) release(id uuid.UUID) {
	i.mu.Lock()
	if _, ok := i.inflight[id]; !ok {
		i.mu.Unlock()
		return
	}
	delete(i.inflight, id)
	n := len(i.inflight)
	i.mu.Unlock()

	i.notify(n)
}

func (i *Indicator) notify(n int) {
	if i.onChange != nil {
		i.onChange(n > 0, n)
	}
}

// Token identifies one acquired slot of the indicator.
type Token struct {
	id        uuid.UUID
	indicator *Indicator
	once      sync.Once
}

// Release returns the slot. Releasing more than once is harmless.
func (t *Token) Release() {
	t.once.Do(func() {
		t.indicator.release(t.id)
	})
}
