package notify

import (
	"sync"
	"testing"
	"time"
)

func TestNotifyAppendsAndAutoDismisses(t *testing.T) {
	var mu sync.Mutex
	var last []Notice
	c := NewCenter(30*time.Millisecond, func(ns []Notice) {
		mu.Lock()
		last = ns
		mu.Unlock()
	})

	c.Notify("first")
	if got := c.Active(); len(got) != 1 || got[0].Text != "first" {
		t.Fatalf("active = %v, want one notice %q", got, "first")
	}

	deadline := time.After(2 * time.Second)
	for len(c.Active()) != 0 {
		select {
		case <-deadline:
			t.Fatal("notice never auto-dismissed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(last) != 0 {
		t.Errorf("final change snapshot = %v, want empty", last)
	}
}

func TestNoticesExpireIndependently(t *testing.T) {
	c := NewCenter(60*time.Millisecond, nil)

	c.Notify("older")
	time.Sleep(30 * time.Millisecond)
	c.Notify("newer")

	waitForTexts(t, c, []string{"newer"})
	waitForTexts(t, c, nil)
}

func TestDismissRemovesOnlyTarget(t *testing.T) {
	c := NewCenter(time.Minute, nil)

	c.Notify("keep")
	id := c.Post("drop")

	c.Dismiss(id)
	got := c.Active()
	if len(got) != 1 || got[0].Text != "keep" {
		t.Fatalf("active = %v, want only %q", got, "keep")
	}

	// Already gone; must not disturb the rest of the queue.
	c.Dismiss(id)
	if len(c.Active()) != 1 {
		t.Errorf("repeat dismissal changed the queue: %v", c.Active())
	}
}

func TestQueueOrderOldestFirst(t *testing.T) {
	c := NewCenter(time.Minute, nil)
	c.Notify("a")
	c.Notify("b")
	got := c.Active()
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "b" {
		t.Fatalf("queue order = %v, want oldest first", got)
	}
	if got[1].ExpiresAt.Before(got[0].ExpiresAt) {
		t.Errorf("later notice expires before earlier one")
	}
}

func waitForTexts(t *testing.T, c *Center, want []string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		got := c.Active()
		if len(got) == len(want) {
			match := true
			for i := range got {
				if got[i].Text != want[i] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("active = %v, want %v", c.Active(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
