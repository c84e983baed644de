package slots

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBeginSupersedesPreviousToken(t *testing.T) {
	manager := NewManager()

	first := manager.Begin(context.Background(), "favorites")
	second := manager.Begin(context.Background(), "favorites")

	if first.ID == second.ID {
		t.Fatal("Expected distinct token IDs")
	}

	select {
	case <-first.Context().Done():
	default:
		t.Fatal("Expected first token to be cancelled")
	}

	if !first.Superseded() {
		t.Error("Expected first token to report superseded")
	}
	if second.Superseded() || second.Context().Err() != nil {
		t.Error("Expected second token to be live")
	}
	if manager.Commit(first, func() {}) || !manager.Commit(second, func() {}) {
		t.Error("Expected only the second token to be current")
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	manager := NewManager()

	releases := manager.Begin(context.Background(), "releases")
	favorites := manager.Begin(context.Background(), "favorites")

	if releases.Context().Err() != nil || favorites.Context().Err() != nil {
		t.Error("Expected tokens in different slots not to cancel each other")
	}
}

func TestCommitOnlyForCurrentToken(t *testing.T) {
	manager := NewManager()

	stale := manager.Begin(context.Background(), "release")
	current := manager.Begin(context.Background(), "release")

	committed := ""
	if manager.Commit(stale, func() { committed = "stale" }) {
		t.Error("Expected stale commit to be rejected")
	}
	if !manager.Commit(current, func() { committed = "current" }) {
		t.Error("Expected current commit to run")
	}
	if committed != "current" {
		t.Errorf("Expected 'current', got '%s'", committed)
	}
}

func TestCommitRejectsTokenWithDoneContext(t *testing.T) {
	manager := NewManager()

	parent, cancel := context.WithCancel(context.Background())
	token := manager.Begin(parent, "releases")
	cancel()

	if manager.Commit(token, func() { t.Error("Expected callback not to run") }) {
		t.Error("Expected commit of a cancelled request to be rejected")
	}
	if !manager.Complete(token, nil) {
		t.Error("Expected cancelled request to still release its slot")
	}
}

func TestWhenIdle(t *testing.T) {
	manager := NewManager()

	ran := 0
	if !manager.WhenIdle("favorites", func() { ran++ }) {
		t.Error("Expected idle slot to run callback")
	}

	token := manager.Begin(context.Background(), "favorites")
	if manager.WhenIdle("favorites", func() { ran++ }) {
		t.Error("Expected busy slot to skip callback")
	}

	manager.Complete(token, nil)
	if !manager.WhenIdle("favorites", func() { ran++ }) {
		t.Error("Expected released slot to run callback")
	}
	if ran != 2 {
		t.Errorf("Expected 2 callback runs, got %d", ran)
	}
}

func TestCompleteReturnsSlotToIdle(t *testing.T) {
	manager := NewManager()

	token := manager.Begin(context.Background(), "releases")

	ran := false
	if !manager.Complete(token, func() { ran = true }) {
		t.Error("Expected completion of current token")
	}
	if !ran {
		t.Error("Expected completion callback to run")
	}
	if !manager.WhenIdle("releases", nil) {
		t.Error("Expected slot to be idle after completion")
	}
	if token.Context().Err() == nil {
		t.Error("Expected completed token context to be released")
	}
	if token.Superseded() {
		t.Error("Expected completed token not to count as superseded")
	}

	if manager.Complete(token, func() { t.Error("Expected callback not to run twice") }) {
		t.Error("Expected second completion to be rejected")
	}
}

func TestCompleteOfSupersededTokenKeepsNewToken(t *testing.T) {
	manager := NewManager()

	old := manager.Begin(context.Background(), "favorites")
	fresh := manager.Begin(context.Background(), "favorites")

	if manager.Complete(old, nil) {
		t.Error("Expected superseded token not to complete the slot")
	}
	if manager.WhenIdle("favorites", nil) || !manager.Commit(fresh, func() {}) {
		t.Error("Expected fresh token to stay active")
	}
}

func TestIsCancellation(t *testing.T) {
	manager := NewManager()

	t.Run("nil error", func(t *testing.T) {
		token := manager.Begin(context.Background(), "a")
		if IsCancellation(token, nil) {
			t.Error("Expected nil error not to be a cancellation")
		}
	})

	t.Run("superseded", func(t *testing.T) {
		token := manager.Begin(context.Background(), "b")
		manager.Begin(context.Background(), "b")

		err := fmt.Errorf("request failed: %w", context.Cause(token.Context()))
		if !IsCancellation(token, err) {
			t.Error("Expected superseded request error to be a cancellation")
		}
	})

	t.Run("parent cancelled", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		token := manager.Begin(parent, "c")
		cancel()

		if !IsCancellation(token, fmt.Errorf("do: %w", context.Canceled)) {
			t.Error("Expected parent cancellation to be a cancellation")
		}
	})

	t.Run("deadline", func(t *testing.T) {
		parent, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		token := manager.Begin(parent, "d")
		<-token.Context().Done()

		if IsCancellation(token, fmt.Errorf("do: %w", context.DeadlineExceeded)) {
			t.Error("Expected deadline to be reported, not suppressed")
		}
	})

	t.Run("genuine failure", func(t *testing.T) {
		token := manager.Begin(context.Background(), "e")
		if IsCancellation(token, errors.New("HTTP error: 500")) {
			t.Error("Expected genuine failure not to be a cancellation")
		}
	})
}

func TestConcurrentBeginLeavesOneCurrent(t *testing.T) {
	manager := NewManager()

	var wg sync.WaitGroup
	tokens := make([]*Token, 50)
	for i := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i] = manager.Begin(context.Background(), "releases")
		}()
	}
	wg.Wait()

	live := 0
	for _, token := range tokens {
		if token.Context().Err() == nil {
			live++
			if !manager.Commit(token, func() {}) {
				t.Error("Expected the live token to be current")
			}
		}
	}
	if live != 1 {
		t.Errorf("Expected exactly 1 live token, got %d", live)
	}
}
