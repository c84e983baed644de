package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	mu        sync.Mutex
	calls     map[string]int
	failUntil map[string]int
	done      chan string
}

func newFakeService() *fakeService {
	return &fakeService{
		calls:     make(map[string]int),
		failUntil: make(map[string]int),
		done:      make(chan string, 32),
	}
}

func (f *fakeService) run(name string) error {
	f.mu.Lock()
	f.calls[name]++
	failing := f.calls[name] <= f.failUntil[name]
	f.mu.Unlock()

	if failing {
		return errors.New("HTTP error: 503")
	}
	select {
	case f.done <- name:
	default:
	}
	return nil
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) GetReleases(context.Context) error  { return f.run("releases") }
func (f *fakeService) GetFavorites(context.Context) error { return f.run("favorites") }
func (f *fakeService) LoadSettings(context.Context) error { return f.run("settings") }

func waitFor(t *testing.T, done <-chan string, names ...string) {
	t.Helper()

	pending := make(map[string]bool)
	for _, name := range names {
		pending[name] = true
	}

	timeout := time.After(2 * time.Second)
	for len(pending) > 0 {
		select {
		case name := <-done:
			delete(pending, name)
		case <-timeout:
			t.Fatalf("Timed out waiting for %v", pending)
		}
	}
}

func TestSchedulerRunsStartupTasks(t *testing.T) {
	service := newFakeService()
	scheduler := NewScheduler(service, service, Options{WorkerCount: 2})

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, service.done, "settings", "releases", "favorites")
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	service := newFakeService()
	scheduler := NewScheduler(service, service, Options{Interval: 20 * time.Millisecond, WorkerCount: 1})

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, service.done, "settings", "releases", "favorites")
	waitFor(t, service.done, "releases", "favorites")

	if service.count("settings") != 1 {
		t.Errorf("Expected settings to load once, got %d", service.count("settings"))
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	service := newFakeService()
	service.failUntil["releases"] = 2
	scheduler := NewScheduler(service, service, Options{WorkerCount: 1, RetryBase: time.Millisecond})

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, service.done, "releases")

	if got := service.count("releases"); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	service := newFakeService()
	scheduler := NewScheduler(service, service, Options{})
	scheduler.Stop()

	if err := scheduler.EnqueueTask(NewRefreshReleasesTask(service)); err == nil {
		t.Error("Expected error enqueueing on a stopped scheduler")
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 30 * time.Second},
		{40, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := retryDelay(time.Second, tt.attempt); got != tt.expected {
			t.Errorf("retryDelay(%d): expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestTaskRetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeRefreshFavorites, "favorites")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected no retries left")
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}
	if task.GetID() == "" {
		t.Error("Expected task ID")
	}
}
