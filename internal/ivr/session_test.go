package ivr

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry()
	s, created := r.GetOrCreate("call-1")
	if !created {
		t.Fatal("first sight not reported as created")
	}
	if s.State != StateMainMenu || s.Draft == nil {
		t.Fatalf("new session = %+v", s)
	}

	again, created := r.GetOrCreate("call-1")
	if created {
		t.Error("second sight reported as created")
	}
	if again != s {
		t.Error("GetOrCreate returned a different session for the same call")
	}
	if r.Len() != 1 {
		t.Errorf("len = %d", r.Len())
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestRegistry_DestroyIdempotent(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("call-1")
	r.Destroy("call-1")
	r.Destroy("call-1")
	r.Destroy("never-existed")
	if r.Len() != 0 {
		t.Errorf("len = %d after destroy", r.Len())
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s, _ := r.GetOrCreate("call-1")
				s.lock()
				s.Retries++
				s.unlock()
			}
		}()
	}
	wg.Wait()

	s, err := r.Get("call-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Retries != 800 {
		t.Errorf("retries = %d, want 800", s.Retries)
	}
}

func TestRegistry_IdleSince(t *testing.T) {
	r := NewRegistry()
	stale, _ := r.GetOrCreate("stale")
	r.GetOrCreate("fresh")

	stale.lock()
	stale.LastEvent = time.Now().Add(-time.Hour)
	stale.unlock()

	ids := r.IdleSince(time.Now().Add(-10 * time.Minute))
	if len(ids) != 1 || ids[0] != "stale" {
		t.Fatalf("idle = %v, want [stale]", ids)
	}
}
