package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/models"
)

func TestWorkerBoundsConcurrency(t *testing.T) {
	w := NewWorker(2, 4, nil)
	w.Start(context.Background())
	defer w.Stop()

	var active, peak, done int32
	job := func(context.Context) (*models.ScreeningResult, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		atomic.AddInt32(&done, 1)
		return models.NewScreeningResult("r"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := w.Submit(context.Background(), job); err != nil {
				t.Errorf("Submit: %v", err)
			}
		}()
	}
	wg.Wait()

	if done != 6 {
		t.Fatalf("expected 6 completed jobs, got %d", done)
	}
	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent jobs, saw %d", peak)
	}
}

func TestWorkerReturnsJobOutcome(t *testing.T) {
	w := NewWorker(1, 0, nil)
	w.Start(context.Background())
	defer w.Stop()

	want := models.NewScreeningResult("data-lead")
	got, err := w.Submit(context.Background(), func(context.Context) (*models.ScreeningResult, error) {
		return want, nil
	})
	if err != nil || got != want {
		t.Fatalf("expected job result, got %v %v", got, err)
	}

	_, err = w.Submit(context.Background(), func(context.Context) (*models.ScreeningResult, error) {
		return want, ErrAnalysis
	})
	if !errors.Is(err, ErrAnalysis) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestWorkerSubmitCanceledWhileQueued(t *testing.T) {
	w := NewWorker(1, 1, nil)
	w.Start(context.Background())
	defer w.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = w.Submit(context.Background(), func(context.Context) (*models.ScreeningResult, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	var ran int32
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := w.Submit(ctx, func(context.Context) (*models.ScreeningResult, error) {
		atomic.StoreInt32(&ran, 1)
		return nil, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(release)
	// the abandoned job is drained without running
	_, err = w.Submit(context.Background(), func(context.Context) (*models.ScreeningResult, error) { return nil, nil })
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("abandoned job must not run")
	}
}

func TestWorkerSubmitAfterStop(t *testing.T) {
	w := NewWorker(1, 0, nil)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	_, err := w.Submit(context.Background(), func(context.Context) (*models.ScreeningResult, error) {
		t.Error("job must not run after stop")
		return nil, nil
	})
	if !errors.Is(err, ErrWorkerStopped) {
		t.Fatalf("expected ErrWorkerStopped, got %v", err)
	}
}
