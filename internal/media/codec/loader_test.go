package codec

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoaderTransitionsToReady(t *testing.T) {
	var resolves atomic.Int32
	loader := NewLoader("ffmpeg",
		WithResolver(func(name string) (string, error) {
			resolves.Add(1)
			return "/usr/bin/" + name, nil
		}),
		WithVersionProbe(func(context.Context, string) (string, error) {
			return "ffmpeg version 7.1", nil
		}),
	)

	if loader.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", loader.State())
	}
	if _, err := loader.Codec(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before load, got %v", err)
	}

	codec, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if codec.Path != "/usr/bin/ffmpeg" || codec.Version != "ffmpeg version 7.1" {
		t.Fatalf("unexpected codec: %#v", codec)
	}
	if loader.State() != StateReady {
		t.Fatalf("expected ready, got %s", loader.State())
	}
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if resolves.Load() != 1 {
		t.Fatalf("expected a single resolve, got %d", resolves.Load())
	}
}

func TestLoaderFailureIsSticky(t *testing.T) {
	var attempts atomic.Int32
	loader := NewLoader("ffmpeg", WithResolver(func(string) (string, error) {
		attempts.Add(1)
		return "", errors.New("binary \"ffmpeg\" not found")
	}))

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if loader.State() != StateFailed {
		t.Fatalf("expected failed, got %s", loader.State())
	}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected failure to persist")
	}
	if attempts.Load() != 1 {
		t.Fatalf("expected one attempt, got %d", attempts.Load())
	}
	if loader.Err() == nil {
		t.Fatal("expected recorded error")
	}

	loader.Reset()
	if loader.State() != StateUninitialized || loader.Err() != nil {
		t.Fatalf("expected reset loader, got %s / %v", loader.State(), loader.Err())
	}
	_, _ = loader.Load(context.Background())
	if attempts.Load() != 2 {
		t.Fatalf("expected retry after reset, got %d attempts", attempts.Load())
	}
}

func TestLoaderConcurrentCallersShareLoad(t *testing.T) {
	release := make(chan struct{})
	var probes atomic.Int32
	loader := NewLoader("ffmpeg",
		WithResolver(func(name string) (string, error) { return name, nil }),
		WithVersionProbe(func(context.Context, string) (string, error) {
			probes.Add(1)
			<-release
			return "v", nil
		}),
	)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Load(context.Background())
			errs <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for loader.State() != StateLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if probes.Load() != 1 {
		t.Fatalf("expected one probe, got %d", probes.Load())
	}
}

func TestLoaderWaiterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	loader := NewLoader("ffmpeg",
		WithResolver(func(name string) (string, error) { return name, nil }),
		WithVersionProbe(func(context.Context, string) (string, error) {
			<-release
			return "v", nil
		}),
	)
	go func() { _, _ = loader.Load(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for loader.State() != StateLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
