// Package codec owns the lifecycle of the media transcoding tool the pipeline
// shells out to. The tool is resolved and probed once per process and shared
// by every consumer that is handed the Loader.
package codec

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gotranscribe/internal/deps"
)

// State is the initialization state of a Loader.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotReady is returned by Codec when Load has not completed successfully.
var ErrNotReady = errors.New("codec not ready")

// Codec describes a resolved transcoder binary.
type Codec struct {
	Binary  string
	Path    string
	Version string
}

// Option customizes a Loader.
type Option func(*Loader)

// WithResolver overrides how the binary is located.
func WithResolver(resolve func(string) (string, error)) Option {
	return func(l *Loader) {
		if resolve != nil {
			l.resolve = resolve
		}
	}
}

// WithVersionProbe overrides how the resolved binary's version is read.
func WithVersionProbe(probe func(context.Context, string) (string, error)) Option {
	return func(l *Loader) {
		if probe != nil {
			l.probe = probe
		}
	}
}

// Loader is a state machine: Uninitialized -> Loading -> Ready | Failed.
// Concurrent Load calls share a single attempt. A Failed loader stays failed
// until Reset.
type Loader struct {
	binary  string
	resolve func(string) (string, error)
	probe   func(context.Context, string) (string, error)

	mu    sync.Mutex
	state State
	codec Codec
	err   error
	done  chan struct{}
}

// NewLoader returns an uninitialized loader for binary.
func NewLoader(binary string, opts ...Option) *Loader {
	l := &Loader{
		binary:  binary,
		resolve: deps.Resolve,
		probe:   deps.FFmpegVersion,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load initializes the codec if needed and returns it. Callers arriving while
// another load is in flight wait for it, or for ctx to be done.
func (l *Loader) Load(ctx context.Context) (Codec, error) {
	l.mu.Lock()
	switch l.state {
	case StateReady:
		codec := l.codec
		l.mu.Unlock()
		return codec, nil
	case StateFailed:
		err := l.err
		l.mu.Unlock()
		return Codec{}, err
	case StateLoading:
		done := l.done
		l.mu.Unlock()
		select {
		case <-done:
			return l.result()
		case <-ctx.Done():
			return Codec{}, ctx.Err()
		}
	}
	l.state = StateLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	codec, err := l.load(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = StateFailed
		l.err = err
	} else {
		l.state = StateReady
		l.codec = codec
	}
	l.mu.Unlock()
	close(done)
	return codec, err
}

// Codec returns the loaded codec without triggering a load.
func (l *Loader) Codec() (Codec, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return Codec{}, fmt.Errorf("%w: %s", ErrNotReady, l.state)
	}
	return l.codec, nil
}

// Err returns the failure recorded by the last load, if any.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Reset returns a Ready or Failed loader to Uninitialized. It is a no-op while
// a load is in flight.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateLoading {
		return
	}
	l.state = StateUninitialized
	l.codec = Codec{}
	l.err = nil
}

func (l *Loader) result() (Codec, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateReady {
		return l.codec, nil
	}
	return Codec{}, l.err
}

func (l *Loader) load(ctx context.Context) (Codec, error) {
	path, err := l.resolve(l.binary)
	if err != nil {
		return Codec{}, fmt.Errorf("load codec: %w", err)
	}
	version, err := l.probe(ctx, path)
	if err != nil {
		return Codec{}, fmt.Errorf("load codec: %w", err)
	}
	return Codec{Binary: l.binary, Path: path, Version: version}, nil
}
