package seamcarve

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrSessionClosed is returned by the operations of a closed Session.
var ErrSessionClosed = errors.New("seamcarve: session closed")

// Result is the outcome of the latest settled resize request of a Session.
type Result struct {
	Target Target
	Raster *Raster
	Err    error
}

// Session drives interactive resizing of one image. Every Request cancels
// the computation in flight and starts a new one after the debounce delay,
// so only the latest requested target ever becomes current.
type Session struct {
	original *Raster
	opts     Options
	debounce time.Duration

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	update chan Result

	mu      sync.Mutex
	gen     uint64 // generation of the latest request
	settled uint64 // generation of the latest settled request
	cancel  context.CancelFunc
	idle    chan struct{} // closed once the latest request settles; nil when idle
	current *Raster
	target  Target
	err     error
	closed  bool
}

// NewSession starts a session over a copy of original. The current result
// is the original itself until the first request settles.
func NewSession(original *Raster, opts Options, debounce time.Duration) (*Session, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	ctx, stop := context.WithCancel(context.Background())
	orig := original.Clone()
	return &Session{
		original: orig,
		opts:     opts,
		debounce: debounce,
		ctx:      ctx,
		stop:     stop,
		update:   make(chan Result, 1),
		current:  orig,
		target:   Target{Width: orig.Width, Height: orig.Height},
	}, nil
}

// Original returns the raster the session resizes. It must not be modified.
func (s *Session) Original() *Raster {
	return s.original
}

// Request asks for the original resized to width x height,
// superseding any earlier request.
func (s *Session) Request(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	if s.idle == nil {
		s.idle = make(chan struct{})
	}

	s.wg.Add(1)
	go s.run(ctx, s.gen, Target{Width: width, Height: height})
}

func (s *Session) run(ctx context.Context, gen uint64, t Target) {
	defer s.wg.Done()

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.settle(gen, t, nil, ctx.Err())
			return
		}
	}

	out, err := Resize(ctx, s.original, t.Width, t.Height, s.opts)
	s.settle(gen, t, out, err)
}

// settle publishes the result of generation gen unless a newer request superseded it.
func (s *Session) settle(gen uint64, t Target, out *Raster, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	if err == nil {
		s.current, s.target = out, t.clamp(s.original)
	}
	s.err = err
	s.settled = gen
	if s.idle != nil {
		close(s.idle)
		s.idle = nil
	}

	res := Result{Target: s.target, Raster: s.current, Err: err}
	select {
	case s.update <- res:
	default:
		// Drop the stale result nobody consumed yet.
		select {
		case <-s.update:
		default:
		}
		s.update <- res
	}
}

// Updates delivers the settled results. Only the latest unread result is kept.
// The channel is closed by Close.
func (s *Session) Updates() <-chan Result {
	return s.update
}

// Current returns the latest settled raster and its size. The raster must not be modified.
func (s *Session) Current() (*Raster, Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.target
}

// Pending reports whether a request is still being computed.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != s.settled
}

// Wait blocks until the latest request settles and returns its error.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle, err := s.idle, s.err
		s.mu.Unlock()

		if idle == nil {
			return err
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Save encodes the current result.
func (s *Session) Save(w io.Writer, format Format) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	cur, _ := s.Current()
	return Encode(w, cur, format, 0)
}

// Close cancels the computation in flight and releases the session.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()

	s.mu.Lock()
	if s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
	s.mu.Unlock()
	close(s.update)
	return nil
}
