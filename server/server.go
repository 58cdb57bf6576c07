// Package server exposes seam carving over HTTP.
//
// Besides one shot carving, the service keeps interactive resize sessions:
// a client uploads an image once, then moves the target size around and
// fetches the latest result. Requests arriving while a resize is running
// cancel it, so only the latest target is ever computed to completion.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/seamcarve/seamcarve"
	"github.com/seamcarve/seamcarve/utils"
)

var (
	// ErrSessionExpired is returned for sessions evicted after SessionTTL of inactivity.
	ErrSessionExpired = errors.New("session expired")
	// ErrImageTooLarge is returned for uploads whose header announces more than MaxPixels pixels.
	ErrImageTooLarge = errors.New("image too large")
)

// Limits applied when the Config leaves them unset.
const (
	DefaultSessionTTL = 30 * time.Minute
	DefaultMaxPixels  = 40_000_000
)

// Config tunes the service.
type Config struct {
	// MaxUploadBytes caps the size of uploaded images.
	MaxUploadBytes int64
	// MaxPixels caps the decoded size of uploaded images, checked on the
	// image header before any pixel is decoded.
	MaxPixels int64
	// SessionTTL is how long a session may stay idle before it is evicted.
	SessionTTL time.Duration
	// Debounce delays the resize of a session after its last target change.
	Debounce time.Duration
	// Quality is the JPEG quality of the encoded results.
	Quality int
	// Logger receives the access log. Defaults to log.Default().
	Logger *log.Logger
}

// Server holds the carving options and the live sessions.
type Server struct {
	opts   seamcarve.Options
	cfg    Config
	logger *log.Logger

	now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	// expired remembers evicted ids for one more TTL so they answer 410.
	expired map[uuid.UUID]time.Time
}

type sessionEntry struct {
	sess      *seamcarve.Session
	expiresAt time.Time
}

// New creates a server carving with opts.
func New(opts seamcarve.Options, cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Server{
		opts:     opts,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*sessionEntry),
		expired:  make(map[uuid.UUID]time.Time),
	}
}

// Handler returns the HTTP routes of the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Post("/carve", s.handleCarve)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/target", s.handleTarget)
			r.Get("/image", s.handleImage)
			r.Delete("/", s.handleDeleteSession)
		})
	})
	return r
}

// ListenAndServe serves the routes on addr until ctx is cancelled,
// then shuts the listener down and closes every session.
// Idle sessions are evicted in the background while serving.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.janitor(janitorCtx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close releases every session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*sessionEntry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.sess.Close()
	}
}

// janitor sweeps the idle sessions every half TTL until ctx is done.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(max(s.cfg.SessionTTL/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep closes the sessions idle for longer than the TTL and forgets the
// ids evicted more than one TTL ago. It returns the number of evictions.
func (s *Server) sweep() int {
	now := s.now()

	var stale []*seamcarve.Session
	s.mu.Lock()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			stale = append(stale, e.sess)
			delete(s.sessions, id)
			s.expired[id] = now
		}
	}
	for id, at := range s.expired {
		if now.Sub(at) > s.cfg.SessionTTL {
			delete(s.expired, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		s.logger.Info("idle sessions evicted", "count", len(stale))
	}
	return len(stale)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleCarve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seams, err := intParam(q.Get("seams"), 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	axis, err := seamcarve.ParseAxis(withDefault(q.Get("direction"), "vertical"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	strategy, err := seamcarve.ParseStrategy(withDefault(q.Get("strategy"), "dp"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	format, err := formatParam(q.Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	src, err := s.decodeBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.opts
	opts.Strategy = strategy
	out, stats, err := seamcarve.CarveWithStats(r.Context(), src, seams, axis, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Seam-Cost", strconv.FormatFloat(stats.Cost, 'f', -1, 64))
	w.Header().Set("X-Seam-Diagnostics", strconv.Itoa(len(stats.Diagnostics)))
	if err := seamcarve.Encode(w, out, format, s.cfg.Quality); err != nil {
		s.logger.Error("encode failed", "err", err)
	}
}

type sessionResponse struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	src, err := s.decodeBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := seamcarve.NewSession(src, s.opts, s.cfg.Debounce)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{sess: sess, expiresAt: s.now().Add(s.cfg.SessionTTL)}
	s.mu.Unlock()

	s.logger.Info("session created", "id", id, "size", utils.FormatSize(src.Width, src.Height))
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id.String(), Width: src.Width, Height: src.Height})
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	orig := sess.Original()

	q := r.URL.Query()
	width, err := intParam(q.Get("width"), orig.Width)
	if err != nil {
		s.writeError(w, err)
		return
	}
	height, err := intParam(q.Get("height"), orig.Height)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess.Request(width, height)
	writeJSON(w, http.StatusAccepted, map[string]int{"width": width, "height": height})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	format, err := formatParam(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := sess.Wait(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	cur, target := sess.Current()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Image-Size", target.String())
	if err := seamcarve.Encode(w, cur, format, s.cfg.Quality); err != nil {
		s.logger.Error("encode failed", "err", err)
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, _ := uuid.Parse(chi.URLParam(r, "id"))

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	sess.Close()
	s.logger.Info("session closed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// session looks the {id} route parameter up and extends its lifetime.
// Unknown ids answer 404, ids evicted for inactivity answer 410.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*seamcarve.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return nil, false
	}

	now := s.now()
	s.mu.Lock()
	e, ok := s.sessions[id]
	var stale *seamcarve.Session
	if ok && now.After(e.expiresAt) {
		stale, ok = e.sess, false
		delete(s.sessions, id)
		s.expired[id] = now
	}
	if ok {
		e.expiresAt = now.Add(s.cfg.SessionTTL)
	}
	_, gone := s.expired[id]
	s.mu.Unlock()

	if stale != nil {
		stale.Close()
	}
	switch {
	case ok:
		return e.sess, true
	case gone:
		s.writeError(w, ErrSessionExpired)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	return nil, false
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (*seamcarve.Raster, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	// Unknown headers are left for Decode to reject.
	if hdr, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if int64(hdr.Width)*int64(hdr.Height) > s.cfg.MaxPixels {
			return nil, fmt.Errorf("%w: %s exceeds %d pixels",
				ErrImageTooLarge, utils.FormatSize(hdr.Width, hdr.Height), s.cfg.MaxPixels)
		}
	}
	return seamcarve.Decode(bytes.NewReader(data))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, ErrImageTooLarge):
		status = http.StatusRequestEntityTooLarge
	case seamcarve.IsKind(err, seamcarve.DecodeFailure):
		status = http.StatusUnsupportedMediaType
	case seamcarve.IsKind(err, seamcarve.InvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, seamcarve.ErrSessionClosed), errors.Is(err, ErrSessionExpired):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &seamcarve.Error{Kind: seamcarve.InvalidParameter, Message: fmt.Sprintf("%q is not an integer", v)}
	}
	return n, nil
}

func formatParam(v string) (seamcarve.Format, error) {
	if v == "" {
		return seamcarve.PNG, nil
	}
	return seamcarve.FormatFromPath("." + v)
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
