package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/plop/internal/demo"
	"github.com/vango-dev/plop/internal/errors"
	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/loop"
	httpmw "github.com/vango-dev/plop/pkg/middleware"
	"github.com/vango-dev/plop/pkg/protocol"
	"github.com/vango-dev/plop/pkg/render"
	"github.com/vango-dev/plop/pkg/session"
	"github.com/vango-dev/plop/pkg/vdom"
)

// Config configures a Server.
type Config struct {
	// Demo describes the mounted document.
	Demo demo.Config

	// FrameInterval is the paint frame interval of the loop.
	FrameInterval time.Duration

	// RemoteEvents makes the session decode serialisable payloads.
	RemoteEvents bool

	// Registry receives the runtime collectors and is served on /metrics.
	// Nil disables both.
	Registry *prometheus.Registry

	// Namespace prefixes collector names.
	Namespace string

	// Tracer is used for request and render spans. Nil uses the global
	// provider.
	Tracer trace.Tracer

	Logger *slog.Logger

	// Store keeps the list order across restarts. Nil disables
	// persistence.
	Store session.Store

	// SessionName keys the snapshot in Store (default: "default").
	SessionName string

	// StateTTL is how long a saved order is kept (default: 24h).
	StateTTL time.Duration

	// MaxPending caps the bytes of patch frames held for GET /patches
	// (default: protocol.MaxPayloadSize). The oldest frames go first.
	MaxPending int
}

// DefaultSessionName keys the snapshot when Config.SessionName is empty.
const DefaultSessionName = "default"

// DefaultStateTTL is used when Config.StateTTL is zero.
const DefaultStateTTL = 24 * time.Hour

// DefaultMaxPending is used when Config.MaxPending is zero.
const DefaultMaxPending = protocol.MaxPayloadSize

// Server serves a demo session running on a real-time loop.
//
// Routes:
//
//	GET  /               full page, keyed for virtualising
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus exposition
//	GET  /snapshot       current HTML
//	GET  /model          item order as JSON
//	POST /steps/{step}   fire a step such as dragover:number-2
//	POST /events         apply a binary event frame
//	GET  /patches        drain rendered patches as binary frames
type Server struct {
	config  Config
	logger  *slog.Logger
	loop    *loop.Loop
	session *demo.Session
	router  chi.Router

	// Loop goroutine only.
	pending     [][]byte
	pendingSize int
	renders     int
	saved       []string
}

// New creates a Server. Call Start before serving requests.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.SessionName == "" {
		config.SessionName = DefaultSessionName
	}
	if config.StateTTL <= 0 {
		config.StateTTL = DefaultStateTTL
	}
	if config.MaxPending <= 0 {
		config.MaxPending = DefaultMaxPending
	}
	s := &Server{
		config: config,
		logger: config.Logger,
		loop: loop.New(
			loop.WithFrameInterval(config.FrameInterval),
			loop.WithLogger(config.Logger),
		),
	}
	s.router = s.routes()
	return s
}

// Start runs the loop until ctx is done and mounts the session on it,
// restoring the saved order when Store holds one.
func (s *Server) Start(ctx context.Context) error {
	demoCfg := s.config.Demo
	order, err := s.restore(ctx)
	if err != nil {
		return err
	}
	if order != nil {
		demoCfg.Order = order
	}

	go func() {
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("loop stopped", "error", err)
		}
	}()

	opts := []app.Option{
		app.WithLogger(s.logger),
		app.WithRemoteEvents(s.config.RemoteEvents),
		app.WithRenderObserver(s.record),
	}
	if s.config.Registry != nil {
		metricOpts := []app.MetricsOption{app.WithRegistry(s.config.Registry)}
		if s.config.Namespace != "" {
			metricOpts = append(metricOpts, app.WithNamespace(s.config.Namespace))
		}
		opts = append(opts, app.WithMetrics(app.NewMetrics(metricOpts...)))
	}
	if s.config.Tracer != nil {
		opts = append(opts, app.WithTracer(s.config.Tracer))
	}

	return s.do(ctx, func() error {
		sess, err := demo.Start(s.loop, demoCfg, opts...)
		if err != nil {
			return err
		}
		s.session = sess
		s.saved = sess.Model().IDs()
		s.logger.Info("demo mounted",
			"runtime_id", sess.ID(),
			"items", len(s.saved),
			"restored", demoCfg.Order != nil,
		)
		return nil
	})
}

// Close stops the loop.
func (s *Server) Close() {
	s.loop.Close()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(httpmw.OpenTelemetry(s.tracerOptions()...))
	if s.config.Registry != nil {
		r.Use(httpmw.Prometheus(s.metricsOptions()...))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if s.config.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/", s.handlePage)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/model", s.handleModel)
	r.Post("/steps/{step}", s.handleStep)
	r.Post("/events", s.handleEvent)
	r.Get("/patches", s.handlePatches)
	return r
}

func (s *Server) tracerOptions() []httpmw.OTelOption {
	opts := []httpmw.OTelOption{
		httpmw.WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	}
	if s.config.Tracer != nil {
		opts = append(opts, httpmw.WithTracer(s.config.Tracer))
	}
	return opts
}

func (s *Server) metricsOptions() []httpmw.MetricsOption {
	opts := []httpmw.MetricsOption{httpmw.WithRegistry(s.config.Registry)}
	if s.config.Namespace != "" {
		opts = append(opts, httpmw.WithNamespace(s.config.Namespace))
	}
	return opts
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// do runs fn on the loop and waits for it.
func (s *Server) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	if err := s.loop.Post(func() { errc <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) record(p *vdom.Patch) {
	s.renders++
	var buf bytes.Buffer
	if err := protocol.WritePatch(&buf, p, 0); err != nil {
		s.logger.Warn("patch not recorded", "error", err)
	} else {
		s.queue(buf.Bytes())
	}
	s.persist()
}

// queue holds a patch frame for the next drain. The newest frame is always
// kept, even when it alone exceeds MaxPending.
func (s *Server) queue(frame []byte) {
	s.pending = append(s.pending, frame)
	s.pendingSize += len(frame)

	var dropped, freed int
	for len(s.pending) > 1 && s.pendingSize > s.config.MaxPending {
		n := len(s.pending[0])
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.pendingSize -= n
		freed += n
		dropped++
	}
	if dropped > 0 {
		s.logger.Warn("dropped undrained patches",
			"frames", dropped,
			"bytes", freed,
			"max_pending", s.config.MaxPending,
		)
	}
}

// restore loads the saved order. A missing or unreadable snapshot starts a
// fresh list; only store failures are returned.
func (s *Server) restore(ctx context.Context) ([]string, error) {
	if s.config.Store == nil {
		return nil, nil
	}
	data, err := s.config.Store.Load(ctx, s.config.SessionName)
	if err != nil || data == nil {
		return nil, err
	}
	snap, err := session.Deserialize(data)
	if err != nil {
		s.logger.Warn("discarding saved order", "session", s.config.SessionName, "error", err)
		return nil, nil
	}
	return snap.Order, nil
}

// persist saves the order once a drag has settled and the order changed.
func (s *Server) persist() {
	if s.config.Store == nil || s.session == nil {
		return
	}
	m := s.session.Model()
	if m.Drag != nil {
		return
	}
	ids := m.IDs()
	if slices.Equal(ids, s.saved) {
		return
	}
	now := time.Now()
	data, err := session.Serialize(&session.Snapshot{
		Name:    s.config.SessionName,
		Order:   ids,
		SavedAt: now.UTC(),
	})
	if err == nil {
		err = s.config.Store.Save(context.Background(), s.config.SessionName, data, now.Add(s.config.StateTTL))
	}
	if err != nil {
		s.logger.Warn("order not saved", "session", s.config.SessionName, "error", err)
		return
	}
	s.saved = ids
	s.logger.Debug("order saved", "session", s.config.SessionName, "ids", ids)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var view *vdom.VNode
	err := s.do(r.Context(), func() error {
		view = s.session.View()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := render.PageData{
		Title:   "Lift and plop",
		Body:    view,
		MountID: demo.MountID,
		Meta:    []render.MetaTag{{Name: "description", Content: "A reorderable list rendered by plop"}},
	}
	if err := render.NewStreamingRenderer(w, render.RendererConfig{}).RenderPage(page); err != nil {
		s.logger.Warn("page not rendered", "error", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var html string
	err := s.do(r.Context(), func() error {
		html = s.session.HTML()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	var m demo.Model
	var renders int
	err := s.do(r.Context(), func() error {
		m = s.session.Model()
		renders = s.renders
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelResponse{
		IDs:      m.IDs(),
		Dragging: m.Drag != nil,
		Renders:  renders,
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	step, err := demo.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.do(r.Context(), func() error { return s.session.Apply(step) }); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	frame, err := protocol.ReadFrame(http.MaxBytesReader(w, r.Body, protocol.MaxPayloadSize+protocol.FrameHeaderSize))
	if err != nil {
		writeError(w, errors.New("E130").Wrap(err))
		return
	}
	if frame.Type != protocol.FrameEvent {
		writeError(w, errors.New("E130").WithDetailf("Expected an event frame, got %s.", frame.Type))
		return
	}
	ev, err := protocol.UnmarshalEvent(frame.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.do(r.Context(), func() error {
		s.session.HandleEvent(ev.Path, ev.Name, ev.Payload, ev.Immediate)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePatches(w http.ResponseWriter, r *http.Request) {
	var data []byte
	err := s.do(r.Context(), func() error {
		data = bytes.Join(s.pending, nil)
		s.pending, s.pendingSize = nil, 0
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
