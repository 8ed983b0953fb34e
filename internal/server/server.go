package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"nightlies/internal/metrics"
	"nightlies/internal/model"
	"nightlies/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Response bodies
const (
	msgNotFound        = "Not found\n"
	msgCurrentNotFound = "Current value not found, please report this\n"
	msgAssetNotFound   = "Asset not found\n"
	msgInternalError   = "Internal error\n"
)

type Server struct {
	store   store.Store
	logger  *zap.Logger
	router  *mux.Router
	handler http.Handler
	server  *http.Server
}

// NewServer builds the route table once; it is not modified afterwards.
func NewServer(st store.Store, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	s.handler = withRequestID(logger, s.router)
	s.server = newHTTPServer(s.handler)
	return s
}

func (s *Server) routes() {
	s.router.Use(s.observe)

	s.router.HandleFunc("/current-nightly", s.handleCurrent).Methods(http.MethodGet)
	s.router.HandleFunc("/current-nightly", s.handleCurrent).Methods(http.MethodHead)
	s.router.HandleFunc("/nightly/{id}", s.handleAsset).Methods(http.MethodGet)

	// Catch-all, also for a known path with another method. Assets have no
	// HEAD: the store cannot answer existence or size without reading the
	// whole value.
	s.router.NotFoundHandler = s.observe(http.HandlerFunc(handleNotFound))
	s.router.MethodNotAllowedHandler = s.router.NotFoundHandler
}

// Handler exposes the full request pipeline, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Only the request headers get a deadline. Archives can take longer than any
// fixed write timeout to reach a slow client.
func newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Web server listening", zap.String("addr", ln.Addr().String()))
	return s.server.Serve(ln)
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) lookup(ctx context.Context, key string, kind model.Kind) (*store.Value, error) {
	v, err := s.store.Get(ctx, key, kind)
	switch {
	case err == nil:
		metrics.StoreLookupsTotal.WithLabelValues(kind.String(), metrics.ResultHit).Inc()
	case errors.Is(err, store.ErrNotFound):
		metrics.StoreLookupsTotal.WithLabelValues(kind.String(), metrics.ResultMiss).Inc()
	default:
		metrics.StoreLookupsTotal.WithLabelValues(kind.String(), metrics.ResultError).Inc()
	}
	return v, err
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)

	value, err := s.lookup(r.Context(), model.CurrentKey, model.KindText)
	if errors.Is(err, store.ErrNotFound) {
		metrics.CurrentMissingTotal.Inc()
		logger.Error("Saw a request for CURRENT, does not exist in KV store, fatal expectation violation")
		writeText(w, http.StatusNotFound, msgCurrentNotFound)
		return
	}
	if err != nil {
		logger.Error("Failed to read CURRENT", zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, value.Text)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)
	assetID := mux.Vars(r)["id"]

	value, err := s.lookup(r.Context(), assetID, model.KindStream)
	if errors.Is(err, store.ErrNotFound) {
		writeText(w, http.StatusNotFound, msgAssetNotFound)
		return
	}
	if err != nil {
		logger.Error("Failed to read asset", zap.String("asset", assetID), zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	defer value.Body.Close()

	if ctype, ok := model.ContentTypeFor(assetID); ok {
		w.Header().Set("Content-Type", ctype)
	} else {
		// nil keeps net/http from sniffing one
		w.Header()["Content-Type"] = nil
	}

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, value.Body); err != nil {
		logger.Warn("Asset copy interrupted", zap.String("asset", assetID), zap.Error(err))
	}
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusNotFound, msgNotFound)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
