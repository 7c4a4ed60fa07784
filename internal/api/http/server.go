package httpapi

import (
	stdcontext "context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paintersrp/sockscope/internal/api"
	"github.com/Paintersrp/sockscope/internal/bridge"
	sslog "github.com/Paintersrp/sockscope/internal/log"
	"github.com/Paintersrp/sockscope/internal/metrics"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

const (
	defaultAddr            = "127.0.0.1:7664"
	defaultReadHeader      = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Config controls construction of the API server.
type Config struct {
	Addr              string
	Controller        api.Controller
	Listener          net.Listener
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// BaseContext is the parent of every request context; handlers log
	// through the logger it carries.
	BaseContext stdcontext.Context
}

// Server wraps an http.Server exposing the scan and kill operations.
type Server struct {
	ctrl            api.Controller
	srv             *http.Server
	listener        net.Listener
	shutdownTimeout time.Duration
}

// NewServer constructs a Server with sane defaults.
func NewServer(cfg Config) (*Server, error) {
	if isNil(cfg.Controller) {
		return nil, fmt.Errorf("controller is required (got %T)", cfg.Controller)
	}
	addr := normalizeAddr(cfg.Addr)
	mux := http.NewServeMux()
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	if srv.ReadHeaderTimeout == 0 {
		srv.ReadHeaderTimeout = defaultReadHeader
	}
	server := &Server{
		ctrl:            cfg.Controller,
		srv:             srv,
		listener:        cfg.Listener,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if base := cfg.BaseContext; base != nil {
		srv.BaseContext = func(net.Listener) stdcontext.Context { return base }
	}
	if server.shutdownTimeout == 0 {
		server.shutdownTimeout = defaultShutdownTimeout
	}
	server.registerRoutes(mux)
	return server, nil
}

func isNil(ctrl api.Controller) bool {
	if ctrl == nil {
		return true
	}
	v := reflect.ValueOf(ctrl)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// Run starts serving until the provided context is cancelled.
func (s *Server) Run(ctx stdcontext.Context) error {
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	errCh := make(chan error, 1)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), s.shutdownTimeout)
			defer cancel()
			_ = s.srv.Shutdown(shutdownCtx)
		case <-stop:
		}
	}()

	go func() {
		var err error
		if s.listener != nil {
			err = s.srv.Serve(s.listener)
		} else {
			err = s.srv.ListenAndServe()
		}
		errCh <- err
	}()

	err := <-errCh
	close(stop)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/scan", s.handleScan)
	mux.HandleFunc("/api/v1/kill/", s.handleKill)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}
	result, err := s.ctrl.Scan(r.Context())
	if err != nil {
		s.log(r).Warn("scan failed", "kind", bridge.Kind(err), "remote", r.RemoteAddr)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scan": result})
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}
	raw := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/kill/"))
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		s.writeErrorWithDetails(w, fmt.Errorf("%w: %q", api.ErrInvalidPID, raw), map[string]any{"pid": raw})
		return
	}
	result, err := s.ctrl.Kill(r.Context(), pid)
	if err != nil {
		s.log(r).Warn("kill failed", "pid", pid, "kind", bridge.Kind(err), "remote", r.RemoteAddr)
		s.writeErrorWithDetails(w, err, map[string]any{"pid": pid})
		return
	}
	s.log(r).Info("signal sent", "pid", pid, "remote", r.RemoteAddr)
	s.writeJSON(w, http.StatusOK, map[string]any{"kill": result})
}

func (s *Server) log(r *http.Request) *slog.Logger {
	return sslog.FromContext(r.Context())
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, method string) {
	w.Header().Set("Allow", method)
	s.writeJSON(w, http.StatusMethodNotAllowed, errorBody{
		Code:    "method_not_allowed",
		Message: fmt.Sprintf("method %s not allowed", method),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeErrorWithDetails(w, err, nil)
}

func (s *Server) writeErrorWithDetails(w http.ResponseWriter, err error, extra map[string]any) {
	status, code := classifyError(err)
	details := map[string]any{
		"timestamp": time.Now().UTC(),
	}
	if kind := bridge.Kind(err); kind != bridge.KindUnknown {
		details["kind"] = kind
	}
	var execErr *bridge.ExecutionError
	if errors.As(err, &execErr) {
		if execErr.HasExitCode() {
			details["exit_code"] = execErr.ExitCode
		} else {
			details["exit_code"] = nil
		}
		if execErr.Signal != nil {
			details["signal"] = execErr.Signal.String()
		}
		details["stdout"] = execErr.Stdout
		details["stderr"] = execErr.Stderr
	}
	for k, v := range extra {
		details[k] = v
	}
	body := errorBody{
		Code:    code,
		Message: bridge.Message(err),
		Details: details,
	}
	s.writeJSON(w, status, body)
}

func classifyError(err error) (int, string) {
	var sigErr *process.SignalError
	switch {
	case errors.Is(err, stdcontext.Canceled):
		return 499, "context_canceled"
	case errors.Is(err, stdcontext.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case errors.Is(err, api.ErrInvalidPID):
		return http.StatusBadRequest, "invalid_pid"
	case errors.As(err, &sigErr):
		switch {
		case errors.Is(sigErr.Err, syscall.ESRCH):
			return http.StatusNotFound, "no_such_process"
		case errors.Is(sigErr.Err, syscall.EPERM):
			return http.StatusForbidden, "permission_denied"
		case errors.Is(sigErr.Err, syscall.EINVAL):
			return http.StatusBadRequest, "invalid_pid"
		default:
			return http.StatusConflict, "signal_failed"
		}
	}
	switch bridge.Kind(err) {
	case bridge.KindResolution:
		return http.StatusNotFound, "resolution_failed"
	case bridge.KindSpawn:
		return http.StatusInternalServerError, "spawn_failed"
	case bridge.KindExecution:
		return http.StatusBadGateway, "execution_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func normalizeAddr(addr string) string {
	if strings.TrimSpace(addr) == "" {
		return defaultAddr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// If parsing failed, trust caller.
		return addr
	}
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
