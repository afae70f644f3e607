package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"sheetdash/internal/dataset"
	"sheetdash/internal/snapshot"
	"sheetdash/internal/store"
)

const (
	allowRemoteEnvKey       = "SHEETDASH_ALLOW_REMOTE"
	readHeaderTimeout       = 5 * time.Second
	readTimeout             = 30 * time.Second
	writeTimeout            = 60 * time.Second
	idleTimeout             = 60 * time.Second
	shutdownTimeout         = 10 * time.Second
	refreshConcurrencyLimit = 1
	dataConcurrencyLimit    = 8
)

// InfoSource reports catalog statistics for /v1/info.
type InfoSource interface {
	StoreInfo(ctx context.Context) (store.Info, error)
}

// Options wires the server's collaborators. Archive and Catalog are optional.
type Options struct {
	Addr            string
	Cache           *dataset.Cache
	Archive         *snapshot.Archive
	Catalog         InfoSource
	DefaultPageSize int
	MaxPageSize     int
	AllowedOrigins  []string
	Version         string
	Logger          *slog.Logger
	Now             func() time.Time
}

// Server wraps HTTP handlers for the sheetdash API.
type Server struct {
	addr           string
	service        *SheetService
	archive        *snapshot.Archive
	catalog        InfoSource
	version        string
	allowedOrigins map[string]struct{}
	logger         *slog.Logger
	now            func() time.Time
	refreshLimiter chan struct{}
	dataLimiter    chan struct{}
}

// New creates a new server instance.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins[origin] = struct{}{}
		}
	}

	return &Server{
		addr:           opts.Addr,
		service:        NewSheetService(opts.Cache, opts.DefaultPageSize, opts.MaxPageSize, now),
		archive:        opts.Archive,
		catalog:        opts.Catalog,
		version:        opts.Version,
		allowedOrigins: origins,
		logger:         logger,
		now:            now,
		refreshLimiter: make(chan struct{}, refreshConcurrencyLimit),
		dataLimiter:    make(chan struct{}, dataConcurrencyLimit),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withCORS(s.routes()))
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled or
// the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log().Info("stopping server", "addr", s.addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    codeResourceExhausted,
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
