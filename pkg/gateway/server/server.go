// Package server assembles the HTTP surface: routes, middleware chain, and
// the listener lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhozzi-app/dhozzi/pkg/auth"
	"github.com/dhozzi-app/dhozzi/pkg/billing"
	"github.com/dhozzi-app/dhozzi/pkg/core/chat"
	"github.com/dhozzi-app/dhozzi/pkg/core/live"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/config"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/handlers"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/mw"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/ratelimit"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

const liveRoute = "/v1/live"

// Generator is the full generation surface the routes need; *gen.Client
// satisfies it.
type Generator interface {
	chat.Generator
	handlers.SpeechSynthesizer
	handlers.ImageEditor
}

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	auth    *auth.Service
	limiter *ratelimit.Limiter
}

// New wires every route over the given store and upstream clients.
func New(cfg config.Config, logger *slog.Logger, st store.Store, authSvc *auth.Service, gen Generator, dialer live.Dialer) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		auth:   authSvc,
		limiter: ratelimit.New(ratelimit.Config{
			RPS:             cfg.LimitRPS,
			Burst:           cfg.LimitBurst,
			MaxLiveSessions: cfg.LimitMaxLiveSessions,
		}),
	}

	account := handlers.AccountHandler{Auth: authSvc, Users: st.Users(), Logger: logger}
	history := handlers.HistoryHandler{Histories: st.Histories()}
	messages := handlers.MessagesHandler{Chat: chat.New(gen, st.Histories(), logger)}
	billingHandler := handlers.BillingHandler{Billing: billing.NewService(st.Users(), billing.Config{
		StripeKey:  cfg.StripeKey,
		SuccessURL: cfg.StripeSuccessURL,
		CancelURL:  cfg.StripeCancelURL,
	}, logger, nil)}

	s.mux.Handle("GET /healthz", handlers.HealthHandler{})
	s.mux.HandleFunc("POST /v1/auth/signup", account.SignUp)
	s.mux.HandleFunc("POST /v1/auth/signin", account.SignIn)
	s.mux.HandleFunc("POST /v1/auth/signout", account.SignOut)
	s.mux.HandleFunc("GET /v1/me", account.Me)
	s.mux.Handle("GET /v1/models", handlers.ModelsHandler{Users: st.Users()})
	s.mux.HandleFunc("GET /v1/history", history.Get)
	s.mux.HandleFunc("PUT /v1/history", history.Put)
	s.mux.HandleFunc("POST /v1/chats/{chatID}/messages", messages.Send)
	s.mux.HandleFunc("POST /v1/chats/{chatID}/messages/{messageID}/retry", messages.Retry)
	s.mux.Handle("POST /v1/speech", handlers.SpeechHandler{Gen: gen})
	s.mux.Handle("POST /v1/images/edit", handlers.ImageEditHandler{Gen: gen})
	s.mux.HandleFunc("POST /v1/billing/plan", billingHandler.ActivatePlan)
	s.mux.HandleFunc("POST /v1/billing/checkout", billingHandler.Checkout)
	s.mux.Handle("GET "+liveRoute, handlers.LiveHandler{
		Config:  cfg,
		Users:   st.Users(),
		Dialer:  dialer,
		Limiter: s.limiter,
		Logger:  logger,
	})
	s.mux.Handle("/", handlers.NotFoundHandler{})

	return s
}

// Handler returns the full middleware chain. Auth runs before the rate
// limiter so throttling is per user rather than per connection.
func (s *Server) Handler() http.Handler {
	skipAuth := map[string]struct{}{
		"/healthz":        {},
		"/v1/auth/signup": {},
		"/v1/auth/signin": {},
	}

	var h http.Handler = s.mux
	h = s.handlerTimeout(h)
	h = s.bodyLimit(h)
	h = mw.RateLimit(s.limiter, h)
	h = mw.Auth(s.auth, skipAuth, h)
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// handlerTimeout bounds each REST request, covering slow upstream
// generation calls. The live websocket is exempt; a call runs until hangup
// or quota exhaustion.
func (s *Server) handlerTimeout(next http.Handler) http.Handler {
	if s.cfg.HandlerTimeout <= 0 {
		return next
	}
	timed := http.TimeoutHandler(next, s.cfg.HandlerTimeout,
		`{"error":{"code":"timeout","message":"request timed out"}}`)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == liveRoute {
			next.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})
}

// bodyLimit caps REST request bodies. The live websocket is exempt; it
// enforces its own per-frame limit.
func (s *Server) bodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != liveRoute && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is canceled, then drains within the shutdown grace.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	grace := s.cfg.ShutdownGrace
	if grace <= 0 {
		grace = 20 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("gateway stopped")
	return nil
}
