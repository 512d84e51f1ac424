// Package push is the device-facing ingestion service: an HTTP endpoint
// receiving biometric punch events, the reconciliation pipeline behind it and
// the WebSocket fanout of live results. The Service owns the listener and the
// subscriber set; Start and Stop are idempotent.
package push

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/shehrozeikram/ERP-sub001/internal/config"
	"github.com/shehrozeikram/ERP-sub001/internal/directory"
	"github.com/shehrozeikram/ERP-sub001/internal/fanout"
	"github.com/shehrozeikram/ERP-sub001/internal/reconcile"
	"github.com/shehrozeikram/ERP-sub001/internal/store"
)

// ErrListenerBind is returned by Start when the push listener cannot bind.
// Startup never partially succeeds: on bind failure nothing is left running.
var ErrListenerBind = errors.New("push listener bind failed")

type Service struct {
	cfg           config.Config
	engine        *reconcile.Engine
	resolver      directory.Resolver
	location      *time.Location
	checkInStates map[string]struct{}
	recordTimeout time.Duration
	now           func() time.Time

	mu      sync.Mutex
	running bool
	server  *http.Server
	hub     *fanout.Hub
	addr    string
}

func NewService(cfg config.Config, aggregates store.AggregateStore, resolver directory.Resolver) (*Service, error) {
	location, err := time.LoadLocation(cfg.PushTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid PUSH_TIMEZONE %q: %w", cfg.PushTimezone, err)
	}

	states := map[string]struct{}{}
	for _, state := range cfg.CheckInStates() {
		states[state] = struct{}{}
	}

	return &Service{
		cfg:           cfg,
		engine:        reconcile.NewEngine(aggregates, location),
		resolver:      resolver,
		location:      location,
		checkInStates: states,
		recordTimeout: time.Duration(cfg.RecordTimeoutMS) * time.Millisecond,
		now:           time.Now,
	}, nil
}

// Start binds the push listener and begins serving the device endpoint and
// the subscriber channel. Calling it while running is a no-op success.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Info().Str("addr", s.addr).Msg("push server already running")
		return nil
	}

	listener, err := net.Listen("tcp", s.cfg.PushAddr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListenerBind, err)
	}

	s.hub = fanout.NewHub()
	s.server = &http.Server{Handler: s.router()}
	s.addr = listener.Addr().String()
	s.running = true

	go func(server *http.Server) {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("push server stopped unexpectedly")
		}
	}(s.server)

	log.Info().Str("addr", s.addr).Msg("push server started")
	return nil
}

// Stop tears down the listener, closes every subscriber connection and
// clears the set. Calling it while stopped is a no-op success.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	server := s.server
	hub := s.hub
	s.server = nil
	s.hub = nil
	s.addr = ""
	s.running = false
	s.mu.Unlock()

	// Shutdown is done outside the lock so in-flight handlers finishing up
	// (which consult the hub) cannot stall it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Err(err).Msg("push server shutdown")
	}
	hub.CloseAll()

	log.Info().Msg("push server stopped")
	return nil
}

type Status struct {
	Running         bool   `json:"running"`
	SubscriberCount int    `json:"subscriberCount"`
	Addr            string `json:"addr,omitempty"`
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Running: s.running, Addr: s.addr}
	if s.hub != nil {
		status.SubscriberCount = s.hub.Count()
	}
	return status
}

// Addr reports the bound listener address, empty when stopped.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Service) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), deviceCors())

	router.POST("/device/push", s.handlePush)
	router.GET("/device/health", s.handleHealth)
	router.GET("/device/live", s.handleLive)

	return router
}

// deviceCors mirrors the permissive policy of the device endpoint: punches
// and live views come from appliances and dashboards on the local network.
func deviceCors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
