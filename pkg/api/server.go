package api

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang/glog"
	"golang.org/x/net/netutil"

	"github.com/robotalks/livelamp/pkg/framework"
)

// Defaults of Server.
const (
	DefaultRequestTimeout = 2 * time.Second
	DefaultStreamInterval = 500 * time.Millisecond
	DefaultMaxConns       = 16
)

// Server exposes the Service over HTTP. Handlers run on fiber goroutines
// and reach the device state only through the Queue.
type Server struct {
	App            *fiber.App
	Addr           string
	MaxConns       int
	RequestTimeout time.Duration
	StreamInterval time.Duration

	queue *Queue
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, queue *Queue) *Server {
	s := &Server{
		Addr:           addr,
		MaxConns:       DefaultMaxConns,
		RequestTimeout: DefaultRequestTimeout,
		StreamInterval: DefaultStreamInterval,
		queue:          queue,
	}

	app := fiber.New(fiber.Config{
		AppName:               "livelamp",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Get("/radar", s.query(func(svc *Service) (interface{}, error) {
		return svc.Radar(), nil
	}))
	api.Get("/leds", s.query(func(svc *Service) (interface{}, error) {
		return svc.Lighting(), nil
	}))
	api.Post("/leds", s.command(TargetLEDs))
	api.Post("/leds/pattern", s.command(TargetPattern))
	api.Post("/leds/white", s.command(TargetWhite))
	api.Get("/pump", s.query(func(svc *Service) (interface{}, error) {
		return svc.Pump(), nil
	}))
	api.Post("/pump", s.command(TargetPump))
	api.Get("/sma", s.query(func(svc *Service) (interface{}, error) {
		return svc.SMA(), nil
	}))
	api.Post("/sma", s.command(TargetSMA))
	api.Get("/info", s.query(func(svc *Service) (interface{}, error) {
		return svc.Info(), nil
	}))
	api.Get("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(s.handleStream))

	s.App = app
	return s
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}
	glog.Infof("http listening on %s", ln.Addr())
	return framework.RunWithContextCancel(ctx, func() {
		if err := s.App.Shutdown(); err != nil {
			glog.Warningf("http shutdown: %v", err)
		}
	}, func() error {
		return s.App.Listener(ln)
	})
}

func (s *Server) query(exec ExecFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.exec(c, exec)
	}
}

func (s *Server) command(target string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// the body buffer is recycled once the handler returns, and a
		// timed out request may still execute later.
		body := append([]byte(nil), c.Body()...)
		return s.exec(c, func(svc *Service) (interface{}, error) {
			return svc.Command(target, body)
		})
	}
}

func (s *Server) exec(c *fiber.Ctx, exec ExecFunc) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.RequestTimeout)
	defer cancel()
	value, err := s.queue.Submit(ctx, "http", exec)
	if err != nil {
		return c.Status(StatusOf(err)).JSON(ErrorReply{Error: err.Error()})
	}
	return c.JSON(value)
}

// StatusOf maps an error to an HTTP status.
func StatusOf(err error) int {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrQueueFull):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

func (s *Server) handleStream(c *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.StreamInterval)
	defer ticker.Stop()
	for {
		reqCtx, reqCancel := context.WithTimeout(ctx, s.RequestTimeout)
		radar, err := s.queue.Submit(reqCtx, "stream", func(svc *Service) (interface{}, error) {
			return svc.Radar(), nil
		})
		reqCancel()
		if err != nil {
			glog.V(2).Infof("stream: %v", err)
			return
		}
		if err := c.WriteJSON(radar); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
