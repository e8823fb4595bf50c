package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes signal values over websocket (/ws) and live parameters over HTTP (/params)
type Server struct {
	addr        string
	hub         *Hub
	broadcaster *Broadcaster
	params      Params
	noLogs      bool
}

func NewServer(addr string, source Source, params Params, syncInterval time.Duration, noLogs bool) *Server {
	hub := NewHub(noLogs)
	return &Server{
		addr:        addr,
		hub:         hub,
		broadcaster: NewBroadcaster(hub, source, syncInterval, noLogs),
		params:      params,
		noLogs:      noLogs,
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if !s.noLogs {
			log.Info(fmt.Sprintf("websocket upgrade failed: %v", err), zap.String("remote", r.RemoteAddr), logger.Warning)
		}
		return
	}

	c := &client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 64),
	}
	if !s.hub.register(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	s.broadcaster.sendInitial(c)
	go c.readPump()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/params", handleParams(s.params, s.noLogs))
	return mux
}

// Run serves until ctx is done, connected clients are closed on exit
func (s *Server) Run(ctx context.Context) error {
	broadcastDone := make(chan struct{})
	defer func() { <-broadcastDone }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(broadcastDone)
		s.broadcaster.Run(ctx)
	}()

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 5,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()

	if !s.noLogs {
		log.Info("HTTP server listening", zap.String("address", s.addr), logger.Info)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Second)
		defer cancelShutdown()
		err := httpServer.Shutdown(shutdownCtx)
		s.hub.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	case err := <-errs:
		s.hub.Close()
		return fmt.Errorf("http server failed: %w", err)
	}
}
