// Package status serves a read-only JSON view of the players and playback
// nodes.
package status

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/lavalink"
)

// Server exposes GET /status and GET /nodes.
type Server struct {
	addr   string
	client *lavalink.Client
	router *gin.Engine
}

func NewServer(addr string, client *lavalink.Client) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{addr: addr, client: client}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/status", s.handleStatus)
	r.GET("/nodes", s.handleNodes)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Handler:           s.router,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("status server listening")

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown status server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusResponse struct {
	Players   int `json:"players"`
	Connected int `json:"connected"`
	Playing   int `json:"playing"`
	Nodes     int `json:"nodes"`
}

func (s *Server) handleStatus(c *gin.Context) {
	players := s.client.Players()
	c.JSON(http.StatusOK, statusResponse{
		Players:   len(players.All()),
		Connected: len(players.Connected()),
		Playing:   len(players.Playing()),
		Nodes:     len(s.client.Nodes().Available()),
	})
}

// nodeResponse is a node without its password.
type nodeResponse struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	SearchOnly bool     `json:"search_only"`
	Managed    bool     `json:"managed"`
	Available  bool     `json:"available"`
	Sources    []string `json:"sources"`
}

func (s *Server) handleNodes(c *gin.Context) {
	nodes := s.client.Nodes()
	up := make(map[int64]bool)
	for _, n := range nodes.Available() {
		up[n.ID] = true
	}
	all := nodes.All()
	out := make([]nodeResponse, 0, len(all))
	for _, n := range all {
		out = append(out, nodeResponse{
			ID:         n.ID,
			Name:       n.Name,
			URI:        n.URI(),
			SearchOnly: n.SearchOnly,
			Managed:    n.Managed,
			Available:  up[n.ID],
			Sources:    n.EnabledSources(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"nodes": out})
}
