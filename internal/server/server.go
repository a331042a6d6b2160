package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cubbit/blockfs/internal/logger"
	"github.com/cubbit/blockfs/pkg/config"
	"github.com/cubbit/blockfs/pkg/fs"
)

// Server accepts TCP clients and serves the newline-delimited command
// protocol (CREATE/READ/WRITE/DELETE/LIST/QUIT) against one shared
// filesystem manager. Each connection is handled by its own goroutine;
// all of them invoke the manager concurrently and the manager's gate does
// the synchronization.
type Server struct {
	cfg     config.ServerConfig
	manager *fs.Manager

	mu       sync.Mutex
	listener net.Listener

	// connSlots bounds concurrent connections when max_connections > 0.
	connSlots chan struct{}
}

// New creates a Server around an already-constructed manager. The manager
// is built once at startup and passed by handle; the server never looks
// it up globally.
func New(cfg config.ServerConfig, manager *fs.Manager) *Server {
	s := &Server{
		cfg:     cfg,
		manager: manager,
	}
	if cfg.MaxConnections > 0 {
		s.connSlots = make(chan struct{}, cfg.MaxConnections)
	}
	return s
}

// Listen binds the TCP listener. Serve calls it implicitly; tests call it
// first so Addr is available before Serve is running.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until the context is cancelled or the
// listener fails. Connections still open at shutdown run until their
// client disconnects or the idle timeout fires.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	logger.Info("blockfs server listening on %s", s.Addr())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	if s.cfg.StatsInterval > 0 {
		go s.logStats(ctx)
	}

	for {
		tcpConn, err := s.listenerRef().Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				logger.Debug("Error accepting connection: %v", err)
				continue
			}
		}

		if s.connSlots != nil {
			select {
			case s.connSlots <- struct{}{}:
			case <-ctx.Done():
				tcpConn.Close()
				return nil
			}
		}

		conn := s.newConn(tcpConn)
		go func() {
			conn.serve(ctx)
			if s.connSlots != nil {
				<-s.connSlots
			}
		}()
	}
}

// Stop closes the listener, unblocking Serve.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) listenerRef() net.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

// logStats periodically reports filesystem occupancy.
func (s *Server) logStats(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := s.manager.Stats()
			logger.Info("stats: %d files, %d free blocks", stats.Files, stats.FreeBlocks)
		}
	}
}
