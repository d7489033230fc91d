package utils

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// closers get this long to finish before the process exits anyway
const shutdownTimeout = 15 * time.Second

// ShutdownManager cancels the root context on SIGINT/SIGTERM and then runs
// the registered closers in reverse registration order, so the HTTP server
// drains before the stores behind it disconnect.
type ShutdownManager struct {
	cancel  context.CancelFunc
	closers []func(context.Context) error
	mu      sync.Mutex
}

func NewShutdownManager(ctx context.Context) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	return ctx, &ShutdownManager{cancel: cancel}
}

// Register adds a closer to run on shutdown.
func (m *ShutdownManager) Register(closer func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, closer)
}

func (m *ShutdownManager) StartListening() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		log.Printf("Received %v, shutting down", sig)
		m.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		m.mu.Lock()
		defer m.mu.Unlock()
		for i := len(m.closers) - 1; i >= 0; i-- {
			if err := m.closers[i](ctx); err != nil {
				log.Printf("Shutdown step failed: %v", err)
			}
		}
		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}
