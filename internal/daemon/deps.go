// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig holds the HTTP listener settings the manager applies.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Worker is a background task that runs for the lifetime of the daemon.
// Run must return when ctx is cancelled.
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// APIHandler is the HTTP handler for the API server
	APIHandler http.Handler

	// Listener overrides ListenAddr when set.
	Listener net.Listener

	Workers []Worker
}

// Validate checks that all required dependencies are provided.
func (d Deps) Validate() error {
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
