// Package app wires the upsd daemon together: export archive, cross-app
// transports, assistant, provider and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/assistant"
	"github.com/kazi-app/ups/internal/config"
	"github.com/kazi-app/ups/internal/export"
	"github.com/kazi-app/ups/internal/server"
	"github.com/kazi-app/ups/internal/transport"
	"github.com/kazi-app/ups/internal/ups"
)

// Options configures the application.
type Options struct {
	// ConfigPath is watched for feature changes when set.
	ConfigPath string

	Config config.Config
	Logger zerolog.Logger
}

// Application owns every long-lived component of the daemon.
type Application struct {
	opts Options
	log  zerolog.Logger

	store     export.Store
	transport transport.Transport
	assistant assistant.Assistant
	provider  *ups.Provider
	server    *server.Server

	// closers run in reverse order on Shutdown.
	closers []closer

	shutdownOnce sync.Once
	shutdownErr  error
}

type closer struct {
	name string
	fn   func() error
}

// New builds the application. Components created before a failing step
// are released before New returns.
func New(opts Options) (*Application, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	a := &Application{
		opts: opts,
		log:  opts.Logger.With().Str("component", "app").Logger(),
	}
	if err := newBootstrapper(a).bootstrap(); err != nil {
		return nil, err
	}
	return a, nil
}

// Provider returns the provider.
func (a *Application) Provider() *ups.Provider {
	return a.provider
}

// Server returns the HTTP server.
func (a *Application) Server() *server.Server {
	return a.server
}

// Run mounts the provider, watches the config file and serves HTTP until
// ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if err := a.provider.Mount(ctx); err != nil {
		return fmt.Errorf("mount provider: %w", err)
	}
	a.log.Info().
		Str("state", a.provider.State().String()).
		Strs("features", a.provider.Features().List()).
		Msg("provider ready")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.opts.ConfigPath != "" {
		w, err := config.NewWatcher(a.opts.ConfigPath, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("config hot reload disabled")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer w.Close()
				_ = w.Run(ctx, func(c config.Config) { a.applyReload(ctx, c) })
			}()
		}
	}

	srv := a.opts.Config.Server
	err := a.server.Run(ctx, srv.Addr, srv.ShutdownTimeout.Std())
	cancel()
	wg.Wait()
	return err
}

// applyReload applies the settings that can change at runtime. Only the
// enabled features can.
func (a *Application) applyReload(ctx context.Context, c config.Config) {
	a.provider.SetFeatures(ctx, c.Provider.EnabledFeatures)
}

// Shutdown releases every component. It is safe to call more than once.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		var errs []error
		for i := len(a.closers) - 1; i >= 0; i-- {
			c := a.closers[i]
			if err := c.fn(); err != nil {
				a.log.Warn().Err(err).Str("closer", c.name).Msg("shutdown step failed")
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			}
		}
		a.shutdownErr = errors.Join(errs...)
		a.log.Info().Msg("application stopped")
	})
	return a.shutdownErr
}
