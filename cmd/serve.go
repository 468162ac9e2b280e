// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/api"
	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/config"
	"github.com/bonial-oss/vendor-risk/internal/datasource/osv"
	"github.com/bonial-oss/vendor-risk/internal/ratelimit"
	"github.com/bonial-oss/vendor-risk/internal/sbom"
	"github.com/bonial-oss/vendor-risk/internal/store"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the vendor-risk HTTP API",
		Long: `Run the HTTP API backing every client command.

The JWT signing secret is required and is usually provided through the
VENDOR_RISK_AUTH_JWT_SECRET environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Create or update database tables on start")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	if a.cfg.Auth.JWTSecret == "" {
		return usageError("auth.jwt_secret is required (set %s_AUTH_JWT_SECRET)", config.EnvPrefix)
	}

	db, err := store.Open(store.Options{
		Driver: a.cfg.Database.Driver,
		DSN:    a.cfg.Database.DSN,
		Debug:  a.cfg.Database.Debug,
	})
	if err != nil {
		return err
	}
	st := store.New(db)
	defer st.Close()

	if migrate {
		if err := st.AutoMigrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	authSvc, err := auth.NewService(st.Profiles, auth.Config{
		Secret:   a.cfg.Auth.JWTSecret,
		Issuer:   a.cfg.Auth.Issuer,
		TokenTTL: a.cfg.Auth.TokenTTL,
	})
	if err != nil {
		return usageError("%v", err)
	}

	parser, err := a.sbomParser()
	if err != nil {
		return err
	}
	limiter := ratelimit.New(a.cfg.RateLimit.ContactLimit, a.cfg.RateLimit.ContactWindow)

	srv := api.NewServer(st, authSvc, parser, limiter, a.logger, api.Options{
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
	})
	httpServer := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", a.cfg.Server.Addr, "driver", a.cfg.Database.Driver, "osv", a.cfg.OSV.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sbomParser builds the SBOM parser, backed by OSV when enabled.
func (a *app) sbomParser() (*sbom.Parser, error) {
	if !a.cfg.OSV.Enabled {
		return sbom.NewParser(), nil
	}
	cacheDir, err := a.cfg.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("determining cache directory: %w", err)
	}
	source := osv.NewSource(cacheDir, a.cfg.OSV.CacheTTL,
		osv.WithURL(a.cfg.OSV.URL),
		osv.WithHTTPClient(&http.Client{Timeout: a.cfg.OSV.Timeout}),
		osv.WithLogger(a.logger),
	)
	return sbom.NewParser(sbom.WithVulnerabilityCounter(source)), nil
}
