// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/client"
	"github.com/bonial-oss/vendor-risk/internal/config"
	"github.com/bonial-oss/vendor-risk/internal/logging"
	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

// Version is set at build time via ldflags.
var Version = "dev"

var timeNow = time.Now

// Exit codes.
const (
	exitPolicy       = 1
	exitUsage        = 2
	exitIncompatible = 3
	exitServer       = 4
)

// ExitError signals a non-zero exit code with an optional message.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func usageError(format string, args ...any) error {
	return &ExitError{Code: exitUsage, Message: fmt.Sprintf(format, args...)}
}

// Options holds the persistent flag values.
type Options struct {
	ConfigFile string
	APIURL     string
	Format     string
	Output     string
	LogLevel   string
}

// app is shared by every subcommand once the config is loaded.
type app struct {
	opts   *Options
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand creates the root cobra command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &Options{}
	a := &app{opts: opts, stdout: os.Stdout, stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:     "vendor-risk",
		Short:   "Manage third-party vendor and software supply chain risk",
		Version: Version,
		Long: `vendor-risk tracks vendors, analyzes SBOM documents (CycloneDX and SPDX),
runs NIST SP 800-161 style supply chain assessments and scores risk.

Run the API with "vendor-risk serve", then use the other commands as a client:
  vendor-risk signup --email me@example.com
  vendor-risk vendor add --name "Acme Cloud" --risk-score 40
  vendor-risk sbom upload bom.cdx.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/vendor-risk/config.yaml or ./config.yaml)")
	flags.StringVar(&opts.APIURL, "api-url", "", "Base URL of the vendor-risk API")
	flags.StringVar(&opts.Format, "format", "table", "Output format: table, json")
	flags.StringVarP(&opts.Output, "output", "o", "", "Write to file instead of stdout")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCommand(a),
		newSignUpCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoAmICommand(a),
		newVendorCommand(a),
		newSBOMCommand(a),
		newAssessmentCommand(a),
		newRiskCommand(a),
		newDashboardCommand(a),
		newContactCommand(a),
		newPrefsCommand(a),
		newNotificationsCommand(a),
	)
	return cmd
}

// init loads configuration and the logger.
func (a *app) init(cmd *cobra.Command) error {
	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()

	if _, err := output.ParseFormat(a.opts.Format); err != nil {
		return usageError("%v", err)
	}

	cfg, err := config.Load(config.Options{
		File:  a.opts.ConfigFile,
		Flags: cmd.Flags(),
		FlagKeys: map[string]string{
			"client.base_url": "api-url",
			"log.level":       "log-level",
		},
	})
	if err != nil {
		return usageError("%v", err)
	}
	a.cfg = cfg

	logger, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return usageError("%v", err)
	}
	a.logger = logger
	return nil
}

func (a *app) format() output.Format {
	f, _ := output.ParseFormat(a.opts.Format)
	return f
}

// writer returns the destination for command output and a close func.
func (a *app) writer() (io.Writer, func() error, error) {
	if a.opts.Output == "" || a.opts.Output == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(a.opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// render writes data as JSON or through table, depending on --format.
func (a *app) render(data any, table func(w io.Writer, cfg output.TableConfig) error) error {
	w, closeFn, err := a.writer()
	if err != nil {
		return err
	}
	if a.format() == output.FormatJSON {
		err = output.WriteJSON(w, data)
	} else {
		err = table(w, output.TableConfig{IsTerminal: output.IsOutputToTerminal(w)})
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) sessionPath() (string, error) {
	if a.cfg.Client.SessionFile != "" {
		return a.cfg.Client.SessionFile, nil
	}
	return auth.DefaultSessionPath()
}

// newClient returns an API client without credentials.
func (a *app) newClient() *client.Client {
	return client.New(a.cfg.Client.BaseURL,
		client.WithTimeout(a.cfg.Client.Timeout),
		client.WithMaxRetries(uint64(a.cfg.Client.MaxRetries)),
	)
}

// authedClient returns an API client carrying the stored session token.
func (a *app) authedClient() (*client.Client, error) {
	path, err := a.sessionPath()
	if err != nil {
		return nil, err
	}
	session, err := auth.LoadSession(path)
	if errors.Is(err, auth.ErrNoSession) {
		return nil, usageError("not logged in; run \"vendor-risk login\" first")
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(timeNow()) {
		return nil, usageError("session expired; run \"vendor-risk login\" again")
	}
	c := a.newClient()
	c.SetToken(session.AccessToken)
	return c, nil
}

func (a *app) saveSession(s *types.Session) error {
	path, err := a.sessionPath()
	if err != nil {
		return err
	}
	return auth.SaveSession(path, s)
}

// apiError turns client errors into exit errors. Rejected requests (4xx)
// exit with the usage code and the server message; server failures (5xx)
// exit with exitServer.
func apiError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Status >= http.StatusInternalServerError {
		return &ExitError{Code: exitServer, Message: apiErr.Error()}
	}
	if apiErr.Message == "" {
		return &ExitError{Code: exitUsage, Message: apiErr.Error()}
	}
	return &ExitError{Code: exitUsage, Message: apiErr.Message}
}
