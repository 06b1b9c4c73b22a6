// Package cmd provides the gstdesk CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gstdesk/internal/config"
	"gstdesk/internal/util"
	"gstdesk/pkg/apiclient"
	"gstdesk/pkg/localstate"
	"gstdesk/pkg/session"
	"gstdesk/pkg/synccache"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "gstdesk",
	Short: "Manage GST invoices from the command line",
	Long: `gstdesk is the client for the invoice platform: upload purchase
invoices, track extraction, correct line items, and mirror everything
into a local cache for offline stats.

Example:
  gstdesk login --email you@example.com
  gstdesk invoices upload ./bills/march.pdf
  gstdesk sync && gstdesk stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real config comes from config.yaml + env
		_ = godotenv.Load()
		level := os.Getenv("GSTDESK_LOG_LEVEL")
		if debug {
			level = "debug"
		}
		util.InitLogger(level)
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(businessCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(gstCmd)
	rootCmd.AddCommand(emulateCmd)
}

func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// app bundles the wired client-side components every command needs.
type app struct {
	cfg      config.FileConfig
	state    *localstate.Store
	sessions *session.Manager
	client   *apiclient.Client
}

// newApp loads config, opens the local state store, restores the persisted
// session, and builds the API client. Commands call Close when done.
func newApp() *app {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	state, err := localstate.Open(cfg.StatePath)
	exitOnError(err, "failed to open local state")

	sessions, err := session.NewManager(state)
	exitOnError(err, "failed to restore session")

	opts := []apiclient.Option{apiclient.WithTokenSource(sessions)}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, apiclient.WithMaxAttempts(cfg.MaxAttempts))
	}
	if timeout, _ := config.ParseRequestTimeout(cfg.RequestTimeout); timeout > 0 {
		opts = append(opts, apiclient.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	return &app{
		cfg:      cfg,
		state:    state,
		sessions: sessions,
		client:   apiclient.NewClient(cfg.APIBaseURL, opts...),
	}
}

func (a *app) Close() {
	if err := a.state.Close(); err != nil {
		slog.Warn("closing local state", "error", err)
	}
}

// requireSession exits unless a live session is held.
func (a *app) requireSession() {
	if !a.sessions.Session().Authenticated() {
		fmt.Fprintln(os.Stderr, "Not logged in. Run `gstdesk login` first.")
		os.Exit(1)
	}
}

// businessID resolves the business to operate on: an explicit flag wins,
// otherwise the locally selected business.
func (a *app) businessID(flag string) string {
	if flag != "" {
		return flag
	}
	id, err := a.state.SelectedBusiness()
	exitOnError(err, "failed to read selected business")
	return id
}

// requireBusinessID is businessID but exits when neither source names one.
func (a *app) requireBusinessID(flag string) string {
	id := a.businessID(flag)
	if id == "" {
		fmt.Fprintln(os.Stderr, "No business selected. Pass --business or run `gstdesk business use <id>`.")
		os.Exit(1)
	}
	return id
}

func (a *app) openCache() *synccache.Cache {
	cache, err := synccache.Open(a.cfg.CachePath)
	exitOnError(err, "failed to open local cache")
	return cache
}
