package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gstdesk/internal/config"
	"gstdesk/internal/emulator"
	"gstdesk/internal/util"
)

var emulateSecret string

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run a local platform emulator",
	Long: `Emulate serves an in-memory copy of the platform API with a
deterministic fake extraction step. Point the client at it for offline
development:

  GSTDESK_API_URL=http://localhost:8787 gstdesk login ...`,
	Run: runEmulate,
}

func init() {
	emulateCmd.Flags().StringVar(&emulateSecret, "secret", "gstdesk-emulator", "token signing secret")
}

func runEmulate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		// The emulator has no use for apiBaseURL; only the port matters.
		cfg.EmulatorPort = "8787"
	}
	if v := os.Getenv("GSTDESK_EMULATOR_PORT"); v != "" {
		cfg.EmulatorPort = v
	}

	addr := ":" + cfg.EmulatorPort
	srv := &http.Server{
		Addr:              addr,
		Handler:           emulator.New(emulateSecret).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	util.InitLogger(cfg.LogLevel)
	slog.Info("emulator listening", "addr", addr)
	fmt.Printf("Emulator listening on %s\n", addr)
	exitOnError(srv.ListenAndServe(), "emulator stopped")
}
