package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"serena/internal/config"
	"serena/internal/logging"
	"serena/internal/mcp"
)

// DefaultPort is used when neither --port nor the PORT variable is set.
const DefaultPort = 8081

var (
	serveHost         string
	servePort         int
	serveProfile      string
	serveDrainTimeout time.Duration
	serveDashboard    bool
	serveGUILogWindow bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the serena MCP server",
	Long: `Start serena as a headless MCP server over streamable HTTP.

The server exposes the MCP transport at /mcp and a liveness probe at
/health. The listen port comes from --port, then the PORT environment
variable, then the built-in default.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (0 means PORT env or default)")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "default", "Tool compatibility profile (default|strict)")
	serveCmd.Flags().DurationVar(&serveDrainTimeout, "drain-timeout", mcp.DefaultDrainTimeout, "Graceful shutdown drain bound")
	serveCmd.Flags().BoolVar(&serveDashboard, "dashboard", false, "Accepted for compatibility; the server is headless")
	serveCmd.Flags().BoolVar(&serveGUILogWindow, "gui-log-window", false, "Accepted for compatibility; the server is headless")
}

func runServe(cmd *cobra.Command, args []string) error {
	godotenv.Load()

	logger := logging.NewAppLogger()

	profile, err := mcp.ParseToolProfile(serveProfile)
	if err != nil {
		return err
	}

	port, err := resolvePort(servePort)
	if err != nil {
		return err
	}

	cfg := config.LoadOrDefault()

	srv := mcp.NewServer(cfg, logger, mcp.Options{
		Host:               serveHost,
		Port:               port,
		Profile:            profile,
		DrainTimeout:       serveDrainTimeout,
		EnableWebDashboard: serveDashboard,
		EnableGUILogWindow: serveGUILogWindow,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Error("Server startup failed", "error", err)
		return err
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Wait() }()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveDrainTimeout+time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown was not clean", "error", err)
		}
		return <-serveErr
	case err := <-serveErr:
		if err != nil {
			logger.Error("Serve loop failed", "error", err)
		}
		return err
	}
}

// resolvePort picks the listen port: an explicit flag wins, then the PORT
// environment variable, then DefaultPort.
func resolvePort(flagPort int) (int, error) {
	if flagPort != 0 {
		return flagPort, nil
	}
	if env := os.Getenv("PORT"); env != "" {
		port, err := strconv.Atoi(env)
		if err != nil || port < 1 || port > 65535 {
			return 0, fmt.Errorf("invalid PORT value %q", env)
		}
		return port, nil
	}
	return DefaultPort, nil
}
