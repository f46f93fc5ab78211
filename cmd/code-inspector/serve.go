package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"bennypowers.dev/code-inspector/internal/banner"
	"bennypowers.dev/code-inspector/internal/config"
	"bennypowers.dev/code-inspector/internal/editor"
	"bennypowers.dev/code-inspector/internal/inspector"
	"bennypowers.dev/code-inspector/internal/log"
	"bennypowers.dev/code-inspector/internal/server"
	"bennypowers.dev/code-inspector/internal/version"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight launches may take on exit
const shutdownTimeout = 5 * time.Second

var (
	serveRoot        string
	serveHost        string
	servePort        int
	serveEditor      string
	serveWorkspace   string
	serveHideConsole bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local service that opens locations in your editor",
	Long: `Run the loopback HTTP service the page calls when an element is located.

The page sends GET /?file=&line=&column= and gets an immediate 200; the editor
is started in the background. When the port is taken the next free port is used.

Configuration is read from package.json ("codeInspector") or .code-inspector.*
in the project root. Flags override configuration.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "Project root for configuration and relative paths")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Address to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 0, fmt.Sprintf("Port to listen on (default from config, else %d)", server.DefaultPort))
	serveCmd.Flags().StringVar(&serveEditor, "editor", "", "Editor to launch (overrides "+editor.EnvVar+" and detection)")
	serveCmd.Flags().StringVar(&serveWorkspace, "workspace", "", "Folder to open alongside the file in editors that support it")
	serveCmd.Flags().BoolVar(&serveHideConsole, "hide-console", false, "Do not print the startup tip")
}

// loadServeConfig reads the project configuration and applies flag overrides
func loadServeConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if serveEditor != "" {
		cfg.Editor = serveEditor
	}
	if serveWorkspace != "" {
		cfg.Workspace = serveWorkspace
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.Port == 0 {
		cfg.Port = server.DefaultPort
	}
	cfg.HideConsole = cfg.HideConsole || serveHideConsole
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(serveRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	cfg, err := loadServeConfig(root)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		log.Debug("configuration from %s", cfg.Source)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	launcher := editor.NewLauncher(root, cfg.Editor, cfg.Workspace)
	srv := server.New(launcher, version.GetVersion())
	port, err := srv.Listen(serveHost, cfg.Port)
	if err != nil {
		return err
	}
	if port != cfg.Port {
		log.Warn("port %d is in use, listening on %d", cfg.Port, port)
	}

	mods, _ := cfg.Modifiers()
	b := banner.Global()
	b.SetOutput(cmd.OutOrStdout())
	b.EnsureInitialized(banner.Info{
		HotKeys: inspector.NewHotKeys(mods...).String(),
		ModeKey: cfg.ModeKey,
		URL:     "http://" + net.JoinHostPort(serveHost, strconv.Itoa(port)),
		Editor:  launcher.Resolve(ctx, "").Record.ID,
		Version: version.GetVersion(),
	}, cfg.HideConsole)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Serve may report the closed listener when shutdown won the race
	<-errCh
	return nil
}
