package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wizkit/wizfs/pkg/wizfs"
	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/server"
)

// openWorkspace loads the configuration under root and wires the
// filesystem, logger, and workspace the subcommands share.
func openWorkspace(root, logLevel string, notifier core.Notifier) (*wizfs.Workspace, *filesystem.OSFileSystem, *wizfs.Config, zerolog.Logger, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, nil, zerolog.Nop(), err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, nil, nil, zerolog.Nop(), fmt.Errorf("workspace %q is not a directory", abs)
	}
	cfg, err := wizfs.LoadConfig(abs)
	if err != nil {
		return nil, nil, nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	level, err := wizfs.LogLevelFromString(logLevel)
	if err != nil {
		return nil, nil, nil, zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	logger := wizfs.NewLogger(os.Stderr, level)
	fsys := filesystem.NewOSFileSystem(abs)
	return wizfs.NewWorkspace(fsys, cfg, notifier, logger), fsys, cfg, logger, nil
}

func newServeCommand() *cobra.Command {
	var (
		workspaceDir string
		listen       string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor-surface host",
		Long:  "Serve the workspace to editor surfaces over a local websocket until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var srv *server.Server
			notifier := core.NotifierFunc(func(level, msg string) {
				if srv != nil {
					srv.Notify(level, msg)
				}
			})
			w, fsys, cfg, logger, err := openWorkspace(workspaceDir, logLevel, notifier)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = cfg.Listen
			}

			srv = server.New(w, fsys, logger)
			if err := srv.Start(listen); err != nil {
				return err
			}
			fmt.Printf("wizfs listening on %s\n", srv.Addr())

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}

	cmd.Flags().StringVar(&workspaceDir, "workspace", ".", "workspace root directory")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	return cmd
}
