package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wizkit/wizfs/pkg/wizfs/core"
)

func newCreateCommand() *cobra.Command {
	var (
		workspaceDir string
		logLevel     string
		dir          string
		title        string
	)

	cmd := &cobra.Command{
		Use:   "create MODE NAME",
		Short: "Create a wiz folder document",
		Long: `Create a new wiz folder document of the given mode. Non-portal names are
prefixed with "<mode>." when the prefix is missing; portal documents must be
created under a portal/<app> ancestry (use --dir).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notifier := core.NotifierFunc(func(level, msg string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", level, msg)
			})
			w, _, cfg, _, err := openWorkspace(workspaceDir, logLevel, notifier)
			if err != nil {
				return err
			}

			mode, name := args[0], args[1]
			docDir, err := w.CreateDocument(cmd.Context(), mode, name, dir, title)
			if err != nil {
				return fmt.Errorf("create document (allowed modes: %s): %w",
					strings.Join(cfg.CreationModes(), ", "), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", docDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&workspaceDir, "workspace", ".", "workspace root directory")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	cmd.Flags().StringVar(&dir, "dir", "", "subdirectory to create the document in")
	cmd.Flags().StringVar(&title, "title", "", "document title for app.json")
	return cmd
}
