package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wizkit/wizfs/pkg/wizfs"
	"github.com/wizkit/wizfs/pkg/wizfs/core"
)

func newTreeCommand() *cobra.Command {
	var (
		workspaceDir string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the grouped workspace listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, _, _, err := openWorkspace(workspaceDir, logLevel, core.NopNotifier{})
			if err != nil {
				return err
			}
			root, err := w.Tree()
			if err != nil {
				return err
			}
			printNode(cmd, root, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&workspaceDir, "workspace", ".", "workspace root directory")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	return cmd
}

func printNode(cmd *cobra.Command, node *wizfs.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node.Kind {
	case wizfs.NodeWorkspace:
		fmt.Fprintln(cmd.OutOrStdout(), ".")
	case wizfs.NodeGroup:
		fmt.Fprintf(cmd.OutOrStdout(), "%s[%s]\n", indent, node.Mode)
	case wizfs.NodeDocument:
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s  (%s)\n", indent, node.Name, node.Path)
	case wizfs.NodeFolder:
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s/\n", indent, node.Name)
	case wizfs.NodeFile:
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", indent, node.Name)
	}
	for _, child := range node.Children {
		printNode(cmd, child, depth+1)
	}
}
