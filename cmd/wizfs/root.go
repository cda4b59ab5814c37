package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wizfs",
	Short: "A reversible filesystem host for wiz folder documents",
	Long: `wizfs treats a folder holding a fixed set of files (app.json, view.pug,
view.ts, view.scss, view.html, api.py, socket.py) as one logical document.
It serves an editor surface over a local websocket, records every mutation
in an invertible transaction log, and makes directory deletion reversible
through full snapshots.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newTreeCommand())
	rootCmd.AddCommand(newCreateCommand())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number of wizfs`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wizfs version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
