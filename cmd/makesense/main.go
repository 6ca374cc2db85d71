package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"makesense-backend/cmd/api"
	"makesense-backend/pkg/config"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "makesense",
	Short: "YouTube summarizer backend",
	Long: `makesense generates AI summaries of YouTube videos and keeps a
synchronized summary history in InstantDB.

Run "makesense serve" to start the HTTP API used by the browser
extension, or use the subcommands directly from the terminal.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(os.Stderr, "makesense version %s\n", version)

		cfg := config.Load()

		handler := api.NewHandler(cfg)
		defer handler.Stop()

		addr := ":" + cfg.Port
		fmt.Fprintf(os.Stderr, "makesense listening on %s\n", addr)
		return handler.Start(addr)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(keyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
