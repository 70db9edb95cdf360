package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "restaurant_chat",
	Short: "restaurant_chat - analytics assistant for restaurant managers",
}

func init() {
	rootCmd.AddCommand(serveCmd, chatCmd)
}

// Execute runs the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
