/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "apiserver",
	Short: "Backend for the shoptrack repair-order board",
	Long: `Backend for the shoptrack repair-order board.

Serves the JSON API, the live-update WebSocket endpoint, and the static
frontend bundle. Subcommands run database migrations and create users.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
