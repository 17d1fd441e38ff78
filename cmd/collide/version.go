package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X main.Version=..."
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
