package main

import (
	"fmt"

	"github.com/jessica-dev/jessica/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jessica",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.Get().Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
