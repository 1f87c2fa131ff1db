package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the csvpeek version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("csvpeek", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
