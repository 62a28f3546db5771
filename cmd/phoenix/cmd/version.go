package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the phoenix CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phoenix version %s\n", version)
		fmt.Println("Session and risk admission control for discretionary trading systems")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
