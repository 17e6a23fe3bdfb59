package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	version    = "undefined"
	buildTime  = "undefined"
	configPath string
)

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "hintdns",
	Short: "hintdns is an iterative DNS resolver and authoritative name server",
	Long: `An iterative DNS resolver with a persistent record cache and
a UDP name server answering from a local zone, with optional recursion.`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer(cmd, args)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yml", "path to config file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newVersionCommand())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
