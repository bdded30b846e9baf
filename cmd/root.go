package cmd

import (
	"fmt"
	"github.com/ValentinKolb/t38/cmd/obj"
	"github.com/ValentinKolb/t38/cmd/perf"
	"github.com/ValentinKolb/t38/cmd/server"
	"github.com/ValentinKolb/t38/cmd/shell"
	"github.com/ValentinKolb/t38/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "t38",
		Short: "client for geospatial database servers",
		Long: fmt.Sprintf(`t38 (v%s)

A command line client for Tile38 compatible geospatial servers. It stores
and queries points, bounding boxes, geohashes, strings and GeoJSON objects
over the redis protocol, a raw RESP connection or the HTTP API.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of t38",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("t38 v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(server.ServerCommands)
	RootCmd.AddCommand(obj.ObjectCommands)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(shell.ShellCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupRPCClientFlags(RootCmd)
	key := "transport"
	RootCmd.PersistentFlags().String(key, "redis", util.WrapString("transport to use (redis, tcp, http)"))
	key = "output"
	RootCmd.PersistentFlags().StringP(key, "o", "json", util.WrapString("output format of replies (json, yaml)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("log level of the client and transport loggers (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
