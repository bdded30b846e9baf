package server

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/t38/cmd/util"
	"github.com/ValentinKolb/t38/rpc/client"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

var (
	rpcClient *client.Client

	// ServerCommands represents the server command group
	ServerCommands = &cobra.Command{
		Use:                "server",
		Short:              "Perform server and connection operations",
		PersistentPreRunE:  setupServerClient,
		PersistentPostRunE: closeServerClient,
	}
)

func init() {
	ServerCommands.AddCommand(pingCmd)
	ServerCommands.AddCommand(infoCmd)
	ServerCommands.AddCommand(gcCmd)
	ServerCommands.AddCommand(configCmd)
	ServerCommands.AddCommand(flushDBCmd)
	ServerCommands.AddCommand(readOnlyCmd)

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configRewriteCmd)
}

// setupServerClient connects the client used by all server commands
func setupServerClient(cmd *cobra.Command, _ []string) (err error) {
	rpcClient, err = util.NewClient(cmd)
	return err
}

func closeServerClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}

var (
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pong, err := rpcClient.Ping(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(pong)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints the server statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rpcClient.Server(context.Background())
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	gcCmd = &cobra.Command{
		Use:   "gc",
		Short: "Triggers a garbage collection on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.GC(context.Background()); err != nil {
				return err
			}
			fmt.Println("gc successfully")
			return nil
		},
	}
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Reads and writes the server configuration",
	}
	configGetCmd = &cobra.Command{
		Use:   "get [property]",
		Short: "Reads a configuration property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rpcClient.ConfigGet(context.Background(), args[0])
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	configSetCmd = &cobra.Command{
		Use:   "set [property] [value]",
		Short: "Sets a configuration property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.ConfigSet(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("config set successfully")
			return nil
		},
	}
	configRewriteCmd = &cobra.Command{
		Use:   "rewrite",
		Short: "Makes the server persist its configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.ConfigRewrite(context.Background()); err != nil {
				return err
			}
			fmt.Println("config rewritten successfully")
			return nil
		},
	}
	flushDBCmd = &cobra.Command{
		Use:   "flushdb",
		Short: "Deletes all data on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.FlushDB(context.Background()); err != nil {
				return err
			}
			fmt.Println("flushdb successfully")
			return nil
		},
	}
	readOnlyCmd = &cobra.Command{
		Use:       "readonly [yes|no]",
		Short:     "Switches the server into or out of read only mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"yes", "no"},
		RunE: func(cmd *cobra.Command, args []string) error {
			readOnly, err := parseReadOnly(args[0])
			if err != nil {
				return err
			}
			if err := rpcClient.ReadOnly(context.Background(), readOnly); err != nil {
				return err
			}
			fmt.Printf("readonly=%t\n", readOnly)
			return nil
		},
	}
)

// parseReadOnly maps the yes|no argument of readonly to a bool
func parseReadOnly(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("readonly expects yes or no, got %s", arg)
	}
}
