package obj

import (
	"github.com/ValentinKolb/t38/cmd/util"
	"github.com/ValentinKolb/t38/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// ObjectCommands represents the object command group
	ObjectCommands = &cobra.Command{
		Use:                "obj",
		Short:              "Perform object and key operations",
		PersistentPreRunE:  setupObjectClient,
		PersistentPostRunE: closeObjectClient,
	}
)

func init() {
	// Object commands
	ObjectCommands.AddCommand(setCmd)
	ObjectCommands.AddCommand(fsetCmd)
	ObjectCommands.AddCommand(getCmd)
	ObjectCommands.AddCommand(delCmd)
	ObjectCommands.AddCommand(expireCmd)
	ObjectCommands.AddCommand(ttlCmd)
	ObjectCommands.AddCommand(persistCmd)

	// Key commands
	ObjectCommands.AddCommand(keysCmd)
	ObjectCommands.AddCommand(boundsCmd)
	ObjectCommands.AddCommand(statsCmd)
	ObjectCommands.AddCommand(scanCmd)
	ObjectCommands.AddCommand(pdelCmd)
	ObjectCommands.AddCommand(dropCmd)

	// JSON commands
	ObjectCommands.AddCommand(jsetCmd)
	ObjectCommands.AddCommand(jgetCmd)
	ObjectCommands.AddCommand(jdelCmd)

	// Flags
	setCmd.Flags().StringArray("field", nil, util.WrapString("Field to attach as name=value, may be repeated"))
	setCmd.Flags().Int("ex", 0, util.WrapString("Expire the object after this many seconds"))
	setCmd.Flags().Bool("nx", false, util.WrapString("Only set the object if it does not exist yet"))
	setCmd.Flags().Bool("xx", false, util.WrapString("Only set the object if it already exists"))

	getCmd.Flags().Bool("withfields", false, util.WrapString("Include the fields of the object"))
	getCmd.Flags().String("type", "", util.WrapString("Output type (object, point, bounds, hash)"))
	getCmd.Flags().Int("precision", 0, util.WrapString("Geohash precision, only used with --type hash"))
}

// setupObjectClient connects the client used by all object commands
func setupObjectClient(cmd *cobra.Command, _ []string) (err error) {
	rpcClient, err = util.NewClient(cmd)
	return err
}

func closeObjectClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}
