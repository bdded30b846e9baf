package obj

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/t38/cmd/util"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/spf13/cobra"
	"os"
	"strconv"
	"strings"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [id] [point|bounds|hash|string|object] [values...]",
		Short: "Stores an object",
		Long: `Stores an object. The location is one of:

  point  lat lng [z]
  bounds minlat minlng maxlat maxlng
  hash   geohash
  string value
  object geojson`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := setOptions(cmd)
			if err != nil {
				return err
			}
			loc, typ, err := parseLocation(args[2:])
			if err != nil {
				return err
			}
			opts.Type = typ
			if err := rpcClient.Set(context.Background(), args[0], args[1], loc, opts); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	fsetCmd = &cobra.Command{
		Use:   "fset [key] [id] [field] [value]",
		Short: "Sets a single field of an object",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("value must be a number: %w", err)
			}
			if err := rpcClient.FSet(context.Background(), args[0], args[1], args[2], value); err != nil {
				return err
			}
			fmt.Println("fset successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key] [id]",
		Short: "Reads an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			withFields, _ := cmd.Flags().GetBool("withfields")
			typ, _ := cmd.Flags().GetString("type")
			precision, _ := cmd.Flags().GetInt("precision")

			res, err := rpcClient.Get(context.Background(), args[0], args[1], &common.GetOptions{
				WithFields: withFields,
				Type:       common.OutputType(strings.ToUpper(typ)),
				Precision:  precision,
			})
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key] [id]",
		Short: "Deletes an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Del(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	expireCmd = &cobra.Command{
		Use:   "expire [key] [id] [seconds]",
		Short: "Sets a timeout on an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("seconds must be a number: %w", err)
			}
			if err := rpcClient.Expire(context.Background(), args[0], args[1], seconds); err != nil {
				return err
			}
			fmt.Println("expire successfully")
			return nil
		},
	}
	ttlCmd = &cobra.Command{
		Use:   "ttl [key] [id]",
		Short: "Prints the remaining time to live of an object in seconds (-1 = no timeout)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := rpcClient.TTL(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			return util.PrintValue(os.Stdout, ttl)
		},
	}
	persistCmd = &cobra.Command{
		Use:   "persist [key] [id]",
		Short: "Removes the timeout of an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Persist(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("persist successfully")
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "Lists all keys matching the pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			keys, err := rpcClient.Keys(context.Background(), pattern)
			if err != nil {
				return err
			}
			if util.OutputFormat() == "yaml" {
				return util.PrintValue(os.Stdout, keys)
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	boundsCmd = &cobra.Command{
		Use:   "bounds [key]",
		Short: "Prints the bounding box of all objects of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rpcClient.Bounds(context.Background(), args[0])
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats [key...]",
		Short: "Prints the statistics of one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rpcClient.Stats(context.Background(), args...)
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan [key]",
		Short: "Prints all objects of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rpcClient.Scan(context.Background(), args[0])
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	pdelCmd = &cobra.Command{
		Use:   "pdel [key] [pattern]",
		Short: "Deletes all objects of a key whose id matches the pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.PDel(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("pdel successfully")
			return nil
		},
	}
	dropCmd = &cobra.Command{
		Use:   "drop [key]",
		Short: "Deletes a key and all its objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Drop(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("drop successfully")
			return nil
		},
	}
	jsetCmd = &cobra.Command{
		Use:   "jset [key] [id] [path] [value]",
		Short: "Sets a value inside the JSON document of an object",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.JSet(context.Background(), args[0], args[1], args[2], args[3]); err != nil {
				return err
			}
			fmt.Println("jset successfully")
			return nil
		},
	}
	jgetCmd = &cobra.Command{
		Use:   "jget [key] [id] [path...]",
		Short: "Reads one or more values from the JSON document of an object",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rpcClient.JGet(context.Background(), args[0], args[1], args[2:]...)
			if err != nil {
				return err
			}
			return util.PrintResult(os.Stdout, res)
		},
	}
	jdelCmd = &cobra.Command{
		Use:   "jdel [key] [id] [path]",
		Short: "Deletes a value from the JSON document of an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.JDel(context.Background(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Println("jdel successfully")
			return nil
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// setOptions reads the flags of the set command
func setOptions(cmd *cobra.Command) (*common.SetOptions, error) {
	rawFields, _ := cmd.Flags().GetStringArray("field")
	fields, err := parseFields(rawFields)
	if err != nil {
		return nil, err
	}
	ex, _ := cmd.Flags().GetInt("ex")
	nx, _ := cmd.Flags().GetBool("nx")
	xx, _ := cmd.Flags().GetBool("xx")

	return &common.SetOptions{
		Fields:          fields,
		Expire:          ex,
		OnlyIfNotExists: nx,
		OnlyIfExists:    xx,
	}, nil
}

// parseFields parses name=value pairs, keeping their order
func parseFields(raw []string) ([]common.Field, error) {
	fields := make([]common.Field, 0, len(raw))
	for _, f := range raw {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("field must be name=value, got %q", f)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value of field %s must be a number: %w", name, err)
		}
		fields = append(fields, common.Field{Name: name, Value: v})
	}
	return fields, nil
}

// parseLocation parses the location part of the set command
func parseLocation(args []string) (common.Location, common.ObjectType, error) {
	kind, values := strings.ToLower(args[0]), args[1:]

	switch kind {
	case "point", "bounds":
		coords := make([]float64, len(values))
		for i, v := range values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return common.Location{}, "", fmt.Errorf("coordinate %q is not a number", v)
			}
			coords[i] = f
		}
		if kind == "bounds" && len(coords) != 4 {
			return common.Location{}, "", fmt.Errorf("bounds need 4 coordinates, got %d", len(coords))
		}
		if kind == "point" && (len(coords) < 2 || len(coords) > 3) {
			return common.Location{}, "", fmt.Errorf("a point needs 2 or 3 coordinates, got %d", len(coords))
		}
		return common.Coordinates(coords...), "", nil
	case "hash", "string", "object":
		if len(values) != 1 {
			return common.Location{}, "", fmt.Errorf("%s expects exactly one value", kind)
		}
		switch kind {
		case "hash":
			return common.StringLocation(values[0]), common.TypeHash, nil
		case "string":
			return common.StringLocation(values[0]), common.TypeString, nil
		default:
			loc, err := common.GeoJSONLocation(values[0])
			return loc, "", err
		}
	default:
		return common.Location{}, "", fmt.Errorf("unknown location type %s (point, bounds, hash, string, object)", args[0])
	}
}
