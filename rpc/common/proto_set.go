package common

// ObjectType forces how a string payload of SET is interpreted
type ObjectType string

const (
	// TypeHash sends string payloads as a geohash (default)
	TypeHash ObjectType = "hash"
	// TypeString sends string payloads as a string object
	TypeString ObjectType = "string"
)

// OutputType selects the representation GET returns
type OutputType string

const (
	OutputObject OutputType = "OBJECT"
	OutputPoint  OutputType = "POINT"
	OutputBounds OutputType = "BOUNDS"
	OutputHash   OutputType = "HASH"
)

// Field is a single numeric field attached to an object.
// Fields are kept in a slice because their order ends up on the wire.
type Field struct {
	Name  string
	Value float64
}

// SetOptions holds the optional parts of a SET command
type SetOptions struct {
	// Fields are sent as FIELD <name> <value> in order
	Fields []Field
	// Expire sets a timeout in seconds, values <= 0 are ignored
	Expire int
	// OnlyIfExists adds XX
	OnlyIfExists bool
	// OnlyIfNotExists adds NX
	OnlyIfNotExists bool
	// Type forces STRING or HASH for string locations
	Type ObjectType
}

// GetOptions holds the optional parts of a GET command
type GetOptions struct {
	WithFields bool
	// Type selects the output representation, empty means the server default (object).
	// Only OutputHash takes a precision, any other value is sent as given.
	Type OutputType
	// Precision is only used together with OutputHash, values <= 0 are ignored
	Precision int
}

// --------------------------------------------------------------------------
// Command Factory Functions (SET / GET)
// --------------------------------------------------------------------------

// BuildSet creates a SET command:
//
//	SET <key> <id> [FIELD <name> <value>]* [EX <seconds>] [NX] [XX] <location>
//
// The location is validated before anything is encoded. NX and XX are not checked for
// contradicting each other.
func BuildSet(key, id string, loc Location, opts *SetOptions) (Command, error) {
	if opts == nil {
		opts = &SetOptions{}
	}

	// validate the location first so an invalid one never produces a partial command
	locArgs, err := loc.appendArgs(nil, opts.Type)
	if err != nil {
		return Command{}, err
	}

	args := make([]any, 0, 2+3*len(opts.Fields)+4+len(locArgs))
	args = append(args, key, id)

	for _, f := range opts.Fields {
		args = append(args, "FIELD", f.Name, f.Value)
	}

	if opts.Expire > 0 {
		args = append(args, "EX", opts.Expire)
	}
	if opts.OnlyIfNotExists {
		args = append(args, "NX")
	}
	if opts.OnlyIfExists {
		args = append(args, "XX")
	}

	args = append(args, locArgs...)
	return Command{Name: CmdSet, Args: args}, nil
}

// BuildGet creates a GET command:
//
//	GET <key> <id> [WITHFIELDS] [OBJECT|POINT|BOUNDS|HASH <precision>]
func BuildGet(key, id string, opts *GetOptions) Command {
	args := []any{key, id}
	if opts == nil {
		return Command{Name: CmdGet, Args: args}
	}

	if opts.WithFields {
		args = append(args, "WITHFIELDS")
	}

	switch opts.Type {
	case "":
	case OutputHash:
		args = append(args, string(OutputHash))
		if opts.Precision > 0 {
			args = append(args, opts.Precision)
		}
	default:
		args = append(args, string(opts.Type))
	}

	return Command{Name: CmdGet, Args: args}
}
