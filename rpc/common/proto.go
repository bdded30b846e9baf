package common

import (
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Command Structure
// --------------------------------------------------------------------------

// Command is a single request for the server: the command name followed by its
// arguments. The order of Args is significant and must match what the server expects.
// Args only ever hold string, int and float64 values.
type Command struct {
	Name string
	Args []any
}

// Command names of the wire protocol
const (
	CmdPing     = "PING"
	CmdQuit     = "QUIT"
	CmdServer   = "SERVER"
	CmdGC       = "GC"
	CmdConfig   = "CONFIG"
	CmdFlushDB  = "FLUSHDB"
	CmdReadOnly = "READONLY"
	CmdOutput   = "OUTPUT"
	CmdBounds   = "BOUNDS"
	CmdExpire   = "EXPIRE"
	CmdTTL      = "TTL"
	CmdPersist  = "PERSIST"
	CmdKeys     = "KEYS"
	CmdSet      = "SET"
	CmdFSet     = "FSET"
	CmdDel      = "DEL"
	CmdPDel     = "PDEL"
	CmdGet      = "GET"
	CmdDrop     = "DROP"
	CmdStats    = "STATS"
	CmdJSet     = "JSET"
	CmdJGet     = "JGET"
	CmdJDel     = "JDEL"
	CmdScan     = "SCAN"
)

// Line renders the command as a single space separated line. Arguments containing
// whitespace or quotes are quoted, so the output is meant for logs and the shell, not the wire.
func (c Command) Line() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		s := FormatArg(arg)
		if s == "" || strings.ContainsAny(s, " \t\r\n\"") {
			s = strconv.Quote(s)
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// String implements fmt.Stringer
func (c Command) String() string {
	return c.Line()
}

// StringArgs returns the arguments in their wire representation
func (c Command) StringArgs() []string {
	out := make([]string, len(c.Args))
	for i, arg := range c.Args {
		out[i] = FormatArg(arg)
	}
	return out
}

// FormatArg converts a single argument to its wire representation.
// Floats use the shortest representation that round-trips (no exponent for typical coordinates).
func FormatArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// --------------------------------------------------------------------------
// Command Factory Functions (server and connection commands)
// --------------------------------------------------------------------------

// NewPingCommand creates a PING command
func NewPingCommand() Command {
	return Command{Name: CmdPing}
}

// NewQuitCommand creates a QUIT command
func NewQuitCommand() Command {
	return Command{Name: CmdQuit}
}

// NewServerCommand creates a SERVER command (server statistics)
func NewServerCommand() Command {
	return Command{Name: CmdServer}
}

// NewGCCommand creates a GC command
func NewGCCommand() Command {
	return Command{Name: CmdGC}
}

// NewConfigGetCommand creates a CONFIG GET <prop> command
func NewConfigGetCommand(prop string) Command {
	return Command{Name: CmdConfig, Args: []any{"GET", prop}}
}

// NewConfigSetCommand creates a CONFIG SET <prop> <value> command
func NewConfigSetCommand(prop, value string) Command {
	return Command{Name: CmdConfig, Args: []any{"SET", prop, value}}
}

// NewConfigRewriteCommand creates a CONFIG REWRITE command
func NewConfigRewriteCommand() Command {
	return Command{Name: CmdConfig, Args: []any{"REWRITE"}}
}

// NewFlushDBCommand creates a FLUSHDB command
func NewFlushDBCommand() Command {
	return Command{Name: CmdFlushDB}
}

// NewReadOnlyCommand creates a READONLY yes|no command
func NewReadOnlyCommand(readOnly bool) Command {
	if readOnly {
		return Command{Name: CmdReadOnly, Args: []any{"yes"}}
	}
	return Command{Name: CmdReadOnly, Args: []any{"no"}}
}

// NewOutputCommand creates an OUTPUT <format> command.
// Socket transports send OUTPUT json after connecting so that every reply is a JSON envelope.
func NewOutputCommand(format string) Command {
	return Command{Name: CmdOutput, Args: []any{format}}
}

// --------------------------------------------------------------------------
// Command Factory Functions (key and object commands)
// --------------------------------------------------------------------------

// NewBoundsCommand creates a BOUNDS <key> command
func NewBoundsCommand(key string) Command {
	return Command{Name: CmdBounds, Args: []any{key}}
}

// NewExpireCommand creates an EXPIRE <key> <id> <seconds> command
func NewExpireCommand(key, id string, seconds int) Command {
	return Command{Name: CmdExpire, Args: []any{key, id, seconds}}
}

// NewTTLCommand creates a TTL <key> <id> command
func NewTTLCommand(key, id string) Command {
	return Command{Name: CmdTTL, Args: []any{key, id}}
}

// NewPersistCommand creates a PERSIST <key> <id> command
func NewPersistCommand(key, id string) Command {
	return Command{Name: CmdPersist, Args: []any{key, id}}
}

// NewKeysCommand creates a KEYS <pattern> command
func NewKeysCommand(pattern string) Command {
	return Command{Name: CmdKeys, Args: []any{pattern}}
}

// NewFSetCommand creates an FSET <key> <id> <field> <value> command
func NewFSetCommand(key, id, field string, value float64) Command {
	return Command{Name: CmdFSet, Args: []any{key, id, field, value}}
}

// NewDelCommand creates a DEL <key> <id> command
func NewDelCommand(key, id string) Command {
	return Command{Name: CmdDel, Args: []any{key, id}}
}

// NewPDelCommand creates a PDEL <key> <pattern> command
func NewPDelCommand(key, pattern string) Command {
	return Command{Name: CmdPDel, Args: []any{key, pattern}}
}

// NewDropCommand creates a DROP <key> command
func NewDropCommand(key string) Command {
	return Command{Name: CmdDrop, Args: []any{key}}
}

// NewStatsCommand creates a STATS <key>... command. At least one key is required.
func NewStatsCommand(keys ...string) (Command, error) {
	if len(keys) == 0 {
		return Command{}, NewInvalidArgumentError("STATS requires at least one key")
	}
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	return Command{Name: CmdStats, Args: args}, nil
}

// NewJSetCommand creates a JSET <key> <id> <path> <value> command
func NewJSetCommand(key, id, path, value string) Command {
	return Command{Name: CmdJSet, Args: []any{key, id, path, value}}
}

// NewJGetCommand creates a JGET <key> <id> <path>... command. At least one path is required.
func NewJGetCommand(key, id string, paths ...string) (Command, error) {
	if len(paths) == 0 {
		return Command{}, NewInvalidArgumentError("JGET requires at least one path")
	}
	args := make([]any, 0, 2+len(paths))
	args = append(args, key, id)
	for _, path := range paths {
		args = append(args, path)
	}
	return Command{Name: CmdJGet, Args: args}, nil
}

// NewJDelCommand creates a JDEL <key> <id> <path> command
func NewJDelCommand(key, id, path string) Command {
	return Command{Name: CmdJDel, Args: []any{key, id, path}}
}

// NewScanCommand creates a SCAN <key> command
func NewScanCommand(key string) Command {
	return Command{Name: CmdScan, Args: []any{key}}
}
