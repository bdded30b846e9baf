package shell

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/t38/cmd/util"
	"github.com/ValentinKolb/t38/rpc/client"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"io"
	"strings"
)

var Logger = logger.GetLogger("shell")

var (
	rpcClient *client.Client

	// ShellCmd starts the interactive shell
	ShellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell sending raw command lines to the server",
		Long: `Starts an interactive shell. Every line is sent to the server as a command
and the reply is printed as received. Arguments containing spaces can be quoted
with double or single quotes. Type help for the local commands.`,
		Args:     cobra.NoArgs,
		PreRunE:  setupShellClient,
		PostRunE: closeShellClient,
		RunE: func(cmd *cobra.Command, args []string) error {
			le := newLineEditor()
			defer le.close()
			return runShell(cmd.Context(), rpcClient, le, cmd.OutOrStdout(), cmd.ErrOrStderr(), util.OutputFormat())
		},
	}
)

func setupShellClient(cmd *cobra.Command, _ []string) (err error) {
	rpcClient, err = util.NewClient(cmd)
	return err
}

func closeShellClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}

const helpText = `Local commands:
  help   print this help
  exit   leave the shell
Everything else is sent to the server, e.g.
  SET fleet truck1 POINT 33.5123 -112.2693
  GET fleet truck1 POINT
  QUIT   ends the session on the server and leaves the shell`

// runShell reads lines until EOF, exit or QUIT and prints every reply in the given format
func runShell(ctx context.Context, c *client.Client, le *lineEditor, out, errOut io.Writer, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	prompt := c.Config().Endpoint() + "> "

	for {
		line, err := le.getLine(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		tokens, err := splitLine(line)
		if err != nil {
			fmt.Fprintf(errOut, "(error) %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		switch strings.ToLower(tokens[0]) {
		case "exit":
			return nil
		case "help":
			fmt.Fprintln(out, helpText)
			continue
		}

		cmd := common.Command{Name: strings.ToUpper(tokens[0]), Args: make([]any, len(tokens)-1)}
		for i, token := range tokens[1:] {
			cmd.Args[i] = token
		}

		res, err := c.Do(ctx, cmd, client.ProjectRaw)
		if err != nil {
			fmt.Fprintf(errOut, "(error) %v\n", err)
			continue
		}
		printReply(out, errOut, res.Raw(), format)

		if cmd.Name == common.CmdQuit {
			return nil
		}
	}
}

// printReply prints a raw reply. In yaml mode the envelope is converted, replies that are
// no valid envelope are printed as received.
func printReply(out, errOut io.Writer, raw, format string) {
	if format != "yaml" {
		fmt.Fprintln(out, raw)
		return
	}

	res, err := client.Interpret(raw, client.ProjectEnvelope)
	if err != nil {
		if common.IsServer(err) {
			fmt.Fprintf(errOut, "(error) %v\n", err)
			return
		}
		fmt.Fprintln(out, raw)
		return
	}
	if err := util.WriteResult(out, res, format); err != nil {
		fmt.Fprintf(errOut, "(error) %v\n", err)
	}
}

// splitLine splits a command line into arguments. Double quoted arguments support
// the escapes \" \\ \n \t, single quoted arguments are taken literally.
func splitLine(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			switch r {
			case 'n':
				current.WriteRune('\n')
			case 't':
				current.WriteRune('\t')
			default:
				current.WriteRune(r)
			}
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, errors.New("unbalanced quotes")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
