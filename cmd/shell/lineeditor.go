package shell

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/ergochat/readline"
	"golang.org/x/term"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	historyFileName = ".t38_history"
	historySize     = 500
)

// lineEditor reads lines with readline when stdin is a terminal and with a plain
// scanner when input is piped (scripts, editors running the shell as a subprocess).
type lineEditor struct {
	interactive bool
	rl          *readline.Instance
	scanner     *bufio.Scanner
	out         io.Writer
}

// newLineEditor picks the input mode from the terminal state of stdin
func newLineEditor() *lineEditor {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && os.Getenv("INSIDE_EMACS") == ""
	if !interactive {
		return newScannerEditor(os.Stdin, os.Stdout)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		Logger.Warningf("readline init failed (%v), using basic input", err)
		return newScannerEditor(os.Stdin, os.Stdout)
	}

	return &lineEditor{interactive: true, rl: rl, out: os.Stdout}
}

// newScannerEditor reads lines from r and writes prompts to out
func newScannerEditor(r io.Reader, out io.Writer) *lineEditor {
	return &lineEditor{scanner: bufio.NewScanner(r), out: out}
}

// getLine reads the next line. It returns io.EOF at the end of input and on Ctrl-C.
func (le *lineEditor) getLine(prompt string) (string, error) {
	if !le.interactive {
		fmt.Fprint(le.out, prompt)
		if !le.scanner.Scan() {
			if err := le.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return le.scanner.Text(), nil
	}

	le.rl.SetPrompt(prompt)
	line, err := le.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *lineEditor) close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}
