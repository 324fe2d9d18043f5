package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jmcleod/ironvault/internal/util"
)

// secretReader prompts for and returns a passphrase.
type secretReader func(prompt string) (string, error)

// newSecretReader reads without echo when stdin is a terminal. Otherwise it
// takes the next line from lines, so scripts can pipe the passphrase in.
func newSecretReader(stdin io.Reader, lines *bufio.Reader, prompts io.Writer) secretReader {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		return func(prompt string) (string, error) {
			fmt.Fprint(prompts, prompt)
			pw, err := term.ReadPassword(fd)
			fmt.Fprintln(prompts)
			if err != nil {
				return "", fmt.Errorf("reading passphrase: %w", err)
			}
			defer util.WipeBytes(pw)
			return string(pw), nil
		}
	}
	return func(string) (string, error) {
		line, err := lines.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
