package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/andyyu8588/Luminous/lang/scanner"
)

// Tokenize runs the scanner phase only and prints the resulting token
// sequence, one per line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(stdio.Stderr, "tokenize: a file path is required")
		return fmt.Errorf("tokenize: a file path is required")
	}

	toks, err := scanner.ScanFile(args[0])
	for _, tok := range toks {
		fmt.Fprintf(stdio.Stdout, "%s:%d: %s\n", tok.File, tok.Line, tok)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}
