package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

// cancelInput aborts the current wizard when typed at any prompt.
const cancelInput = ":q"

// Terminal prompts on a line-oriented reader/writer pair.
type Terminal struct {
	reader *bufio.Reader
	w      io.Writer
}

// NewTerminal returns a Terminal reading answers from r and writing prompts
// to w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{reader: bufio.NewReader(r), w: w}
}

// Input asks for free text. An empty answer takes the default. Validation
// failures are printed and the question is asked again.
func (t *Terminal) Input(ctx context.Context, opts InputOptions) (string, error) {
	for {
		if opts.Help != "" {
			fmt.Fprintf(t.w, "\n%s\n", opts.Help)
		}
		if opts.DefaultValue != "" {
			fmt.Fprintf(t.w, "%s [%s]: ", opts.Label, opts.DefaultValue)
		} else {
			fmt.Fprintf(t.w, "%s: ", opts.Label)
		}

		line, err := t.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			line = opts.DefaultValue
		}

		if opts.Validate != nil {
			if verr := opts.Validate(line); verr != nil {
				fmt.Fprintf(t.w, "  %s\n", verr.Error())
				continue
			}
		}
		return line, nil
	}
}

// Pick presents a numbered list and returns the chosen item. An empty answer
// takes the default item when one is set.
func (t *Terminal) Pick(ctx context.Context, opts PickOptions) (Item, error) {
	if len(opts.Items) == 0 {
		return Item{}, errNoItems
	}

	defaultIdx := -1
	for i, item := range opts.Items {
		if opts.DefaultValue != "" && item.Value == opts.DefaultValue {
			defaultIdx = i
		}
	}

	for {
		fmt.Fprintf(t.w, "\n%s\n", opts.Label)
		for i, item := range opts.Items {
			marker := " "
			if i == defaultIdx {
				marker = "*"
			}
			if item.Description != "" {
				fmt.Fprintf(t.w, " %s%d) %s - %s\n", marker, i+1, item.Label, item.Description)
			} else {
				fmt.Fprintf(t.w, " %s%d) %s\n", marker, i+1, item.Label)
			}
		}
		fmt.Fprintf(t.w, "Enter number [1-%d]: ", len(opts.Items))

		line, err := t.readLine(ctx)
		if err != nil {
			return Item{}, err
		}
		if line == "" && defaultIdx >= 0 {
			return opts.Items[defaultIdx], nil
		}

		num, err := strconv.Atoi(line)
		if err != nil || num < 1 || num > len(opts.Items) {
			fmt.Fprintf(t.w, "  invalid selection %q: choose 1-%d\n", line, len(opts.Items))
			continue
		}
		return opts.Items[num-1], nil
	}
}

// readLine returns one trimmed line. End of input and ":q" cancel.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(t.w)
			return "", wizard.ErrUserCancelled
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == cancelInput {
		return "", wizard.ErrUserCancelled
	}
	return line, nil
}
