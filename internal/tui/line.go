package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"cmdfix/internal/fix"
)

// LineReader reads one line of input. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// LineConfirmer asks for each candidate on a single line. It is used when
// the full-screen prompt is disabled or unavailable.
type LineConfirmer struct {
	styles    Styles
	out       io.Writer
	newReader func() (LineReader, error)
	// rl is opened on the first prompt and shared by the rest, so input
	// buffered ahead by one prompt is seen by the next.
	rl LineReader
}

// NewLineConfirmer creates a LineConfirmer reading answers from in. A
// terminal gets readline editing; piped input is read line by line.
func NewLineConfirmer(styles Styles, in io.ReadCloser, out io.Writer) *LineConfirmer {
	return NewLineConfirmerWithReader(styles, out, func() (LineReader, error) {
		if !isTerminal(in) {
			return newPipeReader(in, out), nil
		}
		return readline.NewEx(&readline.Config{
			Stdin:           in,
			Stdout:          out,
			InterruptPrompt: "^C",
			EOFPrompt:       "",
		})
	})
}

// NewLineConfirmerWithReader creates a LineConfirmer with a custom reader
// factory. The factory is called once, on the first prompt.
func NewLineConfirmerWithReader(styles Styles, out io.Writer, newReader func() (LineReader, error)) *LineConfirmer {
	return &LineConfirmer{styles: styles, out: out, newReader: newReader}
}

// Close releases the reader, if one was opened.
func (c *LineConfirmer) Close() error {
	if c.rl == nil {
		return nil
	}
	err := c.rl.Close()
	c.rl = nil
	return err
}

// Confirm implements fix.Confirmer
func (c *LineConfirmer) Confirm(ctx context.Context, p fix.Prompt) (fix.Decision, error) {
	if err := ctx.Err(); err != nil {
		return fix.Abort, err
	}

	if c.rl == nil {
		rl, err := c.newReader()
		if err != nil {
			return fix.Abort, fmt.Errorf("open prompt: %w", err)
		}
		c.rl = rl
	}
	rl := c.rl

	text := c.styles.Command.Render(p.Candidate.Text)
	for _, w := range p.Candidate.SideEffects {
		text += " " + c.styles.Warning.Render("["+w+"]")
	}
	if p.Total > 1 {
		text += c.styles.Muted.Render(fmt.Sprintf(" (%d/%d)", p.Index+1, p.Total))
	}
	rl.SetPrompt(text + " " + c.styles.Help.Render("[enter/y/n/q]") + " ")

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
			return fix.Abort, nil
		case err != nil:
			return fix.Abort, err
		}

		if d, ok := ParseAnswer(line); ok {
			return d, nil
		}
		fmt.Fprintln(c.out, c.styles.Muted.Render("answer y, n or q"))
	}
}

// ParseAnswer maps a typed answer to a decision. An empty answer accepts.
func ParseAnswer(s string) (fix.Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y", "yes":
		return fix.Accept, true
	case "n", "no", "next", "s", "skip":
		return fix.Skip, true
	case "q", "quit", "a", "abort":
		return fix.Abort, true
	default:
		return fix.Abort, false
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// pipeReader reads answers from non-interactive input. One bufio.Reader
// lives as long as the confirmer.
type pipeReader struct {
	in     io.ReadCloser
	r      *bufio.Reader
	out    io.Writer
	prompt string
}

func newPipeReader(in io.ReadCloser, out io.Writer) *pipeReader {
	return &pipeReader{in: in, r: bufio.NewReader(in), out: out}
}

func (p *pipeReader) SetPrompt(prompt string) { p.prompt = prompt }

func (p *pipeReader) Readline() (string, error) {
	fmt.Fprint(p.out, p.prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	fmt.Fprintln(p.out)
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *pipeReader) Close() error { return p.in.Close() }
