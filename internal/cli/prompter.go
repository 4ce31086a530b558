package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Prompter asks questions on a terminal. Reads respect context cancellation
// so an interrupt does not hang on stdin.
type Prompter struct {
	reader      *bufio.Reader
	writer      io.Writer
	readingLock sync.Mutex
}

// NewPrompter creates a prompter. Nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// ReadLine reads one trimmed line. A final line without a newline is returned
// as is; io.EOF is returned only when nothing was read.
func (p *Prompter) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		p.readingLock.Lock()
		defer p.readingLock.Unlock()

		value, err := p.reader.ReadString('\n')
		if errors.Is(err, io.EOF) && value != "" {
			err = nil
		}
		resultCh <- result{value: value, err: err}
	}()

	// The reading goroutine keeps running after cancellation until stdin
	// delivers a line or closes.
	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}

// Ask prints label and returns the answer, or def when the answer is empty.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt += " " + SubtleStyle.Render("["+def+"]")
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose asks until the answer is one of options. An empty answer picks def.
func (p *Prompter) Choose(ctx context.Context, label string, options []string, def string) (string, error) {
	prompt := fmt.Sprintf("%s (%s)", label, strings.Join(options, "/"))
	for {
		answer, err := p.Ask(ctx, prompt, def)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		if slices.Contains(options, answer) {
			return answer, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please choose one of: "+strings.Join(options, ", "))); err != nil {
			return "", fmt.Errorf("failed to write warning: %w", err)
		}
	}
}

// Confirm asks a yes/no question. An empty answer picks def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := p.Ask(ctx, question+" ("+hint+")", "")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
