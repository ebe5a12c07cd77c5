package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/lifecycle"
)

// TextHandler implements the interactive text interface.
type TextHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Renderer     ContentRenderer
	MaxInputSize InputLimit

	// Terminal reports whether input was upgraded to a platform terminal reader.
	Terminal bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithMaxInputSize caps a command line at size bytes. Lines over the cap are
// rejected and the user is asked again.
func WithMaxInputSize(size int) TextHandlerOption {
	return func(h *TextHandler) {
		h.MaxInputSize = InputLimit(size)
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	r, terminal := resolveInputReader(r)
	h := &TextHandler{
		Reader:   bufio.NewReader(r),
		Writer:   w,
		Terminal: terminal,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honor ctx cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// FeedInput injects a line as if typed. It is used by tests and bridges
// that receive commands from elsewhere; it must not be mixed with a live reader.
func (h *TextHandler) FeedInput(text string, err error) {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
	})
	h.inputChan <- inputResult{text: text, err: err}
}

func (h *TextHandler) Output(ctx context.Context, view StepView) error {
	step := view.Step

	title := step.Content.Title
	if title == "" {
		title = step.Target
	}
	fmt.Fprintf(h.Writer, "\nStep %d/%d: %s\n", view.Index+1, view.Total, title)
	fmt.Fprintf(h.Writer, "  target: %s (%s)\n", step.Target, step.Placement)

	if body := strings.TrimSpace(step.Content.Body); body != "" {
		output := body
		if h.Renderer != nil {
			if rendered, err := h.Renderer(body); err == nil {
				output = rendered
			}
		}
		fmt.Fprintln(h.Writer, strings.TrimRight(output, "\n"))
	}

	next := "[n]ext"
	if view.Last {
		next = "[n] finish"
	}
	fmt.Fprintf(h.Writer, "%s  [p]rev  [g N] goto  [s]kip\n", next)
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return Command{}, io.EOF
			}
			if res.err != nil {
				return Command{}, res.err
			}

			clean, err := h.MaxInputSize.Clean(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			cmd, err := ParseCommand(clean)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return cmd, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "[guidepost] %s\n", msg)
	return nil
}

// resolveInputReader swaps an interactive terminal for the reader lifecycle
// opens for it (CONIN$ on Windows). Other readers are returned unchanged.
func resolveInputReader(r io.Reader) (io.Reader, bool) {
	if upgraded, err := lifecycle.UpgradeTerminal(r); err == nil && upgraded != r {
		return upgraded, true
	}
	return r, false
}
