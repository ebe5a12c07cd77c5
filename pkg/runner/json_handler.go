package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// JSONHandler implements IOHandler over JSON-Lines.
// Each step is one JSON object; each input line is a Command object or text shorthand.
type JSONHandler struct {
	Reader       *bufio.Reader
	Encoder      *json.Encoder
	MaxInputSize InputLimit
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

type jsonMessage struct {
	Type    string    `json:"type"`
	View    *StepView `json:"view,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func (h *JSONHandler) Output(ctx context.Context, view StepView) error {
	return h.Encoder.Encode(jsonMessage{Type: "step", View: &view})
}

func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}

		line, err := h.Reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" && err != nil {
			return Command{}, err
		}

		clean, serr := h.MaxInputSize.Clean(line)
		if serr == nil {
			var cmd Command
			cmd, serr = decodeCommand(clean)
			if serr == nil {
				return cmd, nil
			}
		}
		if encErr := h.Encoder.Encode(jsonMessage{Type: "error", Error: serr.Error()}); encErr != nil {
			return Command{}, encErr
		}
		if err != nil {
			return Command{}, err
		}
	}
}

// decodeCommand accepts {"command":"goto","index":2}, a JSON string, or plain shorthand.
// JSON indexes are 0-based.
func decodeCommand(line string) (Command, error) {
	switch {
	case strings.HasPrefix(line, "{"):
		var cmd Command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			return Command{}, fmt.Errorf("invalid command object: %w", err)
		}
		switch cmd.Kind {
		case CommandNext, CommandPrev, CommandGoTo, CommandClose:
			return cmd, nil
		}
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	case strings.HasPrefix(line, `"`):
		var s string
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return Command{}, fmt.Errorf("invalid command string: %w", err)
		}
		return ParseCommand(s)
	}
	return ParseCommand(line)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonMessage{Type: "system", Message: msg})
}
