package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind is a walker action.
type CommandKind string

const (
	CommandNext  CommandKind = "next"
	CommandPrev  CommandKind = "prev"
	CommandGoTo  CommandKind = "goto"
	CommandClose CommandKind = "close"
)

// Command is a parsed user action. Index is 0-based and only used by CommandGoTo.
type Command struct {
	Kind  CommandKind `json:"command"`
	Index int         `json:"index,omitempty"`
}

var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand reads the text shorthand:
//
//	n, next, <enter>   next step
//	p, prev, back      previous step
//	g N, goto N        jump to step N (1-based, as displayed)
//	s, skip, q, quit   close the tour
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Kind: CommandNext}, nil
	}

	switch fields[0] {
	case "n", "next":
		return Command{Kind: CommandNext}, nil
	case "p", "prev", "back":
		return Command{Kind: CommandPrev}, nil
	case "s", "skip", "q", "quit", "close", "exit":
		return Command{Kind: CommandClose}, nil
	case "g", "goto":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: goto needs a step number", ErrUnknownCommand)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: invalid step number %q", ErrUnknownCommand, fields[1])
		}
		return Command{Kind: CommandGoTo, Index: n - 1}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}
