package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"", Command{Kind: CommandNext}},
		{"n", Command{Kind: CommandNext}},
		{"NEXT", Command{Kind: CommandNext}},
		{"p", Command{Kind: CommandPrev}},
		{"back", Command{Kind: CommandPrev}},
		{"g 1", Command{Kind: CommandGoTo, Index: 0}},
		{"goto 4", Command{Kind: CommandGoTo, Index: 3}},
		{"g -2", Command{Kind: CommandGoTo, Index: -3}},
		{"s", Command{Kind: CommandClose}},
		{"quit", Command{Kind: CommandClose}},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.input)
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"x", "g", "g two", "g 1 2"} {
		_, err := ParseCommand(bad)
		assert.ErrorIs(t, err, ErrUnknownCommand, bad)
	}
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := decodeCommand(`{"command":"prev"}`)
	assert.NoError(t, err)
	assert.Equal(t, CommandPrev, cmd.Kind)

	cmd, err = decodeCommand(`"g 2"`)
	assert.NoError(t, err)
	assert.Equal(t, Command{Kind: CommandGoTo, Index: 1}, cmd)

	_, err = decodeCommand(`{"command":"fly"}`)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
