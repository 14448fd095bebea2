package prompt

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Terminal{in: bufio.NewReader(strings.NewReader(input)), out: out}, out
}

func TestTerminalLine_TrimsInput(t *testing.T) {
	term, out := newTestTerminal("  hello world  \n")

	got, err := term.Line("name")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, out.String(), "name: ")
}

func TestTerminalLine_EOF(t *testing.T) {
	term, _ := newTestTerminal("")
	_, err := term.Line("name")
	assert.Error(t, err)
}

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"whatever\n", false},
	}
	for _, tt := range tests {
		term, _ := newTestTerminal(tt.input)
		got, err := term.Confirm("sure?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestTerminalChoice_RetriesUntilValid(t *testing.T) {
	term, out := newTestTerminal("0\nabc\n2\n")

	got, err := term.Choice("pick one", []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, "beta", got)
	assert.Contains(t, out.String(), "1) alpha")
	assert.Contains(t, out.String(), "enter a number between 1 and 2")
}

func TestTerminalPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("s3cr3t"), nil }
	defer func() { readPassword = orig }()

	term, out := newTestTerminal("")
	got, err := term.Password("password")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got)
	assert.Contains(t, out.String(), "password: ")
}

func TestScripted_ReplaysInOrder(t *testing.T) {
	s := &Scripted{Answers: []string{"alice", "s3cr3t", "y", "2"}}

	line, err := s.Line("user")
	require.NoError(t, err)
	assert.Equal(t, "alice", line)

	pw, err := s.Password("password")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", pw)

	ok, err := s.Confirm("store?")
	require.NoError(t, err)
	assert.True(t, ok)

	choice, err := s.Choice("pick", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", choice)

	_, err = s.Line("exhausted")
	assert.ErrorIs(t, err, io.EOF)
}
