// Package prompt abstracts interactive terminal input so command flows can be
// driven by scripted answers in tests.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for input. Implementations must tolerate EOF by
// returning an error rather than blocking.
type Prompter interface {
	// Line prints the label and reads one trimmed line.
	Line(label string) (string, error)
	// Password prints the label and reads a line without echo.
	Password(label string) (string, error)
	// Confirm asks a yes/no question. Empty input means no.
	Confirm(label string) (bool, error)
	// Choice asks to pick one of options by number, returning the option.
	Choice(label string, options []string) (string, error)
}

// readPassword is a seam for tests.
var readPassword = term.ReadPassword

// Terminal prompts on an io.Writer and reads from a buffered reader,
// defaulting to stdin/stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (t *Terminal) Line(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func (t *Terminal) Confirm(label string) (bool, error) {
	answer, err := t.Line(label + " [y/N]")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (t *Terminal) Choice(label string, options []string) (string, error) {
	fmt.Fprintln(t.out, label)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
	}
	for {
		answer, err := t.Line("select")
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintf(t.out, "enter a number between 1 and %d\n", len(options))
			continue
		}
		return options[n-1], nil
	}
}

// Scripted replays canned answers in order. It is the test double used across
// packages that drive interactive flows.
type Scripted struct {
	Answers []string
	next    int
}

func (s *Scripted) pop() (string, error) {
	if s.next >= len(s.Answers) {
		return "", io.EOF
	}
	a := s.Answers[s.next]
	s.next++
	return a, nil
}

func (s *Scripted) Line(string) (string, error)     { return s.pop() }
func (s *Scripted) Password(string) (string, error) { return s.pop() }

func (s *Scripted) Confirm(string) (bool, error) {
	a, err := s.pop()
	if err != nil {
		return false, err
	}
	a = strings.ToLower(a)
	return a == "y" || a == "yes", nil
}

func (s *Scripted) Choice(_ string, options []string) (string, error) {
	a, err := s.pop()
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(a); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return a, nil
}
