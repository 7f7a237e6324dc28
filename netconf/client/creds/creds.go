// Package creds implements the injectable credential-prompt capability
// called for by the client connector module: when an SSH client
// configuration needs a password or a keyboard-interactive answer that
// isn't known up front, something has to obtain it, and that something
// must be swappable between "ask the controlling terminal" and "answer
// from a script" for tests. See golang.org/x/crypto/ssh.Password and
// ssh.KeyboardInteractive for the callback shapes this package feeds.
package creds

import (
	"fmt"
	"io"

	"golang.org/x/term"

	"golang.org/x/crypto/ssh"
)

// PasswordPrompter obtains a password for user connecting to target.
type PasswordPrompter interface {
	Password(user, target string) (string, error)
}

// KeyboardInteractivePrompter answers a keyboard-interactive challenge.
type KeyboardInteractivePrompter interface {
	Answers(user, instruction string, questions []string, echos []bool) ([]string, error)
}

// Prompter implements both credential-prompt callbacks.
type Prompter interface {
	PasswordPrompter
	KeyboardInteractivePrompter
}

// PasswordCallback adapts a PasswordPrompter to the
// ssh.ClientConfig.Auth PasswordCallback shape for user connecting to
// target.
func PasswordCallback(p PasswordPrompter, user, target string) func() (string, error) {
	return func() (string, error) {
		return p.Password(user, target)
	}
}

// KeyboardInteractiveCallback adapts a KeyboardInteractivePrompter to
// ssh.KeyboardInteractiveChallenge for user connecting to target.
func KeyboardInteractiveCallback(p KeyboardInteractivePrompter, user, target string) ssh.KeyboardInteractiveChallenge {
	return func(name, instruction string, questions []string, echos []bool) ([]string, error) {
		return p.Answers(user, instruction, questions, echos)
	}
}

// Terminal is the default Prompter: it reads from a controlling
// terminal, echoing keyboard-interactive answers only when the server
// says the question itself should be echoed.
type Terminal struct {
	In  io.Reader
	Out io.Writer
	// Fd is the file descriptor backing In, used to switch the terminal
	// to raw mode while reading a password. It is ignored (answers are
	// read as plain lines) when it is not a real terminal.
	Fd int
}

// Password implements PasswordPrompter by reading one line from the
// controlling terminal with echo disabled, in the style of an SSH
// client CLI password prompt.
func (t *Terminal) Password(user, target string) (string, error) {
	fmt.Fprintf(t.Out, "%s@%s's password: ", user, target)
	defer fmt.Fprintln(t.Out)

	if term.IsTerminal(t.Fd) {
		b, err := term.ReadPassword(t.Fd)
		return string(b), err
	}

	var line string
	_, err := fmt.Fscanln(t.In, &line)
	return line, err
}

// Answers implements KeyboardInteractivePrompter, printing instruction
// and each question, reading one line of response per question. A
// question flagged not to echo is read the same way Password is.
func (t *Terminal) Answers(user, instruction string, questions []string, echos []bool) ([]string, error) {
	if instruction != "" {
		fmt.Fprintln(t.Out, instruction)
	}

	answers := make([]string, len(questions))
	for i, q := range questions {
		fmt.Fprintf(t.Out, "%s", q)
		if i < len(echos) && !echos[i] && term.IsTerminal(t.Fd) {
			b, err := term.ReadPassword(t.Fd)
			fmt.Fprintln(t.Out)
			if err != nil {
				return nil, err
			}
			answers[i] = string(b)
			continue
		}
		var line string
		if _, err := fmt.Fscanln(t.In, &line); err != nil {
			return nil, err
		}
		answers[i] = line
	}
	return answers, nil
}

// Scripted is a Prompter for tests: it returns canned answers instead
// of touching a terminal.
type Scripted struct {
	PasswordAnswer string
	PasswordErr    error
	InteractiveAnswers []string
	InteractiveErr     error
}

// Password returns s.PasswordAnswer/s.PasswordErr, ignoring user/target.
func (s *Scripted) Password(_, _ string) (string, error) {
	return s.PasswordAnswer, s.PasswordErr
}

// Answers returns s.InteractiveAnswers/s.InteractiveErr, ignoring its
// arguments; callers typically script one answer per expected question.
func (s *Scripted) Answers(_, _ string, _ []string, _ []bool) ([]string, error) {
	return s.InteractiveAnswers, s.InteractiveErr
}
