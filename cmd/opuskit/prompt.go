package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// stdinIsInteractive reports whether prompts can expect a human answer.
func stdinIsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptLine prints the prompt and reads one trimmed line. io.EOF surfaces
// when stdin closes.
func promptLine(reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptChoice keeps asking until the answer is one of the allowed values
// (compared case-insensitively).
func promptChoice(reader *bufio.Reader, out io.Writer, prompt string, allowed ...string) (string, error) {
	for {
		answer, err := promptLine(reader, out, prompt)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		for _, candidate := range allowed {
			if answer == candidate {
				return answer, nil
			}
		}
		fmt.Fprintf(out, "Please answer one of: %s\n", strings.Join(allowed, ", "))
	}
}
