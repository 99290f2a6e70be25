package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jsamuelsen/quizboard/internal/ports"
)

// promptConfirmer asks on out and reads a y/N answer from in.
// Anything but y or yes, including end of input, declines.
func promptConfirmer(in io.Reader, out io.Writer) ports.ConfirmFunc {
	reader := bufio.NewReader(in)

	return func(_ context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s (y/N): ", prompt)

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			if errors.Is(err, io.EOF) {
				return false, nil
			}

			return false, fmt.Errorf("reading answer: %w", err)
		}

		input = strings.TrimSpace(strings.ToLower(input))

		return input == "y" || input == "yes", nil
	}
}
