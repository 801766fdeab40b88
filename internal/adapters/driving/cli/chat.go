// Package cli provides the interactive terminal front end to the
// scan-findings assistant.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
)

// Chat is an interactive question loop over one session. Each answer is
// followed by the steering signals that produced it.
type Chat struct {
	assistant driving.AssistantService
	in        io.Reader
	out       io.Writer
}

// NewChat creates a Chat reading questions from in and writing to out
func NewChat(assistant driving.AssistantService, in io.Reader, out io.Writer) *Chat {
	return &Chat{assistant: assistant, in: in, out: out}
}

// Run opens a session and loops until EOF, "exit" or "quit".
func (c *Chat) Run(ctx context.Context) error {
	session, err := c.assistant.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "Ask a question (or 'exit'): ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}

		result, err := c.assistant.Ask(ctx, session.ID, question)
		if err != nil {
			fmt.Fprintf(c.out, "\nError: %v\n\n", err)
			continue
		}

		fmt.Fprintln(c.out, "\nAnswer:")
		fmt.Fprintln(c.out, result.Answer)

		fmt.Fprintln(c.out, "\n--- RL SIGNALS ---")
		fmt.Fprintf(c.out, "Detected intent   : %s\n", result.Intent)

		policy := result.Instructions
		if policy == "" {
			policy = "Baseline (no policy)"
		}
		fmt.Fprintf(c.out, "Applied policy    : %s\n", policy)

		if result.Reward == nil {
			fmt.Fprintln(c.out, "Reward score      : N/A (baseline)")
			fmt.Fprintln(c.out, "Reward breakdown  : N/A")
		} else {
			fmt.Fprintf(c.out, "Reward score      : %.2f\n", *result.Reward)
			fmt.Fprintf(c.out, "Reward breakdown  : C=%.2f H=%.2f V=%.2f\n",
				result.Components.C, result.Components.H, result.Components.V)
		}

		fmt.Fprintln(c.out)
	}
}
