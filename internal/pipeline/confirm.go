package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// PromptConfirmer asks the operator interactively. It is the default
// mechanism behind the pipeline's confirmation gate; AutoConfirmer
// satisfies the same gate non-interactively.
type PromptConfirmer struct{}

// NewPromptConfirmer creates an interactive confirmer.
func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{}
}

// Confirm implements the Confirmer interface. Without a terminal on
// stdin there is nobody to ask, so it refuses rather than guessing.
func (c *PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; re-run with --yes")
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Proceed").
				Negative("Abort").
				Value(&confirmed),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return confirmed, nil
}

// AutoConfirmer answers every confirmation affirmatively. Used for
// --yes and for tests.
type AutoConfirmer struct{}

// Confirm implements the Confirmer interface.
func (AutoConfirmer) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
