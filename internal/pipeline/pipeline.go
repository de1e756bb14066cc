package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// RunPhases executes all pipeline phases sequentially.
//
// A phase error aborts the run; ErrConfirmationDeclined is surfaced
// unchanged so callers can exit cleanly instead of reporting a failure.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting pipeline with %d phases...", len(phases))
	runsTotal.WithLabelValues("started").Inc()

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		LogPhaseStart(ctx.Observer, name)

		if err := phase.Run(ctx); err != nil {
			if errors.Is(err, ErrConfirmationDeclined) {
				ctx.Observer.Printf("[%s] aborted: %v", name, err)
				runsTotal.WithLabelValues("declined").Inc()
				return err
			}
			LogPhaseFailed(ctx.Observer, name, err)
			runsTotal.WithLabelValues("failed").Inc()
			phaseFailures.WithLabelValues(phase.Name()).Inc()
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	}

	runsTotal.WithLabelValues("completed").Inc()
	ctx.Observer.Printf("Pipeline completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
