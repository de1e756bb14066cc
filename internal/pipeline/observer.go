package pipeline

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during a
// pipeline run.
type Observer interface {
	Logger // Embeds Logger for plain progress lines

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured pipeline event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "generate", "cleanup")
	Message   string            // Human-readable message
	Node      string            // Node name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventPhaseStarted indicates a pipeline phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a pipeline phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a pipeline phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventArtifactCreated indicates a node artifact was generated for the first time.
	EventArtifactCreated EventType = "artifact.created"
	// EventArtifactUpdated indicates a node artifact was regenerated with new content.
	EventArtifactUpdated EventType = "artifact.updated"
	// EventArtifactDeleted indicates an undeclared node's artifact was removed.
	EventArtifactDeleted EventType = "artifact.deleted"

	// EventDecommissionStage indicates a stale node advanced a decommission stage.
	EventDecommissionStage EventType = "decommission.stage"
	// EventDecommissionSkipped indicates a decommission transition was already satisfied.
	EventDecommissionSkipped EventType = "decommission.skipped"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"

	// EventDryRun indicates an action that was computed but not issued.
	EventDryRun EventType = "dryrun.would"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// LogrObserver implements Observer on top of a logr.Logger.
type LogrObserver struct {
	logger        logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates an observer that writes human-readable
// lines through the standard log package via a funcr-backed logr sink.
func NewConsoleObserver() *LogrObserver {
	logger := funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s %s", prefix, args)
			return
		}
		log.Print(args)
	}, funcr.Options{})

	return NewLogrObserver(logger)
}

// NewLogrObserver creates an observer over an existing logr.Logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

// Printf implements the Logger interface.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...), o.fieldPairs()...)
}

// Event implements the Observer interface.
func (o *LogrObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	keysAndValues := []interface{}{"event", string(event.Type)}
	if event.Phase != "" {
		keysAndValues = append(keysAndValues, "phase", event.Phase)
	}
	if event.Node != "" {
		keysAndValues = append(keysAndValues, "node", event.Node)
	}
	for k, v := range event.Fields {
		keysAndValues = append(keysAndValues, k, v)
	}
	keysAndValues = append(keysAndValues, o.fieldPairs()...)

	o.logger.Info(event.Message, keysAndValues...)
}

// Progress implements the Observer interface.
func (o *LogrObserver) Progress(phase string, current, total int) {
	if total == 0 {
		o.Printf("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	percentage := (current * 100) / total
	o.Printf("[%s] Progress: %d/%d (%d%%)", phase, current, total, percentage)
}

// WithFields implements the Observer interface.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &LogrObserver{
		logger:        o.logger,
		contextFields: newFields,
	}
}

func (o *LogrObserver) fieldPairs() []interface{} {
	if len(o.contextFields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(o.contextFields))
	for k := range o.contextFields {
		keys = append(keys, k)
	}
	// Stable output keeps log lines diffable.
	sort.Strings(keys)

	pairs := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, o.contextFields[k])
	}
	return pairs
}

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogDryRun logs an action that dry-run mode suppressed.
func LogDryRun(observer Observer, phase, node, action string) {
	observer.Event(Event{
		Type:    EventDryRun,
		Phase:   phase,
		Node:    node,
		Message: fmt.Sprintf("would %s", action),
	})
}

// FormatFields renders a field map the way events do, for prompts and
// plans that want matching output.
func FormatFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
