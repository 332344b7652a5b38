package issue

import (
	"fmt"
	"log/slog"
)

// Parser captures a single submission-kind pipeline (new event, update).
type Parser interface {
	Name() string
	Parse(sub Submission) Result
}

// Registry keeps a mapping from parser names to their implementations.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register adds or replaces a parser implementation.
func (r *Registry) Register(parser Parser) {
	if r.parsers == nil {
		r.parsers = map[string]Parser{}
	}
	r.parsers[parser.Name()] = parser
}

// Resolve returns a parser by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Parser, error) {
	if parser, ok := r.parsers[name]; ok {
		return parser, nil
	}
	return nil, fmt.Errorf("parser %s is not registered", name)
}

// Dispatcher routes submissions to the pipeline selected by their labels.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher wires the parser registry.
func NewDispatcher(reg *Registry, log *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, logger: log}
}

// Parse picks the update pipeline when the update label is present, the
// new-event pipeline otherwise.
func (d *Dispatcher) Parse(sub Submission) (Result, error) {
	if d.registry == nil {
		return Result{}, fmt.Errorf("parser registry is not configured")
	}

	name := "new-event"
	if sub.IsUpdate() {
		name = UpdateLabel
	}

	parser, err := d.registry.Resolve(name)
	if err != nil {
		return Result{}, fmt.Errorf("submission %d: %w", sub.Number, err)
	}

	d.debug("parse submission", "number", sub.Number, "pipeline", name)
	result := parser.Parse(sub)
	d.debug("submission parsed", "number", sub.Number, "valid", result.Valid, "errors", len(result.Errors))
	return result, nil
}

func (d *Dispatcher) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
