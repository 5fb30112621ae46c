// Package processor provides the stages of the relay pipeline and the function chaining them.
package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/webhook-relay/internal/relay"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// Processor is an interface that defines a method to advance a relay bus by one stage.
type Processor interface {
	SetLogger(logger *slog.Logger)
	Process(ctx context.Context, bus *relay.Bus) error
}

// Process runs the processors in order. The first error is terminal: the bus is marked as failed
// and the remaining processors are skipped.
func Process(ctx context.Context, logger *slog.Logger, bus *relay.Bus, processors ...Processor) error {
	for _, p := range processors {
		p.SetLogger(logger)
		if err := p.Process(ctx, bus); err != nil {
			bus.Stage = relay.Failed
			return err
		}
	}
	return nil
}

// Pipeline returns the relay stages in execution order: decode, build, dispatch.
func Pipeline(doer Doer, opts ...Option) []Processor {
	return []Processor{
		NewDecoderProcessor(opts...),
		NewBuilderProcessor(opts...),
		NewDispatcherProcessor(doer, opts...),
	}
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}
