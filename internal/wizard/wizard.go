package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// State is the lifecycle position of a Wizard.
type State int

const (
	StateIdle State = iota
	StatePrompting
	StateExecuting
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrompting:
		return "prompting"
	case StateExecuting:
		return "executing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options holds the initial step lists.
type Options struct {
	PromptSteps  []PromptStep
	ExecuteSteps []ExecuteStep
	Logger       *slog.Logger
}

// Wizard runs Prompt and then Execute over one Context.
type Wizard struct {
	wctx     *Context
	queue    []PromptStep
	execute  []ExecuteStep
	state    State
	prompted bool
	log      *slog.Logger
}

// New returns a Wizard in the idle state.
func New(wctx *Context, opts Options) *Wizard {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Wizard{
		wctx:    wctx,
		queue:   append([]PromptStep(nil), opts.PromptSteps...),
		execute: append([]ExecuteStep(nil), opts.ExecuteSteps...),
		log:     log,
	}
}

// Context returns the wizard's context.
func (w *Wizard) Context() *Context { return w.wctx }

// State returns the current lifecycle state.
func (w *Wizard) State() State { return w.state }

// Prompt runs every prompt step, expanding sub-wizards depth first. A
// cancellation stops the wizard at once; effects already committed by
// earlier prompts are left in place.
func (w *Wizard) Prompt(ctx context.Context) error {
	if w.state != StateIdle {
		return fmt.Errorf("wizard: Prompt called in state %s", w.state)
	}
	w.state = StatePrompting

	for len(w.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return w.fail(err)
		}

		step := w.queue[0]
		w.queue = w.queue[1:]

		if !step.ShouldPrompt(w.wctx) {
			continue
		}
		if err := step.Prompt(ctx, w.wctx); err != nil {
			return w.fail(err)
		}

		provider, ok := step.(SubWizardProvider)
		if !ok {
			continue
		}
		sub, err := provider.SubWizard(ctx, w.wctx)
		if err != nil {
			return w.fail(err)
		}
		if sub == nil {
			continue
		}
		if len(sub.PromptSteps) > 0 {
			queue := make([]PromptStep, 0, len(sub.PromptSteps)+len(w.queue))
			queue = append(queue, sub.PromptSteps...)
			w.queue = append(queue, w.queue...)
		}
		w.execute = append(w.execute, sub.ExecuteSteps...)
		w.log.Debug("sub-wizard expanded", "promptSteps", len(sub.PromptSteps), "executeSteps", len(sub.ExecuteSteps))
	}

	w.prompted = true
	return nil
}

// Execute runs the accumulated execute steps in ascending priority order.
func (w *Wizard) Execute(ctx context.Context) error {
	if !w.prompted || w.state != StatePrompting {
		return fmt.Errorf("wizard: Execute called in state %s before a completed Prompt", w.state)
	}
	w.state = StateExecuting

	steps := w.ExecuteSteps()
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return w.fail(err)
		}
		if !step.ShouldExecute(w.wctx) {
			continue
		}
		if err := step.Execute(ctx, w.wctx); err != nil {
			return w.fail(err)
		}
	}

	w.state = StateDone
	return nil
}

// ExecuteSteps returns the discovered execute steps in the order Execute
// will consider them.
func (w *Wizard) ExecuteSteps() []ExecuteStep {
	steps := append([]ExecuteStep(nil), w.execute...)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Priority() < steps[j].Priority()
	})
	return steps
}

func (w *Wizard) fail(err error) error {
	if IsCancelled(err) {
		w.state = StateCancelled
		w.log.Debug("wizard cancelled")
		return err
	}
	w.state = StateFailed
	return err
}
