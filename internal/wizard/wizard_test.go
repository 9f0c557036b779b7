package wizard

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// recorder collects the order in which steps ran.
type recorder struct {
	events []string
}

func (r *recorder) add(e string) { r.events = append(r.events, e) }

type fakePrompt struct {
	name         string
	rec          *recorder
	skip         bool
	err          error
	sub          *SubWizard
	subCalled    bool
	promptCalled bool
}

func (p *fakePrompt) ShouldPrompt(*Context) bool { return !p.skip }

func (p *fakePrompt) Prompt(_ context.Context, wctx *Context) error {
	p.promptCalled = true
	p.rec.add("prompt:" + p.name)
	if p.err != nil {
		return p.err
	}
	wctx.SetString(SettingKey(p.name), "answered")
	return nil
}

func (p *fakePrompt) SubWizard(context.Context, *Context) (*SubWizard, error) {
	p.subCalled = true
	return p.sub, nil
}

type fakeExecute struct {
	name     string
	priority int
	rec      *recorder
	skip     bool
	err      error
}

func (e *fakeExecute) Priority() int               { return e.priority }
func (e *fakeExecute) ShouldExecute(*Context) bool { return !e.skip }

func (e *fakeExecute) Execute(context.Context, *Context) error {
	e.rec.add("execute:" + e.name)
	return e.err
}

func TestWizard_SkippedStepIsNeverPromptedOrExpanded(t *testing.T) {
	rec := &recorder{}
	skipped := &fakePrompt{
		name: "skipped",
		rec:  rec,
		skip: true,
		sub:  &SubWizard{ExecuteSteps: []ExecuteStep{&fakeExecute{name: "hidden", rec: rec}}},
	}
	w := New(NewContext("", "", ""), Options{PromptSteps: []PromptStep{skipped}})

	if err := w.Prompt(context.Background()); err != nil {
		t.Fatalf("Prompt() error: %v", err)
	}
	if skipped.promptCalled || skipped.subCalled {
		t.Errorf("skipped step: prompt=%v subWizard=%v, want neither", skipped.promptCalled, skipped.subCalled)
	}
	if err := w.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.events)
	}
}

func TestWizard_PriorityOrderIgnoresDiscoveryOrder(t *testing.T) {
	for _, order := range [][2]int{{210, 190}, {190, 210}} {
		rec := &recorder{}
		first := &fakePrompt{name: "a", rec: rec, sub: &SubWizard{
			ExecuteSteps: []ExecuteStep{&fakeExecute{name: "p", priority: order[0], rec: rec}},
		}}
		second := &fakePrompt{name: "b", rec: rec, sub: &SubWizard{
			ExecuteSteps: []ExecuteStep{&fakeExecute{name: "q", priority: order[1], rec: rec}},
		}}

		w := New(NewContext("", "", ""), Options{PromptSteps: []PromptStep{first, second}})
		if err := w.Prompt(context.Background()); err != nil {
			t.Fatalf("Prompt() error: %v", err)
		}
		if err := w.Execute(context.Background()); err != nil {
			t.Fatalf("Execute() error: %v", err)
		}

		steps := w.ExecuteSteps()
		if steps[0].Priority() != 190 || steps[1].Priority() != 210 {
			t.Errorf("discovery %v: priorities = [%d %d], want [190 210]", order, steps[0].Priority(), steps[1].Priority())
		}
		if w.State() != StateDone {
			t.Errorf("State() = %s, want done", w.State())
		}
	}
}

func TestWizard_EqualPrioritiesKeepDiscoveryOrder(t *testing.T) {
	rec := &recorder{}
	w := New(NewContext("", "", ""), Options{
		ExecuteSteps: []ExecuteStep{
			&fakeExecute{name: "one", priority: 200, rec: rec},
			&fakeExecute{name: "early", priority: 100, rec: rec},
			&fakeExecute{name: "two", priority: 200, rec: rec},
			&fakeExecute{name: "three", priority: 200, rec: rec},
		},
	})
	if err := w.Prompt(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"execute:early", "execute:one", "execute:two", "execute:three"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestWizard_SubWizardIsDepthFirst(t *testing.T) {
	rec := &recorder{}
	grandchild := &fakePrompt{name: "grandchild", rec: rec}
	child := &fakePrompt{name: "child", rec: rec, sub: &SubWizard{PromptSteps: []PromptStep{grandchild}}}
	sibling := &fakePrompt{name: "child2", rec: rec}
	root := &fakePrompt{name: "root", rec: rec, sub: &SubWizard{PromptSteps: []PromptStep{child, sibling}}}
	last := &fakePrompt{name: "last", rec: rec}

	w := New(NewContext("", "", ""), Options{PromptSteps: []PromptStep{root, last}})
	if err := w.Prompt(context.Background()); err != nil {
		t.Fatalf("Prompt() error: %v", err)
	}

	want := []string{"prompt:root", "prompt:child", "prompt:grandchild", "prompt:child2", "prompt:last"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if !w.Context().Has(SettingKey("grandchild")) {
		t.Error("sub-wizard prompt did not write to the shared context")
	}
}

func TestWizard_CancellationHaltsEverything(t *testing.T) {
	rec := &recorder{}
	before := &fakePrompt{name: "before", rec: rec, sub: &SubWizard{
		ExecuteSteps: []ExecuteStep{&fakeExecute{name: "never", priority: 1, rec: rec}},
	}}
	cancel := &fakePrompt{name: "cancel", rec: rec, err: ErrUserCancelled}
	after := &fakePrompt{name: "after", rec: rec}

	w := New(NewContext("", "", ""), Options{PromptSteps: []PromptStep{before, cancel, after}})
	err := w.Prompt(context.Background())
	if !errors.Is(err, ErrUserCancelled) {
		t.Fatalf("Prompt() error = %v, want ErrUserCancelled", err)
	}
	if w.State() != StateCancelled {
		t.Errorf("State() = %s, want cancelled", w.State())
	}
	if after.promptCalled {
		t.Error("steps after the cancellation must not run")
	}
	if err := w.Execute(context.Background()); err == nil {
		t.Error("Execute after cancellation should fail")
	}
	want := []string{"prompt:before", "prompt:cancel"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestWizard_ExecuteFailureStops(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("disk full")
	w := New(NewContext("", "", ""), Options{
		ExecuteSteps: []ExecuteStep{
			&fakeExecute{name: "a", priority: 1, rec: rec},
			&fakeExecute{name: "b", priority: 2, rec: rec, err: boom},
			&fakeExecute{name: "c", priority: 3, rec: rec},
			&fakeExecute{name: "skip", priority: 0, rec: rec, skip: true},
		},
	})
	if err := w.Prompt(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want %v", err, boom)
	}
	if w.State() != StateFailed {
		t.Errorf("State() = %s, want failed", w.State())
	}
	want := []string{"execute:a", "execute:b"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestWizard_CallOrderIsEnforced(t *testing.T) {
	w := New(NewContext("", "", ""), Options{})
	if err := w.Execute(context.Background()); err == nil {
		t.Error("Execute before Prompt should fail")
	}
	if err := w.Prompt(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Prompt(context.Background()); err == nil {
		t.Error("second Prompt should fail")
	}
	if err := w.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(context.Background()); err == nil {
		t.Error("second Execute should fail")
	}
}

func TestWizard_ContextCancellation(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(NewContext("", "", ""), Options{PromptSteps: []PromptStep{&fakePrompt{name: "x", rec: rec}}})
	if err := w.Prompt(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt() error = %v, want context.Canceled", err)
	}
	if w.State() != StateFailed {
		t.Errorf("State() = %s, want failed", w.State())
	}
}
