package actions

import (
	"context"

	"github.com/funcscaffold/funcscaffold/internal/templates"
	"github.com/funcscaffold/funcscaffold/internal/wizard"
)

// JobPriority orders job execution after local settings and v1 function
// creation.
const JobPriority = 220

// JobStep runs one template job as a wizard execute step.
type JobStep struct {
	interp   *Interpreter
	tmpl     *templates.FunctionTemplate
	job      *templates.ParsedJob
	priority int
}

// NewJobStep wraps job as an execute step with the given priority.
func NewJobStep(interp *Interpreter, tmpl *templates.FunctionTemplate, job *templates.ParsedJob, priority int) *JobStep {
	return &JobStep{interp: interp, tmpl: tmpl, job: job, priority: priority}
}

func (s *JobStep) Priority() int { return s.priority }

// ShouldExecute applies the job's condition, if any.
func (s *JobStep) ShouldExecute(wctx *wizard.Context) bool {
	return ConditionMet(s.job.Condition, wctx)
}

func (s *JobStep) Execute(ctx context.Context, wctx *wizard.Context) error {
	return s.interp.RunJob(ctx, s.tmpl, s.job, wctx)
}

// ConditionMet reports whether a job condition holds: the named context
// value must be present when HasValue is set and absent otherwise. A nil
// condition always holds.
func ConditionMet(cond *templates.JobCondition, wctx *wizard.Context) bool {
	if cond == nil || cond.Name == "" {
		return true
	}
	return wctx.Has(wizard.ParseKey(cond.Name)) == cond.HasValue
}
