package errack

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/remiges-tech/errack/errack/pg/errsqlc"
)

// AckRule decides which unacknowledged errors of one error type no longer need
// attention. AckReason is written to the audit report of every error it selects.
type AckRule interface {
	ErrorType() string
	FindErrorsToAck(ctx context.Context, q errsqlc.Querier) ([]ExecutionErrorInfo, error)
	AckReason() string
}

// FindFunc runs the eligibility query of a rule. It is called inside the
// acknowledgment transaction.
type FindFunc func(ctx context.Context, q errsqlc.Querier) ([]errsqlc.Executionerrorinfo, error)

type rule struct {
	errorType string
	reason    string
	find      FindFunc
}

// NewRule builds an AckRule from an error type, its reason text and its query.
func NewRule(errorType, reason string, find FindFunc) AckRule {
	return &rule{errorType: errorType, reason: reason, find: find}
}

func (r *rule) ErrorType() string {
	return r.errorType
}

func (r *rule) AckReason() string {
	return r.reason
}

func (r *rule) FindErrorsToAck(ctx context.Context, q errsqlc.Querier) ([]ExecutionErrorInfo, error) {
	rows, err := r.find(ctx, q)
	if err != nil {
		return nil, err
	}
	errs := make([]ExecutionErrorInfo, 0, len(rows))
	for _, row := range rows {
		errs = append(errs, errorInfoFromRow(row))
	}
	return errs, nil
}

const (
	JobAckReason     = "Jobs that previously failed but now are in one of the statuses - queued, completed or cancelled"
	ProcessAckReason = "Process instances that previously failed but now are in one of the statuses - completed or aborted"
	TaskAckReason    = "Tasks that previously failed but now are in one of the statuses - completed, exited or obsolete"
)

// JobAckStatuses are the job statuses that make a job error obsolete. RETRYING is
// not included: the retry has not succeeded yet.
var JobAckStatuses = []JobStatus{JobStatusDone, JobStatusCancelled, JobStatusQueued}

// ProcessAckStates are the process instance states that make a process error obsolete.
var ProcessAckStates = []ProcessState{ProcessStateCompleted, ProcessStateAborted}

// TaskAckStatuses are the task statuses that make a task error obsolete.
var TaskAckStatuses = []TaskStatus{TaskStatusCompleted, TaskStatusExited, TaskStatusObsolete}

// JobRule acknowledges job errors whose job is done, cancelled or queued again.
func JobRule() AckRule {
	statuses := make([]string, 0, len(JobAckStatuses))
	for _, s := range JobAckStatuses {
		statuses = append(statuses, string(s))
	}
	return NewRule(ErrorTypeJob, JobAckReason, func(ctx context.Context, q errsqlc.Querier) ([]errsqlc.Executionerrorinfo, error) {
		return q.FindJobErrorsToAck(ctx, errsqlc.FindJobErrorsToAckParams{
			Type:     ErrorTypeJob,
			Statuses: statuses,
		})
	})
}

// ProcessRule acknowledges process errors whose process instance has completed or was aborted.
func ProcessRule() AckRule {
	states := make([]int32, 0, len(ProcessAckStates))
	for _, s := range ProcessAckStates {
		states = append(states, int32(s))
	}
	return NewRule(ErrorTypeProcess, ProcessAckReason, func(ctx context.Context, q errsqlc.Querier) ([]errsqlc.Executionerrorinfo, error) {
		return q.FindProcessErrorsToAck(ctx, errsqlc.FindProcessErrorsToAckParams{
			Type:   ErrorTypeProcess,
			States: states,
		})
	})
}

// TaskRule acknowledges task errors whose task has completed, exited or become obsolete.
func TaskRule() AckRule {
	statuses := make([]string, 0, len(TaskAckStatuses))
	for _, s := range TaskAckStatuses {
		statuses = append(statuses, string(s))
	}
	return NewRule(ErrorTypeTask, TaskAckReason, func(ctx context.Context, q errsqlc.Querier) ([]errsqlc.Executionerrorinfo, error) {
		return q.FindTaskErrorsToAck(ctx, errsqlc.FindTaskErrorsToAckParams{
			Type:     ErrorTypeTask,
			Statuses: statuses,
		})
	})
}

// Registry maps error type discriminators to their ack rules.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]AckRule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]AckRule)}
}

// DefaultRegistry returns a registry holding the job, process and task rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range []AckRule{JobRule(), ProcessRule(), TaskRule()} {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a rule. A second rule for the same error type is rejected so that
// an existing rule is never silently replaced.
func (r *Registry) Register(rule AckRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ErrorType()]; exists {
		return fmt.Errorf("%w: type=%s", ErrRuleAlreadyRegistered, rule.ErrorType())
	}
	r.rules[rule.ErrorType()] = rule
	return nil
}

// Get returns the rule for errorType.
func (r *Registry) Get(errorType string) (AckRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[errorType]
	if !ok {
		return nil, fmt.Errorf("%w: type=%s", ErrRuleNotFound, errorType)
	}
	return rule, nil
}

// Rules returns all registered rules ordered by error type.
func (r *Registry) Rules() []AckRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]AckRule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ErrorType() < rules[j].ErrorType()
	})
	return rules
}
