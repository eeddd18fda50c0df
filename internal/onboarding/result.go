package onboarding

import (
	"strings"

	"github.com/samber/lo"

	dErrors "kayit/pkg/domain-errors"
)

// Step names a creation stage.
type Step string

const (
	StepCustomer      Step = "customer"
	StepAddress       Step = "address"
	StepCommunication Step = "communication"
	StepContact       Step = "contact"
)

// plural is the name used when listing failed categories.
func (s Step) plural() string {
	switch s {
	case StepAddress:
		return "addresses"
	case StepCommunication:
		return "communications"
	case StepContact:
		return "contacts"
	}
	return string(s)
}

// StepOutcome records one attempted creation. Index is the position within
// the step's collection and is zero for the customer.
type StepOutcome struct {
	Step      Step   `json:"step"`
	Index     int    `json:"index"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Status is the aggregate result of a submission.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// Result is the full account of a submission. CustomerCode is set exactly
// when the customer step succeeded.
type Result struct {
	SubmissionID string        `json:"submissionId"`
	Status       Status        `json:"status"`
	Code         dErrors.Code  `json:"code,omitempty"`
	CustomerCode string        `json:"customerCode,omitempty"`
	Message      string        `json:"message"`
	Outcomes     []StepOutcome `json:"outcomes"`
}

// Failed returns the failed outcomes in step order.
func (r Result) Failed() []StepOutcome {
	return lo.Filter(r.Outcomes, func(o StepOutcome, _ int) bool { return !o.Succeeded })
}

// finish derives Status and Message from the recorded outcomes.
func (r *Result) finish() {
	if r.CustomerCode == "" {
		r.Status = StatusFailed
		cause := "unknown error"
		if failed := r.Failed(); len(failed) > 0 && failed[0].Error != "" {
			cause = failed[0].Error
		}
		r.Message = "customer could not be created: " + cause
		return
	}
	failed := r.Failed()
	if len(failed) == 0 {
		r.Status = StatusCompleted
		r.Message = "customer created"
		return
	}
	r.Status = StatusPartial
	steps := lo.Uniq(lo.Map(failed, func(o StepOutcome, _ int) string { return o.Step.plural() }))
	r.Message = "customer created; failed: " + strings.Join(steps, ", ")
}
