// Package onboarding holds the customer draft and drives its creation on the
// backend: the customer first, then addresses, communications and contacts.
package onboarding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kayit/internal/backend"
	"kayit/internal/platform/logger"
	"kayit/internal/platform/metrics"
	"kayit/internal/session"
	dErrors "kayit/pkg/domain-errors"
)

// Backend creates customer records.
type Backend interface {
	RegisterCustomer(ctx context.Context, token string, in backend.CustomerCreateRequest) (backend.CustomerCreated, error)
	RegisterAddress(ctx context.Context, token string, in backend.AddressCreateRequest) error
	RegisterCommunication(ctx context.Context, token string, in backend.CommunicationCreateRequest) error
	RegisterContact(ctx context.Context, token string, in backend.ContactCreateRequest) error
}

// SessionView is the part of a registration session a submission needs.
type SessionView interface {
	Token() string
	State() session.State
	Expire(ctx context.Context)
}

// Orchestrator runs submissions.
type Orchestrator struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	newID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) {
		if tp != nil {
			o.tracer = tp.Tracer("kayit/onboarding")
		}
	}
}

// WithIDGenerator sets how submission ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func NewOrchestrator(b Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: b,
		logger:  logger.Discard(),
		tracer:  otel.GetTracerProvider().Tracer("kayit/onboarding"),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type plannedStep struct {
	step  Step
	index int
	call  func(ctx context.Context) error
}

// Submit creates the customer and then every sub-record in order. It never
// returns an error: every problem is an outcome in the Result. A customer
// failure stops the submission; a sub-record failure is recorded and the
// remaining sub-records are still attempted. Nothing is retried or undone.
func (o *Orchestrator) Submit(ctx context.Context, sess SessionView, draft Draft) Result {
	start := time.Now()
	res := Result{SubmissionID: o.newID(), Outcomes: []StepOutcome{}}
	log := o.logger.With("submission_id", res.SubmissionID, "token_fp", logger.Fingerprint(sess.Token()))
	ctx, span := o.tracer.Start(ctx, "onboarding.submit",
		trace.WithAttributes(attribute.String("onboarding.submission_id", res.SubmissionID)),
	)
	defer func() {
		span.SetAttributes(
			attribute.String("onboarding.status", string(res.Status)),
			attribute.Int("onboarding.failed_steps", len(res.Failed())),
		)
		span.End()
		o.metrics.IncOnboardingResult(string(res.Status))
		o.metrics.ObserveSubmit(start)
		log.InfoContext(ctx, "onboarding submission finished",
			"status", res.Status,
			"customer_code", res.CustomerCode,
			"failed_steps", len(res.Failed()),
		)
	}()

	st := sess.State()
	switch st.Status {
	case session.StatusValid:
	case session.StatusExpired:
		o.reject(&res, dErrors.CodeSessionExpired, "session expired")
		return res
	default:
		o.reject(&res, dErrors.CodeSessionInvalid, "session invalid")
		return res
	}

	draft = draft.Normalize()
	if err := Validate(draft); err != nil {
		o.reject(&res, dErrors.CodeOf(err), dErrorMessage(err))
		return res
	}

	token := sess.Token()
	customer := draft.Customer
	if customer.CustomerCode == "" {
		customer.CustomerCode = st.CustomerCode
	}

	created, err := o.backend.RegisterCustomer(ctx, token, CustomerRequest(customer))
	if err != nil {
		o.record(ctx, &res, sess, StepCustomer, 0, err)
		res.Code = codeFor(err)
		res.finish()
		return res
	}
	o.record(ctx, &res, sess, StepCustomer, 0, nil)
	res.CustomerCode = created.CustomerCode
	code := created.CustomerCode

	for _, p := range o.plan(token, code, draft) {
		if err := ctx.Err(); err != nil {
			o.record(ctx, &res, sess, p.step, p.index, err)
			log.WarnContext(ctx, "onboarding submission cancelled", "step", p.step, "index", p.index)
			break
		}
		o.record(ctx, &res, sess, p.step, p.index, p.call(ctx))
	}
	res.finish()
	return res
}

func (o *Orchestrator) plan(token, customerCode string, d Draft) []plannedStep {
	steps := make([]plannedStep, 0, len(d.Addresses)+len(d.Communications)+len(d.Contacts))
	for i, a := range d.Addresses {
		req := AddressRequest(customerCode, a)
		steps = append(steps, plannedStep{StepAddress, i, func(ctx context.Context) error {
			return o.backend.RegisterAddress(ctx, token, req)
		}})
	}
	for i, c := range d.Communications {
		req := CommunicationRequest(customerCode, c)
		steps = append(steps, plannedStep{StepCommunication, i, func(ctx context.Context) error {
			return o.backend.RegisterCommunication(ctx, token, req)
		}})
	}
	for i, c := range d.Contacts {
		req := ContactRequest(customerCode, c)
		steps = append(steps, plannedStep{StepContact, i, func(ctx context.Context) error {
			return o.backend.RegisterContact(ctx, token, req)
		}})
	}
	return steps
}

// record appends an outcome. A backend verdict that the token has expired
// closes the session so later submissions fail fast, but does not stop this one.
func (o *Orchestrator) record(ctx context.Context, res *Result, sess SessionView, step Step, index int, err error) {
	outcome := StepOutcome{Step: step, Index: index, Succeeded: err == nil}
	if err != nil {
		outcome.Error = backend.MessageOf(err)
		outcome.Category = string(backend.CategoryOf(err))
		if backend.CategoryOf(err) == backend.ErrorTokenExpired {
			sess.Expire(ctx)
		}
		o.logger.WarnContext(ctx, "onboarding step failed",
			"submission_id", res.SubmissionID,
			"step", step,
			"index", index,
			"category", outcome.Category,
			"error", err,
		)
	}
	o.metrics.IncOnboardingStep(string(step), outcome.Succeeded)
	res.Outcomes = append(res.Outcomes, outcome)
}

// reject fails the submission before any backend call.
func (o *Orchestrator) reject(res *Result, code dErrors.Code, msg string) {
	res.Outcomes = append(res.Outcomes, StepOutcome{Step: StepCustomer, Error: msg, Category: string(code)})
	res.Code = code
	res.finish()
}

// codeFor maps a failed customer creation to a client-facing code.
func codeFor(err error) dErrors.Code {
	switch backend.CategoryOf(err) {
	case backend.ErrorValidation:
		return dErrors.CodeValidation
	case backend.ErrorTokenExpired:
		return dErrors.CodeSessionExpired
	case backend.ErrorTokenInvalid:
		return dErrors.CodeSessionInvalid
	case backend.ErrorOutage:
		return dErrors.CodeUnavailable
	case backend.ErrorTimeout:
		return dErrors.CodeTimeout
	default:
		return dErrors.CodeBadRequest
	}
}

func dErrorMessage(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
