package service

import (
	"context"
	"log/slog"
	"time"

	"credgate/internal/accessrequest/models"
	"credgate/internal/accessrequest/tracer"
	"credgate/internal/audit"
	"credgate/pkg/domain"
	pkgerrors "credgate/pkg/domain-errors"
)

// Store defines the persistence interface for access requests.
// Error Contract:
// - GetByID returns a not_found domain error when no record exists
// - Update reports found=false for unknown ids instead of an error
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	GetAll(ctx context.Context) ([]*models.AccessRequest, error)
	GetByEmployer(ctx context.Context, employerID string) ([]*models.AccessRequest, error)
	GetByStudent(ctx context.Context, enrollmentID string) ([]*models.AccessRequest, error)
	GetByID(ctx context.Context, id string) (*models.AccessRequest, error)
	Insert(ctx context.Context, request *models.AccessRequest) (*models.AccessRequest, error)
	Update(ctx context.Context, id string, mutate func(*models.AccessRequest) error) (*models.AccessRequest, bool, error)
}

type Option func(*Service)

// Service is the request lifecycle engine. It enforces the pending ->
// approved/rejected state machine, field-scoped authorization, and actor
// binding, and emits audit events and metrics per transition.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics metricsSink
	logger  *slog.Logger
	tracer  tracer.Tracer
	strict  bool
}

// metricsSink is the narrow metrics surface the engine needs;
// *metrics.Metrics satisfies it and tests can substitute a recorder.
type metricsSink interface {
	IncrementRequestsCreated(purpose string)
	IncrementRequestsApproved(purpose string)
	IncrementRequestsRejected(purpose string)
	IncrementTransitionsDenied(reason string)
	IncrementPendingRequests()
	DecrementPendingRequests()
	ObserveApprovedFields(count float64)
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics sink for the service.
func WithMetrics(m metricsSink) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for the service.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithStrictTransitions makes transitions on terminal or unknown requests
// return typed errors instead of being silent no-ops. The permissive default
// keeps retries idempotent; strict mode surfaces caller bugs.
func WithStrictTransitions(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// SendRequest creates a pending access request on behalf of an employer.
func (s *Service) SendRequest(ctx context.Context, actor models.Actor, cmd SendRequestCommand) (_ *models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSendRequest,
		tracer.String(tracer.AttrEmployerID, cmd.EmployerID),
		tracer.String(tracer.AttrEnrollmentID, cmd.StudentEnrollmentID),
	)
	defer func() { span.End(err) }()

	if actor.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor context")
	}
	if actor.Role != domain.RoleEmployer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only employers can send access requests")
	}
	if cmd.EmployerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employer id required")
	}
	if cmd.StudentEnrollmentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student enrollment id required")
	}
	if cmd.EmployerID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "employer identity does not match session")
	}

	request, err := models.NewAccessRequest(
		cmd.EmployerID,
		cmd.EmployerName,
		cmd.StudentEnrollmentID,
		cmd.StudentName,
		cmd.Purpose,
		cmd.RequestedFields,
	)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Insert(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to save access request")
	}
	span.SetAttributes(
		tracer.String(tracer.AttrRequestID, stored.ID),
		tracer.Int64(tracer.AttrFieldCount, int64(len(stored.RequestedFields))),
	)

	s.emitAudit(ctx, audit.Event{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		RequestID: stored.ID,
		Subject:   stored.StudentEnrollmentID,
		Action:    audit.ActionRequestCreated,
		Decision:  audit.DecisionCreated,
		Reason:    audit.ReasonEmployerInitiated,
		Timestamp: stored.RequestedAt,
	})
	if s.metrics != nil {
		s.metrics.IncrementRequestsCreated(stored.Purpose)
		s.metrics.IncrementPendingRequests()
	}
	s.logger.InfoContext(ctx, "access request created",
		"request_id", stored.ID,
		"employer_id", stored.EmployerID,
		"enrollment_id", stored.StudentEnrollmentID,
		"purpose", stored.Purpose,
	)
	return stored, nil
}

// Approve releases the supplied fields and moves the request to approved.
// Fields outside the requested set are dropped silently; disclosure never
// escalates beyond what was asked. An empty fields argument grants the full
// requested set.
//
// In permissive mode an unknown or already-decided request is a no-op and the
// returned record is nil; strict mode surfaces a typed error instead.
func (s *Service) Approve(ctx context.Context, actor models.Actor, requestID string, fields []models.Field) (_ *models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanApprove,
		tracer.String(tracer.AttrRequestID, requestID),
		tracer.Bool(tracer.AttrStrictMode, s.strict),
	)
	defer func() { span.End(err) }()

	return s.transition(ctx, actor, requestID, audit.ActionRequestApproved, func(r *models.AccessRequest, now time.Time) error {
		return r.Approve(fields, now)
	})
}

// Reject moves the request to rejected. ApprovedFields stays empty. No-op and
// strict-mode semantics match Approve.
func (s *Service) Reject(ctx context.Context, actor models.Actor, requestID string) (_ *models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReject,
		tracer.String(tracer.AttrRequestID, requestID),
		tracer.Bool(tracer.AttrStrictMode, s.strict),
	)
	defer func() { span.End(err) }()

	return s.transition(ctx, actor, requestID, audit.ActionRequestRejected, func(r *models.AccessRequest, now time.Time) error {
		return r.Reject(now)
	})
}

// transition applies a terminal state change under the store's write lock.
// Ownership and state checks run inside the mutation so they cannot race with
// another mutation to the same record.
func (s *Service) transition(ctx context.Context, actor models.Actor, requestID string, action string, apply func(*models.AccessRequest, time.Time) error) (*models.AccessRequest, error) {
	if actor.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor context")
	}
	if actor.Role != domain.RoleStudent {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only students can decide access requests")
	}
	if requestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	now := time.Now()
	updated, found, err := s.store.Update(ctx, requestID, func(r *models.AccessRequest) error {
		if r.StudentEnrollmentID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "request is not addressed to this student")
		}
		return apply(r, now)
	})

	if !found {
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to load access request")
		}
		s.denyTransition(ctx, actor, requestID, audit.ReasonUnknownRequest)
		if s.strict {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "access request not found")
		}
		return nil, nil
	}
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
			s.denyTransition(ctx, actor, requestID, audit.ReasonTerminalState)
			if s.strict {
				return nil, err
			}
			return nil, nil
		}
		return nil, err
	}

	reason := audit.ReasonStudentInitiated
	decision := audit.DecisionApproved
	if updated.Status == models.StatusRejected {
		decision = audit.DecisionRejected
	}
	s.emitAudit(ctx, audit.Event{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		RequestID: updated.ID,
		Subject:   updated.EmployerID,
		Action:    action,
		Decision:  decision,
		Reason:    reason,
		Timestamp: now,
	})
	if s.metrics != nil {
		s.metrics.DecrementPendingRequests()
		switch updated.Status {
		case models.StatusApproved:
			s.metrics.IncrementRequestsApproved(updated.Purpose)
			s.metrics.ObserveApprovedFields(float64(len(updated.ApprovedFields)))
		case models.StatusRejected:
			s.metrics.IncrementRequestsRejected(updated.Purpose)
		}
	}
	s.logger.InfoContext(ctx, "access request decided",
		"request_id", updated.ID,
		"status", updated.Status,
		"approved_fields", len(updated.ApprovedFields),
	)
	return updated, nil
}

// Get returns a single request. Visible to the university audit role, the
// employer that created it, and the student it addresses.
func (s *Service) Get(ctx context.Context, actor models.Actor, requestID string) (_ *models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGet,
		tracer.String(tracer.AttrRequestID, requestID),
	)
	defer func() { span.End(err) }()

	if actor.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor context")
	}
	if requestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	request, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to load access request")
	}

	switch {
	case actor.Role == domain.RoleUniversity:
	case actor.Role == domain.RoleEmployer && request.EmployerID == actor.ID:
	case actor.Role == domain.RoleStudent && request.StudentEnrollmentID == actor.ID:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request is not visible to this actor")
	}
	return request, nil
}

// ListForEmployer returns all requests created by the given employer.
// Allowed for that employer and for the university audit role.
func (s *Service) ListForEmployer(ctx context.Context, actor models.Actor, employerID string) (_ []*models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList,
		tracer.String(tracer.AttrEmployerID, employerID),
	)
	defer func() { span.End(err) }()

	if actor.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor context")
	}
	if employerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employer id required")
	}
	if actor.Role != domain.RoleUniversity && (actor.Role != domain.RoleEmployer || actor.ID != employerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another employer's requests")
	}
	requests, err := s.store.GetByEmployer(ctx, employerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to list access requests")
	}
	return requests, nil
}

// ListForStudent returns all requests addressed to the given student.
// Allowed for that student and for the university audit role.
func (s *Service) ListForStudent(ctx context.Context, actor models.Actor, enrollmentID string) (_ []*models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList,
		tracer.String(tracer.AttrEnrollmentID, enrollmentID),
	)
	defer func() { span.End(err) }()

	if actor.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor context")
	}
	if enrollmentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student enrollment id required")
	}
	if actor.Role != domain.RoleUniversity && (actor.Role != domain.RoleStudent || actor.ID != enrollmentID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another student's requests")
	}
	requests, err := s.store.GetByStudent(ctx, enrollmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to list access requests")
	}
	return requests, nil
}

// GetAll returns the full collection for university audit views.
func (s *Service) GetAll(ctx context.Context, actor models.Actor) (_ []*models.AccessRequest, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList)
	defer func() { span.End(err) }()

	if actor.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor context")
	}
	if actor.Role != domain.RoleUniversity {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "audit view is restricted to universities")
	}
	requests, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodePersistence, "failed to list access requests")
	}
	return requests, nil
}

func (s *Service) denyTransition(ctx context.Context, actor models.Actor, requestID, reason string) {
	s.emitAudit(ctx, audit.Event{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		RequestID: requestID,
		Action:    audit.ActionTransitionDenied,
		Decision:  audit.DecisionDenied,
		Reason:    reason,
	})
	if s.metrics != nil {
		s.metrics.IncrementTransitionsDenied(reason)
	}
	s.logger.WarnContext(ctx, "transition denied",
		"request_id", requestID,
		"actor_id", actor.ID,
		"reason", reason,
	)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}
