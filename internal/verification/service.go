package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kycgate/internal/audit"
	"kycgate/internal/evidence/document"
	"kycgate/internal/evidence/sanctions"
	"kycgate/internal/evidence/tracer"
	"kycgate/internal/verification/metrics"
	"kycgate/internal/verification/ports"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/middleware/requesttime"
	"kycgate/pkg/platform/privacy"
	"kycgate/pkg/requestcontext"
)

// Service runs verifications. It is safe for concurrent use.
type Service struct {
	extractor ports.DocumentExtractor
	faces     ports.FaceMatcher
	liveness  ports.LivenessScorer
	screener  ports.SanctionsScreener
	auditor   ports.AuditPublisher

	policy  Policy
	topK    int
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithPolicy overrides the decision thresholds.
func WithPolicy(p Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithTopK sets how many sanctions matches are kept.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for pipeline spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a verification service.
// Panics if a required dependency is nil; fail fast at startup.
func New(
	extractor ports.DocumentExtractor,
	faces ports.FaceMatcher,
	liveness ports.LivenessScorer,
	screener ports.SanctionsScreener,
	auditor ports.AuditPublisher,
	opts ...Option,
) *Service {
	switch {
	case extractor == nil:
		panic("verification.New: document extractor is required")
	case faces == nil:
		panic("verification.New: face matcher is required")
	case liveness == nil:
		panic("verification.New: liveness scorer is required")
	case screener == nil:
		panic("verification.New: sanctions screener is required")
	case auditor == nil:
		panic("verification.New: auditor is required")
	}

	s := &Service{
		extractor: extractor,
		faces:     faces,
		liveness:  liveness,
		screener:  screener,
		auditor:   auditor,
		policy:    DefaultPolicy(),
		topK:      sanctions.DefaultTopK,
		tracer:    tracer.NewNoop(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the pipeline for one request.
//
// Errors: CodeBadRequest for missing images, CodeUnprocessable when a face
// is missing, CodeTimeout when ctx expires, CodeInternal otherwise. A
// sanctions provider failure is not an error; it shows up as
// SanctionsStatus unavailable.
func (s *Service) Verify(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)
	s.metrics.IncInFlight()
	defer func() {
		s.metrics.DecInFlight()
		s.metrics.ObserveVerify(time.Since(start))
	}()

	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify, tracer.String(tracer.AttrRequestID, requestID))

	if req.DocumentFront == nil || req.Selfie == nil {
		err := dErrors.New(dErrors.CodeBadRequest, "id_front and selfie images are required")
		span.End(err)
		return nil, err
	}

	// 1. Document fields.
	stageStart := time.Now()
	extraction, err := s.extractor.Extract(ctx, req.DocumentFront, req.DocumentBack, document.Overrides{
		FullName: req.FullName,
		DOB:      req.DOB,
	})
	s.metrics.ObserveStage(metrics.StageExtract, time.Since(stageStart))
	if err != nil {
		return nil, s.fail(ctx, span, metrics.StageExtract, err)
	}

	// 2. Face match. A missing face aborts the request.
	stageStart = time.Now()
	match, err := s.faces.Match(ctx, req.DocumentFront, req.Selfie)
	s.metrics.ObserveStage(metrics.StageFaceMatch, time.Since(stageStart))
	if err != nil {
		return nil, s.fail(ctx, span, metrics.StageFaceMatch, err)
	}

	// 3. Liveness on the selfie.
	stageStart = time.Now()
	liveness, err := s.liveness.Score(ctx, req.Selfie)
	s.metrics.ObserveStage(metrics.StageLiveness, time.Since(stageStart))
	if err != nil {
		return nil, s.fail(ctx, span, metrics.StageLiveness, err)
	}

	// 4. Sanctions, only with a name to screen.
	stageStart = time.Now()
	screening := s.screen(ctx, extraction.Fields)
	s.metrics.ObserveStage(metrics.StageSanctions, time.Since(stageStart))
	s.metrics.RecordSanctionsStatus(string(screening.Status))

	// 5. Decision.
	assessment := Assess(s.policy, Signals{
		FaceMatch:          match.Similarity,
		Liveness:           liveness,
		OCRConfidence:      extraction.OCRConfidence,
		BestSanctionsScore: screening.BestScore(),
	})

	result := &Result{
		Extracted: toExtractedFields(extraction.Fields),
		Scores: Scores{
			FaceMatch:      match.Similarity,
			Liveness:       liveness,
			OCRConfidence:  extraction.OCRConfidence,
			SanctionsMatch: screening.BestScore(),
			Overall:        assessment.Overall,
		},
		SanctionsMatches: toSanctionsMatches(screening.Matches),
		Passed:           assessment.Passed,
		Reason:           assessment.Reason,
		SanctionsStatus:  screening.Status,
		RequestID:        requestID,
	}

	s.emitDecided(ctx, span, result)
	s.metrics.RecordDecision(result.Passed, string(result.Reason), assessment.Overall)

	s.logger.InfoContext(ctx, "verification decided",
		"request_id", requestID,
		"passed", result.Passed,
		"reason", result.Reason,
		"overall", assessment.Overall,
		"sanctions_status", result.SanctionsStatus,
		"source", result.Extracted.Source,
	)

	span.SetAttributes(
		tracer.Bool(tracer.AttrPassed, result.Passed),
		tracer.String(tracer.AttrReason, string(result.Reason)),
		tracer.Float64(tracer.AttrFaceMatch, match.Similarity),
		tracer.Float64(tracer.AttrLiveness, liveness),
	)
	span.End(nil)
	return result, nil
}

func (s *Service) screen(ctx context.Context, fields document.Fields) sanctions.Screening {
	if fields.FullName == nil || strings.TrimSpace(*fields.FullName) == "" {
		return sanctions.Screening{Status: sanctions.StatusSkipped, Matches: []sanctions.Match{}}
	}
	q := sanctions.Query{Name: *fields.FullName}
	if fields.DOB != nil {
		q.BirthDate = *fields.DOB
	}
	return s.screener.Screen(ctx, q, s.topK)
}

// fail normalises a stage error to a domain error, records it and emits a
// failure audit event.
func (s *Service) fail(ctx context.Context, span tracer.Span, stage string, err error) error {
	err = classify(ctx, stage, err)
	code := dErrors.CodeOf(err)
	requestID := requestcontext.RequestID(ctx)

	s.metrics.RecordFailure(stage, string(code))
	if code == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"stage", stage,
			"error", err,
		)
	} else {
		s.logger.InfoContext(ctx, "verification rejected",
			"request_id", requestID,
			"stage", stage,
			"code", code,
			"error", err,
		)
	}

	event := s.newEvent(ctx, audit.EventVerificationFailed)
	event.ErrorCode = string(code)
	event.Reason = stage
	s.emit(ctx, span, event)

	span.End(err)
	return err
}

func classify(ctx context.Context, stage string, err error) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if timeout := dErrors.FromContext(err, "verification timed out"); timeout != nil {
		return timeout
	}
	if ctx.Err() != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "verification timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, stage+" failed")
}

func (s *Service) emitDecided(ctx context.Context, span tracer.Span, result *Result) {
	event := s.newEvent(ctx, audit.EventVerificationDecided)
	event.Passed = result.Passed
	event.Reason = string(result.Reason)
	event.Overall = result.Scores.Overall
	event.FaceMatch = result.Scores.FaceMatch
	event.Liveness = result.Scores.Liveness
	event.SanctionsStatus = string(result.SanctionsStatus)
	event.SanctionsBest = result.Scores.SanctionsMatch
	event.DocumentSource = result.Extracted.Source
	if name := result.Extracted.FullName; name != nil {
		event.NameHash = privacy.Fingerprint(*name)
	}
	if number := result.Extracted.DocumentNumber; number != nil {
		event.DocumentNumber = privacy.MaskDocumentNumber(*number)
	}
	s.emit(ctx, span, event)
}

func (s *Service) newEvent(ctx context.Context, t audit.EventType) audit.Event {
	event := audit.NewEvent(t)
	event.ReceivedAt = requesttime.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Subject = requestcontext.Subject(ctx)
	event.ClientIP = privacy.AnonymizeIP(requestcontext.ClientIP(ctx))
	event.Client = audit.DescribeClient(requestcontext.UserAgent(ctx))
	return event
}

// emit is fail-open: an audit failure is logged and never changes the outcome.
func (s *Service) emit(ctx context.Context, span tracer.Span, event audit.Event) {
	if err := s.auditor.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit verification audit event",
			"error", err,
			"event_type", event.Type,
			"request_id", event.RequestID,
		)
		return
	}
	span.AddEvent(tracer.EventAuditEmitted, tracer.String("event_type", string(event.Type)))
}
