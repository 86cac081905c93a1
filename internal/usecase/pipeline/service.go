package pipeline

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/usecase/transcript"
	"github.com/johnquangdev/meeting-actions/pkg/pipectx"
)

// MinTranscriptLength is the minimum normalized-dialogue length worth
// sending to the extraction backend
const MinTranscriptLength = 40

// Extractor derives action items and a summary from normalized dialogue
type Extractor interface {
	Extract(ctx context.Context, text string) (*entities.ExtractionResult, error)
}

// Deliverer creates work items and settles every input item
type Deliverer interface {
	Deliver(ctx context.Context, items []entities.ActionItem, resolveIdentities bool) ([]entities.DeliveryRecord, []entities.DeliveryFailure)
}

// ProcessRequest is one transcript-processing invocation
type ProcessRequest struct {
	CaptionText      string
	MeetingID        string
	CorrelationID    string // optional caller-supplied id
	ResolveAssignees bool
	Deliver          bool
}

// ProcessResult is the terminal outcome of one invocation. Failures holds
// the items that could not be delivered; the invocation as a whole still
// succeeds when some items land.
type ProcessResult struct {
	CorrelationID string
	Summary       string
	ActionItems   []entities.ActionItem
	Records       []entities.DeliveryRecord
	Failures      []entities.DeliveryFailure
}

// Service runs the whole transcript pipeline: normalization, extraction,
// and delivery, under one correlation id.
type Service struct {
	normalizer *transcript.Normalizer
	extractor  Extractor
	deliverer  Deliverer
	logger     *zap.Logger
}

// NewService constructs the pipeline service
func NewService(extractor Extractor, deliverer Deliverer, logger *zap.Logger) *Service {
	return &Service{
		normalizer: transcript.NewNormalizer(),
		extractor:  extractor,
		deliverer:  deliverer,
		logger:     logger,
	}
}

// Process runs one transcript end to end. The correlation id is generated
// here unless the caller supplied one; every downstream log line and error
// carries it.
func (s *Service) Process(parentCtx context.Context, req ProcessRequest) (*ProcessResult, error) {
	var ctx context.Context
	if req.CorrelationID != "" {
		ctx = pipectx.WithCorrelationID(parentCtx, req.CorrelationID)
	} else {
		ctx = pipectx.Begin(parentCtx)
	}
	correlationID := pipectx.CorrelationID(ctx)

	if strings.TrimSpace(req.CaptionText) == "" {
		return nil, errors.ErrMissingCaptionText()
	}

	dialogue := s.normalizer.Normalize(req.CaptionText)
	if len(dialogue) < MinTranscriptLength {
		return nil, errors.ErrTranscriptTooShort(len(dialogue))
	}

	if s.logger != nil {
		s.logger.Info("pipeline.start",
			zap.String("correlation_id", correlationID),
			zap.String("meeting_id", req.MeetingID),
			zap.Int("caption_length", len(req.CaptionText)),
			zap.Int("dialogue_length", len(dialogue)),
			zap.Bool("deliver", req.Deliver),
		)
	}

	extracted, err := s.extractor.Extract(ctx, dialogue)
	if err != nil {
		var appErr errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.ErrExtractionFailed(correlationID, err)
	}

	result := &ProcessResult{
		CorrelationID: correlationID,
		Summary:       extracted.Summary,
		ActionItems:   extracted.ActionItems,
	}

	if req.Deliver && len(extracted.ActionItems) > 0 {
		result.Records, result.Failures = s.deliverer.Deliver(ctx, extracted.ActionItems, req.ResolveAssignees)
	}

	if s.logger != nil {
		elapsed := time.Duration(0)
		if start, ok := pipectx.StartTime(ctx); ok {
			elapsed = time.Since(start)
		}
		s.logger.Info("pipeline.done",
			zap.String("correlation_id", correlationID),
			zap.Int("action_items", len(result.ActionItems)),
			zap.Int("delivered", len(result.Records)),
			zap.Int("failed", len(result.Failures)),
			zap.Duration("elapsed", elapsed),
		)
	}
	return result, nil
}
