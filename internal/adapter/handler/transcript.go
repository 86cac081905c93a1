package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/errors"
	transcriptdto "github.com/johnquangdev/meeting-actions/internal/adapter/dto/transcript"
	"github.com/johnquangdev/meeting-actions/internal/usecase/pipeline"
)

// Processor runs one transcript through the pipeline
type Processor interface {
	Process(ctx context.Context, req pipeline.ProcessRequest) (*pipeline.ProcessResult, error)
}

// Transcript handles transcript processing requests
type Transcript struct {
	processor Processor
	logger    *zap.Logger
}

// NewTranscript creates a transcript handler
func NewTranscript(processor Processor, logger *zap.Logger) *Transcript {
	return &Transcript{processor: processor, logger: logger}
}

// Process handles POST /v1/transcripts/process
func (h *Transcript) Process(c echo.Context) error {
	var req transcriptdto.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrMissingCaptionText())
	}

	result, err := h.processor.Process(c.Request().Context(), pipeline.ProcessRequest{
		CaptionText:      req.CaptionText,
		MeetingID:        req.MeetingID,
		CorrelationID:    getRequestID(c),
		ResolveAssignees: req.ResolveAssignees,
		Deliver:          req.ShouldDeliver(),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, toProcessResponse(result))
}

func toProcessResponse(result *pipeline.ProcessResult) transcriptdto.ProcessResponse {
	resp := transcriptdto.ProcessResponse{
		CorrelationID: result.CorrelationID,
		Summary:       result.Summary,
		ActionItems:   make([]transcriptdto.ActionItemResponse, 0, len(result.ActionItems)),
		FailedCount:   len(result.Failures),
	}
	for _, item := range result.ActionItems {
		resp.ActionItems = append(resp.ActionItems, transcriptdto.FromActionItem(item))
	}
	for _, rec := range result.Records {
		resp.Delivered = append(resp.Delivered, transcriptdto.FromDeliveryRecord(rec))
	}
	for _, f := range result.Failures {
		resp.Failed = append(resp.Failed, transcriptdto.FromDeliveryFailure(f))
	}
	return resp
}
