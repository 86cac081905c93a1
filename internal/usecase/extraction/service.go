package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/usecase/transcript"
	"github.com/johnquangdev/meeting-actions/pkg/llm"
	"github.com/johnquangdev/meeting-actions/pkg/pipectx"
	"github.com/johnquangdev/meeting-actions/pkg/retry"
)

// systemInstruction is the fixed extraction contract sent with every chunk.
// The domain filter keeps small talk and non-committal discussion out of
// the item list.
const systemInstruction = `You are an assistant that extracts actionable engineering work items from meeting transcripts.
Return ONLY a JSON object with this shape:
{"actionItems":[{"title":"...","assignedTo":"...","type":"Task|Bug|UserStory","priority":"High|Medium|Low","description":"...","deadline":"..."}],"summary":"..."}
Rules:
- Only include concrete technical engineering action items that someone committed to.
- Ignore small talk, status updates, and non-committal discussion.
- title: short imperative phrase, single line.
- assignedTo: the speaker or named person responsible, or "Unassigned".
- deadline: the deadline phrase exactly as spoken, or omit the field.
- summary: 2-3 sentences covering the technical discussion.`

const consolidateInstruction = `You combine partial meeting summaries into one.
Produce a single 2-3 sentence synthesis of the provided part summaries. Return plain text only.`

// Service runs extraction over a whole transcript: chunking, per-chunk
// backend calls, response validation, cross-chunk dedup, and summary
// merging.
type Service struct {
	generator llm.Generator
	parser    *Parser
	chunker   *transcript.Chunker
	policy    retry.Policy
	logger    *zap.Logger
}

// NewService constructs an extraction service
func NewService(generator llm.Generator, chunker *transcript.Chunker, policy retry.Policy, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		parser:    NewParser(logger),
		chunker:   chunker,
		policy:    policy,
		logger:    logger,
	}
}

// Extract derives deduplicated action items and one merged summary from
// normalized transcript text. Chunks are processed strictly in order so the
// "part i of n" markers stay meaningful and summaries merge in original
// order. A parse failure on any chunk aborts the extraction; transient
// backend errors are retried by the shared wrapper first.
func (s *Service) Extract(ctx context.Context, text string) (*entities.ExtractionResult, error) {
	correlationID := pipectx.CorrelationID(ctx)
	chunks := s.chunker.Split(text)

	if s.logger != nil {
		s.logger.Info("extraction.start",
			zap.String("correlation_id", correlationID),
			zap.Int("chunk_count", len(chunks)),
			zap.Int("text_length", len(text)),
		)
	}

	var allItems []entities.ActionItem
	var summaries []string

	for i, chunk := range chunks {
		content := chunk
		if len(chunks) > 1 {
			content = fmt.Sprintf("[Transcript part %d of %d]\n%s", i+1, len(chunks), chunk)
		}

		var raw string
		err := retry.Do(ctx, s.logger, "llm.extract", s.policy, func() error {
			var callErr error
			raw, callErr = s.generator.Complete(ctx, llm.CompletionRequest{
				SystemInstruction: systemInstruction,
				UserContent:       content,
				ForceJSON:         true,
			})
			return callErr
		})
		if err != nil {
			return nil, classifyBackendError(correlationID, i+1, len(chunks), err)
		}

		result, err := s.parser.Parse(correlationID, raw)
		if err != nil {
			// Contract violation: retrying the same input rarely fixes a
			// shape violation, so it surfaces immediately.
			return nil, err
		}

		allItems = append(allItems, result.ActionItems...)
		if result.Summary != "" {
			summaries = append(summaries, result.Summary)
		}
	}

	merged := &entities.ExtractionResult{
		ActionItems: Dedupe(allItems),
		Summary:     s.mergeSummaries(ctx, summaries),
	}

	if s.logger != nil {
		s.logger.Info("extraction.done",
			zap.String("correlation_id", correlationID),
			zap.Int("raw_items", len(allItems)),
			zap.Int("deduped_items", len(merged.ActionItems)),
			zap.Int("summary_parts", len(summaries)),
		)
	}
	return merged, nil
}

// classifyBackendError maps an exhausted backend call onto the error
// taxonomy: rate limiting, transient unavailability, or a plain failure.
func classifyBackendError(correlationID string, part, total int, err error) error {
	wrapped := fmt.Errorf("chunk %d/%d extraction failed: %w", part, total, err)
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests"):
		return apperrors.ErrExtractionQuotaExceeded().WithCorrelation(correlationID)
	case retry.IsRetryable(err):
		return apperrors.ErrExtractionServiceUnavailable(wrapped).WithCorrelation(correlationID)
	default:
		return apperrors.ErrExtractionFailed(correlationID, wrapped)
	}
}

// mergeSummaries combines per-chunk summaries into one. A single summary
// passes through; two or more trigger one consolidation call, falling back
// to separator-joined concatenation on failure. Best effort only, never
// fails the pipeline.
func (s *Service) mergeSummaries(ctx context.Context, summaries []string) string {
	switch len(summaries) {
	case 0:
		return ""
	case 1:
		return summaries[0]
	}

	combined, err := s.generator.Complete(ctx, llm.CompletionRequest{
		SystemInstruction: consolidateInstruction,
		UserContent:       JoinSummaries(summaries),
	})
	if err != nil || combined == "" {
		if s.logger != nil {
			s.logger.Warn("summary consolidation failed, falling back to concatenation",
				zap.String("correlation_id", pipectx.CorrelationID(ctx)),
				zap.Error(err),
			)
		}
		return JoinSummaries(summaries)
	}
	return combined
}
