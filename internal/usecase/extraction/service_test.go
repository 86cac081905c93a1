package extraction

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/usecase/transcript"
	"github.com/johnquangdev/meeting-actions/pkg/llm"
	"github.com/johnquangdev/meeting-actions/pkg/retry"
)

// stubGenerator replays canned responses in call order
type stubGenerator struct {
	responses []string
	errs      []error
	calls     []llm.CompletionRequest
}

func (s *stubGenerator) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, req)
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return "", fmt.Errorf("unexpected call %d", idx)
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestExtract_SingleChunk(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"actionItems":[{"title":"Fix login timeout bug","assignedTo":"Sam","type":"Bug","priority":"High","deadline":"tomorrow"}],"summary":"Sam will fix the login timeout."}`,
	}}
	svc := NewService(gen, transcript.NewChunker(0), fastPolicy(), nil)

	result, err := svc.Extract(context.Background(), "Sam: I will fix the login timeout bug by tomorrow.")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(result.ActionItems) != 1 {
		t.Fatalf("expected 1 item, got %+v", result.ActionItems)
	}
	if result.Summary != "Sam will fix the login timeout." {
		t.Fatalf("single summary should pass through, got %q", result.Summary)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(gen.calls))
	}
	if strings.Contains(gen.calls[0].UserContent, "part 1 of") {
		t.Fatalf("single chunk must not carry a part marker")
	}
}

func TestExtract_ChunksInOrderWithMarkersAndDedup(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"actionItems":[{"title":"Fix login bug"}],"summary":"Part one."}`,
		`{"actionItems":[{"title":"fix the login bug!"}],"summary":"Part two."}`,
		`A single consolidated summary of the meeting.`,
	}}
	// Threshold small enough to force two chunks
	svc := NewService(gen, transcript.NewChunker(60), fastPolicy(), nil)

	text := "First sentence about the login bug goes here. Second sentence about the login bug goes here."
	result, err := svc.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if len(result.ActionItems) != 1 {
		t.Fatalf("cross-chunk duplicates must collapse, got %+v", result.ActionItems)
	}
	if result.Summary != "A single consolidated summary of the meeting." {
		t.Fatalf("expected consolidated summary, got %q", result.Summary)
	}

	if !strings.Contains(gen.calls[0].UserContent, "part 1 of 2") ||
		!strings.Contains(gen.calls[1].UserContent, "part 2 of 2") {
		t.Fatalf("chunk calls missing part markers: %q / %q",
			gen.calls[0].UserContent, gen.calls[1].UserContent)
	}
}

func TestExtract_SummaryConsolidationFallsBack(t *testing.T) {
	gen := &stubGenerator{
		responses: []string{
			`{"actionItems":[],"summary":"Part one."}`,
			`{"actionItems":[],"summary":"Part two."}`,
			"",
		},
		errs: []error{nil, nil, fmt.Errorf("backend returned status 400")},
	}
	svc := NewService(gen, transcript.NewChunker(60), fastPolicy(), nil)

	text := "First sentence about the login bug goes here. Second sentence about the login bug goes here."
	result, err := svc.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("merge failure must not fail the pipeline: %v", err)
	}
	if result.Summary != "Part one. | Part two." {
		t.Fatalf("expected concatenation fallback, got %q", result.Summary)
	}
}

func TestExtract_RetriesTransientBackendFailure(t *testing.T) {
	gen := &stubGenerator{
		responses: []string{"", "", `{"actionItems":[{"title":"Do thing"}]}`},
		errs: []error{
			fmt.Errorf("backend returned status 503"),
			fmt.Errorf("backend returned status 503"),
			nil,
		},
	}
	svc := NewService(gen, transcript.NewChunker(0), fastPolicy(), nil)

	result, err := svc.Extract(context.Background(), "some text")
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if len(result.ActionItems) != 1 {
		t.Fatalf("unexpected items %+v", result.ActionItems)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", len(gen.calls))
	}
}

func TestExtract_ExhaustedBackendClassified(t *testing.T) {
	cases := []struct {
		name string
		errs []error
		code apperrors.ErrorCode
	}{
		{
			name: "transient outage",
			errs: []error{
				fmt.Errorf("backend returned status 503"),
				fmt.Errorf("backend returned status 503"),
				fmt.Errorf("backend returned status 503"),
			},
			code: apperrors.ErrorCode_EXTRACTION_SERVICE_UNAVAILABLE,
		},
		{
			name: "rate limited",
			errs: []error{
				fmt.Errorf("backend returned status 429"),
				fmt.Errorf("backend returned status 429"),
				fmt.Errorf("backend returned status 429"),
			},
			code: apperrors.ErrorCode_EXTRACTION_QUOTA_EXCEEDED,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{responses: []string{"", "", ""}, errs: tc.errs}
			svc := NewService(gen, transcript.NewChunker(0), fastPolicy(), nil)

			_, err := svc.Extract(context.Background(), "some text")
			if err == nil {
				t.Fatalf("expected exhausted backend to fail")
			}
			var appErr apperrors.AppError
			if !stderrors.As(err, &appErr) {
				t.Fatalf("expected classified error, got %v", err)
			}
			if appErr.Code != tc.code {
				t.Fatalf("expected code %v, got %v", tc.code, appErr.Code)
			}
		})
	}
}

func TestExtract_ParseFailureAborts(t *testing.T) {
	gen := &stubGenerator{responses: []string{"definitely not json"}}
	svc := NewService(gen, transcript.NewChunker(0), fastPolicy(), nil)

	if _, err := svc.Extract(context.Background(), "some text"); err == nil {
		t.Fatalf("expected contract violation to surface")
	}
	if len(gen.calls) != 1 {
		t.Fatalf("parse failures must not be retried, got %d calls", len(gen.calls))
	}
}
