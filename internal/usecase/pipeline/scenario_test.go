package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/external/ticketing"
	"github.com/johnquangdev/meeting-actions/internal/usecase/delivery"
	"github.com/johnquangdev/meeting-actions/internal/usecase/extraction"
	"github.com/johnquangdev/meeting-actions/internal/usecase/transcript"
	"github.com/johnquangdev/meeting-actions/pkg/config"
	"github.com/johnquangdev/meeting-actions/pkg/llm"
	"github.com/johnquangdev/meeting-actions/pkg/retry"
)

// cannedGenerator replays a fixed extraction backend response
type cannedGenerator struct {
	response string
}

func (g *cannedGenerator) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	return g.response, nil
}

// recordingCreator accepts every work item and remembers the fields
type recordingCreator struct {
	mu    sync.Mutex
	calls []map[string]interface{}
}

func (r *recordingCreator) CreateWorkItem(ctx context.Context, workItemType string, fields map[string]interface{}) (*ticketing.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fields)
	return &ticketing.WorkItem{ID: len(r.calls), URL: "https://tickets.example.com/1"}, nil
}

// Full pipeline over real components: normalizer, chunker, parser, dedup,
// deadline parsing, and delivery, with only the network edges stubbed.
func TestProcess_TranscriptToWorkItem(t *testing.T) {
	generator := &cannedGenerator{
		response: `{"actionItems":[{"title":"Fix login timeout bug","assignedTo":"Sam","type":"Bug","priority":"High","deadline":"tomorrow"}],"summary":"Sam will fix the login timeout."}`,
	}
	extractor := extraction.NewService(generator, transcript.NewChunker(transcript.DefaultChunkThreshold), retry.DefaultPolicy(), nil)

	creator := &recordingCreator{}
	orch := delivery.NewOrchestrator(creator, nil, &config.TicketingConfig{ProvenanceTag: "meeting-actions"}, &config.PipelineConfig{
		DeliveryBatch:    5,
		DeliveryDelay:    time.Millisecond,
		RetryAttempts:    1,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    time.Millisecond,
		SprintEndWeekday: time.Friday,
	}, nil)

	svc := NewService(extractor, orch, nil)
	captionText := "<v Sam>I will fix the login timeout bug by tomorrow. <v Jess>Sounds good, thanks."

	result, err := svc.Process(context.Background(), ProcessRequest{CaptionText: captionText, Deliver: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ActionItems) != 1 {
		t.Fatalf("expected 1 action item, got %d", len(result.ActionItems))
	}
	item := result.ActionItems[0]
	if item.Type != entities.ItemTypeBug {
		t.Errorf("expected Bug, got %s", item.Type)
	}
	if item.Priority != entities.ItemPriorityHigh {
		t.Errorf("expected High, got %s", item.Priority)
	}

	if len(creator.calls) != 1 {
		t.Fatalf("expected 1 work item created, got %d", len(creator.calls))
	}
	fields := creator.calls[0]
	rawDue, ok := fields["Microsoft.VSTS.Scheduling.TargetDate"].(string)
	if !ok {
		t.Fatal("expected a target date for the tomorrow deadline")
	}
	due, err := time.Parse(time.RFC3339, rawDue)
	if err != nil {
		t.Fatalf("target date not RFC3339: %v", err)
	}
	wantDay := time.Now().AddDate(0, 0, 1)
	if due.Hour() != 17 || due.Day() != wantDay.Day() {
		t.Errorf("expected 17:00 the next day, got %v", due)
	}

	if len(result.Records) != 1 || result.Failures != nil {
		t.Errorf("expected clean delivery, got %d records %d failures", len(result.Records), len(result.Failures))
	}
	if result.Summary == "" {
		t.Error("expected summary passed through")
	}
}
