package delivery

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/external/ticketing"
	"github.com/johnquangdev/meeting-actions/pkg/config"
	"github.com/johnquangdev/meeting-actions/pkg/pipectx"
	"github.com/johnquangdev/meeting-actions/pkg/retry"
)

// DefaultBatchSize bounds concurrent work item creations per wave
const DefaultBatchSize = 5

// DefaultBatchDelay is the pause between creation waves, keeping the
// ticketing backend under its rate limits
const DefaultBatchDelay = 500 * time.Millisecond

// Resolver is the identity capability the orchestrator consumes
type Resolver interface {
	ResolveMany(ctx context.Context, names []string) map[string]entities.ResolutionResult
}

// Orchestrator turns verified action items into work items. Creation is
// batched, every item settles independently, and a failed item never blocks
// the rest of its batch.
type Orchestrator struct {
	creator       ticketing.Creator
	resolver      Resolver
	deadlines     *DeadlineParser
	policy        retry.Policy
	batchSize     int
	batchDelay    time.Duration
	areaPath      string
	iterationPath string
	provenanceTag string
	logger        *zap.Logger
}

// NewOrchestrator constructs an Orchestrator. A nil resolver disables
// identity resolution regardless of the per-call flag.
func NewOrchestrator(creator ticketing.Creator, resolver Resolver, ticketingCfg *config.TicketingConfig, pipelineCfg *config.PipelineConfig, logger *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		creator:    creator,
		resolver:   resolver,
		deadlines:  NewDeadlineParser(time.Friday),
		policy:     retry.DefaultPolicy(),
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
		logger:     logger,
	}
	if ticketingCfg != nil {
		o.areaPath = ticketingCfg.AreaPath
		o.iterationPath = ticketingCfg.IterationPath
		o.provenanceTag = ticketingCfg.ProvenanceTag
	}
	if pipelineCfg != nil {
		o.deadlines = NewDeadlineParser(pipelineCfg.SprintEndWeekday)
		if pipelineCfg.DeliveryBatch > 0 {
			o.batchSize = pipelineCfg.DeliveryBatch
		}
		if pipelineCfg.DeliveryDelay > 0 {
			o.batchDelay = pipelineCfg.DeliveryDelay
		}
		o.policy = retry.Policy{
			MaxAttempts: pipelineCfg.RetryAttempts,
			BaseDelay:   pipelineCfg.RetryBaseDelay,
			MaxDelay:    pipelineCfg.RetryMaxDelay,
			Jitter:      pipelineCfg.RetryJitter,
		}
	}
	return o
}

// Deliver creates one work item per action item and reports every outcome.
// Items are processed in fixed-size concurrent batches with a pause between
// waves. Partial failure is the expected mode: the returned slices together
// account for every input item, in input order.
func (o *Orchestrator) Deliver(ctx context.Context, items []entities.ActionItem, resolveIdentities bool) ([]entities.DeliveryRecord, []entities.DeliveryFailure) {
	if len(items) == 0 {
		return nil, nil
	}
	correlationID := pipectx.CorrelationID(ctx)

	var resolutions map[string]entities.ResolutionResult
	if resolveIdentities && o.resolver != nil {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.AssignedTo)
		}
		resolutions = o.resolver.ResolveMany(ctx, names)
	}

	type outcome struct {
		record  *entities.DeliveryRecord
		failure *entities.DeliveryFailure
	}
	outcomes := make([]outcome, len(items))

batches:
	for start := 0; start < len(items); start += o.batchSize {
		end := start + o.batchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				item := items[idx]

				var resolution *entities.ResolutionResult
				if resolutions != nil {
					if res, ok := resolutions[item.AssignedTo]; ok {
						resolution = &res
					}
				}

				record, err := o.createOne(ctx, item, resolution, correlationID)
				if err != nil {
					if o.logger != nil {
						o.logger.Error("work item creation failed",
							zap.String("title", item.Title),
							zap.String("correlation_id", correlationID),
							zap.Error(err),
						)
					}
					outcomes[idx] = outcome{failure: &entities.DeliveryFailure{
						Item:  item,
						Error: apperrors.ErrDeliveryFailed(correlationID, err).Error(),
					}}
					return
				}
				outcomes[idx] = outcome{record: record}
			}(i)
		}
		wg.Wait()

		if end < len(items) {
			select {
			case <-ctx.Done():
				// Remaining items settle as failures so nothing goes unreported
				for i := end; i < len(items); i++ {
					outcomes[i] = outcome{failure: &entities.DeliveryFailure{Item: items[i], Error: ctx.Err().Error()}}
				}
				break batches
			case <-time.After(o.batchDelay):
			}
		}
	}

	var records []entities.DeliveryRecord
	var failures []entities.DeliveryFailure
	for _, out := range outcomes {
		if out.record != nil {
			records = append(records, *out.record)
		}
		if out.failure != nil {
			failures = append(failures, *out.failure)
		}
	}
	return records, failures
}

func (o *Orchestrator) createOne(ctx context.Context, item entities.ActionItem, resolution *entities.ResolutionResult, correlationID string) (*entities.DeliveryRecord, error) {
	fields := o.buildFields(item, resolution)

	var created *ticketing.WorkItem
	err := retry.Do(ctx, o.logger, "ticketing.create", o.policy, func() error {
		var callErr error
		created, callErr = o.creator.CreateWorkItem(ctx, nativeTypeName(item.Type), fields)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Info("work item created",
			zap.Int("id", created.ID),
			zap.String("title", item.Title),
			zap.String("type", nativeTypeName(item.Type)),
			zap.String("correlation_id", correlationID),
		)
	}
	return &entities.DeliveryRecord{
		ID:                 created.ID,
		URL:                created.CanonicalURL(),
		Title:              item.Title,
		Type:               item.Type,
		AssigneeResolution: resolution,
		CorrelationID:      correlationID,
	}, nil
}

// buildFields maps one action item onto backend field reference names
func (o *Orchestrator) buildFields(item entities.ActionItem, resolution *entities.ResolutionResult) map[string]interface{} {
	fields := map[string]interface{}{
		"System.Title":                   item.Title,
		"System.Description":             renderDescription(item, resolution),
		"Microsoft.VSTS.Common.Priority": priorityOrdinal(item.Priority),
	}
	if o.provenanceTag != "" {
		fields["System.Tags"] = o.provenanceTag
	}
	if resolution != nil && resolution.Resolved {
		fields["System.AssignedTo"] = resolution.Identity.PrincipalName
	}
	if o.areaPath != "" {
		fields["System.AreaPath"] = o.areaPath
	}
	if o.iterationPath != "" {
		fields["System.IterationPath"] = o.iterationPath
	}
	if due, ok := o.deadlines.Parse(item.Deadline); ok {
		fields["Microsoft.VSTS.Scheduling.TargetDate"] = due.Format(time.RFC3339)
	}
	return fields
}

// renderDescription builds the HTML body. The original assignee name is
// preserved in the body when resolution failed, so the intent survives even
// though the backend field stays empty.
func renderDescription(item entities.ActionItem, resolution *entities.ResolutionResult) string {
	var b strings.Builder
	if item.Description != "" {
		b.WriteString("<div>")
		b.WriteString(html.EscapeString(item.Description))
		b.WriteString("</div>")
	}
	if item.Deadline != "" {
		b.WriteString(fmt.Sprintf("<div><b>Deadline:</b> %s</div>", html.EscapeString(item.Deadline)))
	}
	unresolved := resolution != nil && !resolution.Resolved
	if unresolved && item.AssignedTo != "" && !strings.EqualFold(item.AssignedTo, entities.UnassignedName) {
		b.WriteString(fmt.Sprintf("<div><i>Requested assignee: %s (not matched in directory)</i></div>", html.EscapeString(item.AssignedTo)))
	}
	return b.String()
}

// priorityOrdinal maps the priority tier onto the backend's 1-is-highest scale
func priorityOrdinal(p entities.ItemPriority) int {
	switch p {
	case entities.ItemPriorityHigh:
		return 1
	case entities.ItemPriorityLow:
		return 3
	default:
		return 2
	}
}

// nativeTypeName maps the internal enum onto backend work item type names
func nativeTypeName(t entities.ItemType) string {
	if t == entities.ItemTypeUserStory {
		return "User Story"
	}
	return string(t)
}
