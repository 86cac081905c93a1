package identity

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/external/directory"
)

// DefaultCacheTTL bounds how long a resolution result is reused
const DefaultCacheTTL = 5 * time.Minute

// DefaultBatchSize bounds concurrent directory lookups in ResolveMany
const DefaultBatchSize = 5

const cacheKeyPrefix = "identity:resolve:"

// Resolver maps free-text assignee names to directory identities with
// confidence tiering and a short-lived cache.
type Resolver struct {
	finder    directory.Finder
	store     cache.Store
	ttl       time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewResolver constructs a Resolver. A nil store disables caching.
func NewResolver(finder directory.Finder, store cache.Store, ttl time.Duration, batchSize int, logger *zap.Logger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Resolver{
		finder:    finder,
		store:     store,
		ttl:       ttl,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Resolve maps one free-text name to a directory identity. Empty names and
// the literal "unassigned" short-circuit without a network call. Directory
// errors degrade the name to unresolved; they never propagate.
func (r *Resolver) Resolve(ctx context.Context, name string) entities.ResolutionResult {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.EqualFold(trimmed, entities.UnassignedName) {
		return entities.ResolutionResult{OriginalName: name, Resolved: false}
	}

	cacheKey := cacheKeyPrefix + strings.ToLower(trimmed)
	if cached, ok := r.fromCache(ctx, cacheKey); ok {
		cached.OriginalName = name
		return cached
	}

	candidates, lookupErr := r.lookup(ctx, trimmed)
	result := buildResult(name, candidates, lookupErr)

	// Empty candidate sets are cacheable outcomes; lookup failures are
	// not, a transient outage must not pin the name for the whole TTL.
	if lookupErr == nil {
		r.toCache(ctx, cacheKey, result)
	}
	return result
}

// ResolveMany resolves a set of names in fixed-size concurrency batches to
// bound directory-service load. The input is deduplicated; the returned map
// has one entry per unique name, keyed by the original string as supplied.
func (r *Resolver) ResolveMany(ctx context.Context, names []string) map[string]entities.ResolutionResult {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	results := make(map[string]entities.ResolutionResult, len(unique))
	var mu sync.Mutex

	for start := 0; start < len(unique); start += r.batchSize {
		end := start + r.batchSize
		if end > len(unique) {
			end = len(unique)
		}

		var wg sync.WaitGroup
		for _, name := range unique[start:end] {
			wg.Add(1)
			go func(n string) {
				defer wg.Done()
				res := r.Resolve(ctx, n)
				mu.Lock()
				results[n] = res
				mu.Unlock()
			}(name)
		}
		wg.Wait()
	}

	return results
}

// lookup queries the directory in escalating strategies, stopping at the
// first that yields candidates. Fuzzy search is optional; when the backend
// does not support it the escalation simply ends.
func (r *Resolver) lookup(ctx context.Context, name string) ([]entities.ResolvedIdentity, error) {
	users, err := r.finder.FindExact(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return toIdentities(users, entities.ConfidenceHigh), nil
	}

	users, err = r.finder.FindByPrefix(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return toIdentities(users, entities.ConfidenceMedium), nil
	}

	if !r.finder.SupportsSearch() {
		return nil, nil
	}
	users, err = r.finder.Search(ctx, name)
	if err != nil {
		// Fuzzy search unavailability is not an error
		if r.logger != nil {
			r.logger.Warn("directory search unavailable",
				zap.String("name", name),
				zap.Error(err),
			)
		}
		return nil, nil
	}
	return toIdentities(users, entities.ConfidenceLow), nil
}

func buildResult(originalName string, candidates []entities.ResolvedIdentity, lookupErr error) entities.ResolutionResult {
	if lookupErr != nil {
		return entities.ResolutionResult{
			OriginalName: originalName,
			Resolved:     false,
			Error:        apperrors.ErrDirectoryLookupFailed(originalName, lookupErr).Error(),
		}
	}
	if len(candidates) == 0 {
		return entities.ResolutionResult{
			OriginalName: originalName,
			Resolved:     false,
			Error:        "no directory match for \"" + originalName + "\"",
		}
	}

	result := entities.ResolutionResult{
		OriginalName: originalName,
		Resolved:     true,
		Identity:     &candidates[0],
	}
	if len(candidates) > 1 {
		result.Alternatives = candidates[1:]
	}
	return result
}

func toIdentities(users []directory.User, confidence entities.MatchConfidence) []entities.ResolvedIdentity {
	out := make([]entities.ResolvedIdentity, 0, len(users))
	for _, u := range users {
		out = append(out, entities.ResolvedIdentity{
			DisplayName:   u.DisplayName,
			PrincipalName: u.PrincipalName,
			Mail:          u.Mail,
			ID:            u.ID,
			Confidence:    confidence,
		})
	}
	return out
}

func (r *Resolver) fromCache(ctx context.Context, key string) (entities.ResolutionResult, bool) {
	if r.store == nil {
		return entities.ResolutionResult{}, false
	}
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil || !ok {
		return entities.ResolutionResult{}, false
	}
	var result entities.ResolutionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return entities.ResolutionResult{}, false
	}
	return result, true
}

func (r *Resolver) toCache(ctx context.Context, key string, result entities.ResolutionResult) {
	if r.store == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.store.Set(ctx, key, string(raw), r.ttl); err != nil && r.logger != nil {
		r.logger.Warn("failed to cache resolution result", zap.Error(err))
	}
}
