package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/external/directory"
)

type stubFinder struct {
	mu            sync.Mutex
	exact         map[string][]directory.User
	prefix        map[string][]directory.User
	search        map[string][]directory.User
	searchEnabled bool
	err           error
	calls         int
	inFlight      int
	maxInFlight   int
}

func (s *stubFinder) track() func() {
	s.mu.Lock()
	s.calls++
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}
}

func (s *stubFinder) FindExact(ctx context.Context, name string) ([]directory.User, error) {
	defer s.track()()
	time.Sleep(5 * time.Millisecond)
	if s.err != nil {
		return nil, s.err
	}
	return s.exact[name], nil
}

func (s *stubFinder) FindByPrefix(ctx context.Context, prefix string) ([]directory.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.prefix[prefix], nil
}

func (s *stubFinder) Search(ctx context.Context, term string) ([]directory.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.search[term], nil
}

func (s *stubFinder) SupportsSearch() bool {
	return s.searchEnabled
}

func user(id, name string) directory.User {
	return directory.User{ID: id, DisplayName: name, PrincipalName: name + "@example.com"}
}

func TestResolve_ExactMatchIsHighConfidence(t *testing.T) {
	finder := &stubFinder{exact: map[string][]directory.User{
		"Sam Rivera": {user("u1", "Sam Rivera")},
	}}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	result := resolver.Resolve(context.Background(), "Sam Rivera")
	if !result.Resolved {
		t.Fatalf("expected resolved, got error %q", result.Error)
	}
	if result.Identity.Confidence != entities.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", result.Identity.Confidence)
	}
	if result.Identity.ID != "u1" {
		t.Errorf("expected user u1, got %s", result.Identity.ID)
	}
}

func TestResolve_EscalatesToPrefixThenSearch(t *testing.T) {
	finder := &stubFinder{
		prefix:        map[string][]directory.User{"Sam": {user("u1", "Sam Rivera")}},
		search:        map[string][]directory.User{"Rivera": {user("u1", "Sam Rivera")}},
		searchEnabled: true,
	}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	byPrefix := resolver.Resolve(context.Background(), "Sam")
	if !byPrefix.Resolved || byPrefix.Identity.Confidence != entities.ConfidenceMedium {
		t.Fatalf("expected medium-confidence prefix match, got %+v", byPrefix)
	}

	bySearch := resolver.Resolve(context.Background(), "Rivera")
	if !bySearch.Resolved || bySearch.Identity.Confidence != entities.ConfidenceLow {
		t.Fatalf("expected low-confidence search match, got %+v", bySearch)
	}
}

func TestResolve_SearchSkippedWhenUnsupported(t *testing.T) {
	finder := &stubFinder{
		search:        map[string][]directory.User{"Rivera": {user("u1", "Sam Rivera")}},
		searchEnabled: false,
	}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	result := resolver.Resolve(context.Background(), "Rivera")
	if result.Resolved {
		t.Fatal("expected unresolved when search is disabled")
	}
	if result.Error == "" {
		t.Error("expected an explanatory error for unresolved name")
	}
}

func TestResolve_MultipleCandidates(t *testing.T) {
	finder := &stubFinder{exact: map[string][]directory.User{
		"Alex": {user("u1", "Alex"), user("u2", "Alex")},
	}}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	result := resolver.Resolve(context.Background(), "Alex")
	if !result.Resolved {
		t.Fatalf("expected resolved, got %+v", result)
	}
	if result.Identity.ID != "u1" {
		t.Errorf("expected first candidate selected, got %s", result.Identity.ID)
	}
	if len(result.Alternatives) != 1 || result.Alternatives[0].ID != "u2" {
		t.Errorf("expected one alternative u2, got %+v", result.Alternatives)
	}
}

func TestResolve_UnassignedSkipsDirectory(t *testing.T) {
	finder := &stubFinder{}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	for _, name := range []string{"", "  ", "Unassigned", "unassigned"} {
		result := resolver.Resolve(context.Background(), name)
		if result.Resolved {
			t.Errorf("expected %q unresolved", name)
		}
		if result.Error != "" {
			t.Errorf("expected no error for %q, got %q", name, result.Error)
		}
	}
	if finder.calls != 0 {
		t.Errorf("expected no directory calls, got %d", finder.calls)
	}
}

func TestResolve_DirectoryErrorDegrades(t *testing.T) {
	finder := &stubFinder{err: errors.New("directory returned status 503")}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	result := resolver.Resolve(context.Background(), "Sam Rivera")
	if result.Resolved {
		t.Fatal("expected unresolved on directory error")
	}
	if result.Error == "" {
		t.Error("expected error detail on degraded resolution")
	}
}

func TestResolve_CachesByLowercasedName(t *testing.T) {
	finder := &stubFinder{exact: map[string][]directory.User{
		"Sam Rivera": {user("u1", "Sam Rivera")},
	}}
	store := cache.NewMemoryStore()
	resolver := NewResolver(finder, store, time.Minute, 0, nil)

	first := resolver.Resolve(context.Background(), "Sam Rivera")
	if !first.Resolved {
		t.Fatalf("expected resolved, got %+v", first)
	}

	// A differently-cased repeat must hit the cache, not the directory.
	second := resolver.Resolve(context.Background(), "SAM RIVERA")
	if !second.Resolved || second.Identity.ID != "u1" {
		t.Fatalf("expected cached identity, got %+v", second)
	}
	if second.OriginalName != "SAM RIVERA" {
		t.Errorf("expected original casing preserved, got %q", second.OriginalName)
	}
	if finder.calls != 1 {
		t.Errorf("expected one directory call, got %d", finder.calls)
	}
}

func TestResolve_LookupFailureNotCached(t *testing.T) {
	finder := &stubFinder{
		exact: map[string][]directory.User{"Sam Rivera": {user("u1", "Sam Rivera")}},
		err:   errors.New("directory returned status 503"),
	}
	store := cache.NewMemoryStore()
	resolver := NewResolver(finder, store, time.Minute, 0, nil)

	first := resolver.Resolve(context.Background(), "Sam Rivera")
	if first.Resolved || first.Error == "" {
		t.Fatalf("expected degraded result during outage, got %+v", first)
	}

	// Directory recovers; the failure must not have been pinned in cache.
	finder.err = nil
	second := resolver.Resolve(context.Background(), "Sam Rivera")
	if !second.Resolved || second.Identity.ID != "u1" {
		t.Fatalf("expected fresh lookup after recovery, got %+v", second)
	}

	// The successful outcome is cached as usual.
	calls := finder.calls
	third := resolver.Resolve(context.Background(), "Sam Rivera")
	if !third.Resolved {
		t.Fatalf("expected cached hit, got %+v", third)
	}
	if finder.calls != calls {
		t.Errorf("expected no extra directory calls after success, got %d", finder.calls-calls)
	}
}

func TestResolveMany_DeduplicatesAndBatches(t *testing.T) {
	finder := &stubFinder{exact: map[string][]directory.User{
		"Sam":  {user("u1", "Sam")},
		"Jess": {user("u2", "Jess")},
	}}
	resolver := NewResolver(finder, nil, 0, 2, nil)

	names := []string{"Sam", "Jess", "Sam", "Morgan", "Casey", "Riley"}
	results := resolver.ResolveMany(context.Background(), names)

	if len(results) != 5 {
		t.Fatalf("expected 5 unique results, got %d", len(results))
	}
	if !results["Sam"].Resolved || results["Sam"].Identity.ID != "u1" {
		t.Errorf("expected Sam resolved to u1, got %+v", results["Sam"])
	}
	if !results["Jess"].Resolved {
		t.Errorf("expected Jess resolved, got %+v", results["Jess"])
	}
	if results["Morgan"].Resolved {
		t.Errorf("expected Morgan unresolved, got %+v", results["Morgan"])
	}
	if finder.maxInFlight > 2 {
		t.Errorf("expected at most 2 concurrent lookups, got %d", finder.maxInFlight)
	}
}

func TestResolveMany_PartialDirectoryFailure(t *testing.T) {
	finder := &stubFinder{exact: map[string][]directory.User{
		"Sam": {user("u1", "Sam")},
	}}
	resolver := NewResolver(finder, nil, 0, 0, nil)

	results := resolver.ResolveMany(context.Background(), []string{"Sam", "Nobody"})
	if !results["Sam"].Resolved {
		t.Errorf("expected Sam resolved, got %+v", results["Sam"])
	}
	if results["Nobody"].Resolved || results["Nobody"].Error == "" {
		t.Errorf("expected Nobody unresolved with error, got %+v", results["Nobody"])
	}
}
