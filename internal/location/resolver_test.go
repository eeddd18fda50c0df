package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kayit/internal/backend"
	"kayit/internal/location/mocks"
	"kayit/internal/ttlcache"
)

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks Fetcher

type ResolverSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	fetcher *mocks.MockFetcher
	store   *ttlcache.MemoryStore
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctrl := gomock.NewController(s.T())
	s.fetcher = mocks.NewMockFetcher(ctrl)
	s.store = ttlcache.NewMemoryStore(ttlcache.WithClock(func() time.Time { return s.now }))
}

func (s *ResolverSuite) resolver() *Resolver {
	return NewResolver(s.fetcher, s.store, WithCacheTTL(time.Minute))
}

func istanbul() backend.HierarchyResponse {
	return backend.HierarchyResponse{States: []backend.StateWire{{
		StateCode: "34", StateDescription: "Istanbul",
		Cities: []backend.CityWire{{
			CityCode: "34-01", CityDescription: "Kadikoy",
			Districts: []backend.DistrictWire{{DistrictCode: "34-01-1", DistrictDescription: "Moda"}},
		}},
	}}}
}

func outage() error {
	return backend.NewError(backend.ErrorOutage, backend.OpLocationHierarchy, 503, "service unavailable", nil)
}

func (s *ResolverSuite) TestLoadBuildsTree() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil)

	h := s.resolver().Load(s.ctx, "abc", "TR", "TR")

	s.Equal(StatusAvailable, h.Status)
	s.Equal("TR", h.Tree.Code)
	s.Equal([]string{"34"}, codes(ChildrenOf(h.Tree)))
	s.Equal("Moda", ChildrenOf(h.Tree, "34", "34-01")[0].Name)
}

func (s *ResolverSuite) TestLoadIsMemoized() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil).Times(1)
	r := s.resolver()

	first := r.Load(s.ctx, "abc", "TR", "TR")
	second := r.Load(s.ctx, "abc", "tr", "tr")

	s.Equal(StatusAvailable, second.Status)
	s.Equal(first.Tree.Children[0].Code, second.Tree.Children[0].Code)
}

func (s *ResolverSuite) TestMemoExpires() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil).Times(2)
	r := s.resolver()

	r.Load(s.ctx, "abc", "TR", "TR")
	s.now = s.now.Add(time.Minute)
	h := r.Load(s.ctx, "abc", "TR", "TR")

	s.Equal(StatusAvailable, h.Status)
}

func (s *ResolverSuite) TestDistinctKeysFetchSeparately() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil)
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "EN", "TR").Return(istanbul(), nil)
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "xyz", "TR", "TR").Return(istanbul(), nil)
	r := s.resolver()

	r.Load(s.ctx, "abc", "TR", "TR")
	r.Load(s.ctx, "abc", "EN", "TR")
	r.Load(s.ctx, "xyz", "TR", "TR")
}

func (s *ResolverSuite) TestConcurrentLoadsShareOneFetch() {
	release := make(chan struct{})
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").
		DoAndReturn(func(context.Context, string, string, string) (backend.HierarchyResponse, error) {
			<-release
			return istanbul(), nil
		}).Times(1)
	r := s.resolver()

	const callers = 5
	results := make([]Hierarchy, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Load(s.ctx, "abc", "TR", "TR")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, h := range results {
		s.Equal(StatusAvailable, h.Status)
		s.Equal([]string{"34"}, codes(ChildrenOf(h.Tree)))
	}
}

func (s *ResolverSuite) TestFailureIsRetriedOnce() {
	gomock.InOrder(
		s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(backend.HierarchyResponse{}, outage()),
		s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil),
	)

	h := s.resolver().Load(s.ctx, "abc", "TR", "TR")

	s.Equal(StatusAvailable, h.Status)
}

func (s *ResolverSuite) TestUnavailableIsNotCached() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(backend.HierarchyResponse{}, outage()).Times(2)
	r := s.resolver()

	h := r.Load(s.ctx, "abc", "TR", "TR")
	s.Equal(StatusUnavailable, h.Status)
	s.Equal("service unavailable", h.Reason)

	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil)
	h = r.Load(s.ctx, "abc", "TR", "TR")
	s.Equal(StatusAvailable, h.Status)
}

func (s *ResolverSuite) TestEmptyTreeIsAvailable() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "XX").Return(backend.HierarchyResponse{}, nil)

	h := s.resolver().Load(s.ctx, "abc", "TR", "XX")

	s.Equal(StatusAvailable, h.Status)
	s.Empty(ChildrenOf(h.Tree))
}

func (s *ResolverSuite) TestInvalidateForcesRefetch() {
	s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(istanbul(), nil).Times(2)
	r := s.resolver()

	r.Load(s.ctx, "abc", "TR", "TR")
	r.Invalidate(s.ctx, "abc", "TR", "TR")
	r.Load(s.ctx, "abc", "TR", "TR")
}

func TestLoadSurvivesCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").
		DoAndReturn(func(ctx context.Context, _, _, _ string) (backend.HierarchyResponse, error) {
			require.NoError(t, ctx.Err())
			return istanbul(), nil
		})
	r := NewResolver(fetcher, ttlcache.NewMemoryStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := r.Load(ctx, "abc", "TR", "TR")

	assert.Equal(t, StatusAvailable, h.Status)
}

func TestFromWire(t *testing.T) {
	tree := FromWire("TR", istanbul())

	assert.Equal(t, "TR", tree.Code)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, Node{Code: "34-01-1", Name: "Moda"}, tree.Children[0].Children[0].Children[0])
}
