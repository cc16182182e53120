package product

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/georgemunganga/shelf-api/internal/platform/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testNamespace = "api:products"

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Create(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*Product)
	return p, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, category string) ([]*Product, error) {
	args := m.Called(ctx, category)
	products, _ := args.Get(0).([]*Product)
	return products, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	args := m.Called(ctx, id, req)
	p, _ := args.Get(0).(*Product)
	return p, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// brokenStore wraps a MemoryStore and fails the configured operations.
type brokenStore struct {
	*cache.MemoryStore
	getErr  error
	keysErr error
	delErr  error
}

func (s *brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *brokenStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if s.keysErr != nil {
		return nil, s.keysErr
	}
	return s.MemoryStore.Keys(ctx, pattern)
}

func (s *brokenStore) Del(ctx context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	return s.MemoryStore.Del(ctx, keys...)
}

func newTestService(repo Repository, store cache.Store) *service {
	return NewService(repo, store, CacheOptions{Namespace: testNamespace}, nil, zap.NewNop()).(*service)
}

func sampleProducts() []*Product {
	return []*Product{
		{ID: "p1", Name: "Dune", Category: "books", Price: 9.99},
		{ID: "p2", Name: "Emma", Category: "books", Price: 4.5},
	}
}

func TestListProductsReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	store := cache.NewMemoryStore()
	svc := newTestService(repo, store)
	query := url.Values{"category": {"books"}}

	repo.On("List", ctx, "books").Return(sampleProducts(), nil).Once()

	first, err := svc.ListProducts(ctx, query)
	require.NoError(t, err)
	second, err := svc.ListProducts(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
	repo.AssertNumberOfCalls(t, "List", 1)

	cached, ok, err := store.Get(ctx, "api:products?category=books")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, cached, `"name":"Dune"`)
}

func TestListProductsDistinctQueriesUseDistinctEntries(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	svc := newTestService(repo, cache.NewMemoryStore())

	repo.On("List", ctx, "books").Return(sampleProducts(), nil).Once()
	repo.On("List", ctx, "").Return(append(sampleProducts(), &Product{ID: "p3", Name: "Lamp"}), nil).Once()

	books, err := svc.ListProducts(ctx, url.Values{"category": {"books"}})
	require.NoError(t, err)
	all, err := svc.ListProducts(ctx, url.Values{})
	require.NoError(t, err)

	assert.Len(t, books, 2)
	assert.Len(t, all, 3)
	repo.AssertExpectations(t)
}

func TestListProductsDoesNotCacheEmptyResults(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	store := cache.NewMemoryStore()
	svc := newTestService(repo, store)

	repo.On("List", ctx, "toys").Return([]*Product{}, nil)

	for i := 0; i < 2; i++ {
		products, err := svc.ListProducts(ctx, url.Values{"category": {"toys"}})
		require.NoError(t, err)
		assert.Empty(t, products)
	}

	repo.AssertNumberOfCalls(t, "List", 2)
	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestListProductsUsesTTL(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	store := &ttlRecorder{MemoryStore: cache.NewMemoryStore()}
	svc := NewService(repo, store, CacheOptions{Namespace: testNamespace, TTL: 5 * time.Minute}, nil, zap.NewNop())

	repo.On("List", ctx, "").Return(sampleProducts(), nil)

	_, err := svc.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, store.ttl)
}

type ttlRecorder struct {
	*cache.MemoryStore
	ttl time.Duration
}

func (s *ttlRecorder) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.ttl = ttl
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func TestListProductsErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("cache read failure", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, &brokenStore{MemoryStore: cache.NewMemoryStore(), getErr: errors.New("redis down")})

		_, err := svc.ListProducts(ctx, nil)
		assert.ErrorContains(t, err, "redis down")
		repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("List", ctx, "").Return(nil, errors.New("mongo down"))
		svc := newTestService(repo, cache.NewMemoryStore())

		_, err := svc.ListProducts(ctx, nil)
		assert.ErrorContains(t, err, "mongo down")
	})

	t.Run("corrupt cache entry", func(t *testing.T) {
		store := cache.NewMemoryStore()
		require.NoError(t, store.Set(ctx, testNamespace, "not json", 0))
		svc := newTestService(new(mockRepository), store)

		_, err := svc.ListProducts(ctx, nil)
		assert.ErrorContains(t, err, "decode cached listing")
	})
}

func TestUpdateProductInvalidatesAllListings(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	store := cache.NewMemoryStore()
	svc := newTestService(repo, store)

	for _, key := range []string{"api:products", "api:products?category=books", "api:products?category=toys", "session:42"} {
		require.NoError(t, store.Set(ctx, key, "[]", 0))
	}
	name := "Dune Messiah"
	req := UpdateProductRequest{Name: &name}
	repo.On("Update", ctx, "p1", req).Return(&Product{ID: "p1", Name: name}, nil)

	p, err := svc.UpdateProduct(ctx, "p1", req)
	require.NoError(t, err)
	assert.Equal(t, name, p.Name)

	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:42"}, keys)
}

func TestUpdateProductNotFoundKeepsCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	store := cache.NewMemoryStore()
	svc := newTestService(repo, store)
	require.NoError(t, store.Set(ctx, "api:products", "[]", 0))

	repo.On("Update", ctx, "missing", UpdateProductRequest{}).Return(nil, ErrNotFound)

	_, err := svc.UpdateProduct(ctx, "missing", UpdateProductRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok, err := store.Get(ctx, "api:products")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateProductInvalidationFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("Update", ctx, "p1", UpdateProductRequest{}).Return(&Product{ID: "p1"}, nil)

	store := &brokenStore{MemoryStore: cache.NewMemoryStore(), delErr: errors.New("READONLY")}
	require.NoError(t, store.Set(ctx, "api:products", "[]", 0))
	svc := newTestService(repo, store)

	_, err := svc.UpdateProduct(ctx, "p1", UpdateProductRequest{})
	assert.ErrorContains(t, err, "READONLY")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCreateAndDeleteInvalidateListings(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	store := cache.NewMemoryStore()
	svc := newTestService(repo, store)

	repo.On("Create", ctx, mock.AnythingOfType("*product.Product")).Return(nil)
	repo.On("Delete", ctx, "p1").Return(nil)

	require.NoError(t, store.Set(ctx, "api:products", "[]", 0))
	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Lamp", Category: "home"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "home", p.Category)
	_, ok, _ := store.Get(ctx, "api:products")
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "api:products", "[]", 0))
	require.NoError(t, svc.DeleteProduct(ctx, "p1"))
	_, ok, _ = store.Get(ctx, "api:products")
	assert.False(t, ok)
}

func TestCreateAndDeleteSucceedWhenInvalidationFails(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("Create", ctx, mock.AnythingOfType("*product.Product")).Return(nil).Once()
	repo.On("Delete", ctx, "p1").Return(nil).Once()

	core, logs := observer.New(zap.WarnLevel)
	store := &brokenStore{MemoryStore: cache.NewMemoryStore(), keysErr: errors.New("timeout")}
	svc := NewService(repo, store, CacheOptions{Namespace: testNamespace}, nil, zap.New(core))

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Lamp"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	require.NoError(t, svc.DeleteProduct(ctx, "p1"))
	repo.AssertExpectations(t)

	entries := logs.FilterMessage("invalidate product listings").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].ContextMap()["op"])
	assert.Equal(t, "delete", entries[1].ContextMap()["op"])
	assert.Equal(t, "list cached listings: timeout", entries[1].ContextMap()["error"])
}

func TestListProductsRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("List", ctx, "").Return(sampleProducts(), nil)
	reg := prometheus.NewRegistry()
	svc := NewService(repo, cache.NewMemoryStore(), CacheOptions{Namespace: testNamespace}, cache.NewMetrics(reg), zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := svc.ListProducts(ctx, nil)
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "shelf_cache_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "result" {
					counts[label.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"hit": 2, "miss": 1}, counts)
}
