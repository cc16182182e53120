package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/georgemunganga/shelf-api/internal/platform/cache"
	"go.uber.org/zap"
)

func (s *service) ListProducts(ctx context.Context, query url.Values) ([]*Product, error) {
	key := cache.Key(s.opts.Namespace, query)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cached listing: %w", err)
	}
	if ok {
		var products []*Product
		if err := json.Unmarshal([]byte(cached), &products); err != nil {
			return nil, fmt.Errorf("decode cached listing: %w", err)
		}
		s.metrics.Hit(s.opts.Namespace)
		s.logger.Debug("cache hit", zap.String("key", key))
		return products, nil
	}

	s.metrics.Miss(s.opts.Namespace)
	s.logger.Debug("cache miss", zap.String("key", key))

	products, err := s.repo.List(ctx, query.Get("category"))
	if err != nil {
		return nil, err
	}

	// Empty results are not cached.
	if len(products) > 0 {
		payload, err := json.Marshal(products)
		if err != nil {
			return nil, fmt.Errorf("encode listing: %w", err)
		}
		if err := s.cache.Set(ctx, key, string(payload), s.opts.TTL); err != nil {
			return nil, fmt.Errorf("write cached listing: %w", err)
		}
	}
	return products, nil
}
