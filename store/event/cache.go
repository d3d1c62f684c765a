package event

import (
	"context"
	"fmt"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache wraps an event store with an LRU read cache for the api. Only
// full pages are cached: the log is append only, so a full page never
// changes, while a short page grows as new events land.
func Cache(store core.EventStore) core.EventStore {
	return &cacheEventStore{
		EventStore: store,
		cache:      gcache.New(2048).LRU().Build(),
		sf:         &singleflight.Group{},
	}
}

type cacheEventStore struct {
	core.EventStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheEventStore) List(ctx context.Context, h kv.Handle, from uint64, limit int) ([]*core.Event, error) {
	key := s.pageKey(from, limit)
	if v, err := s.cache.Get(key); err == nil {
		if events, ok := v.([]*core.Event); ok {
			return events, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		events, err := s.EventStore.List(ctx, h, from, limit)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(events) == limit {
			s.cache.Set(key, events)
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*core.Event), nil
}

func (s *cacheEventStore) pageKey(from uint64, limit int) string {
	return fmt.Sprintf("events:%d:%d", from, limit)
}
