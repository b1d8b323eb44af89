package repository

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

// CachedFilterOptionsRepository serves filter options from an in-memory cache keyed by date range. Options only
// depend on the date range, so every other filter field is ignored when building the key. All other queries pass
// straight through to the wrapped repository.
type CachedFilterOptionsRepository struct {
	MetricsRepository
	cache *cache.Cache
}

func NewCachedFilterOptionsRepository(repo MetricsRepository, ttl time.Duration) *CachedFilterOptionsRepository {
	return &CachedFilterOptionsRepository{
		MetricsRepository: repo,
		cache:             cache.New(ttl, 2*ttl),
	}
}

func (r *CachedFilterOptionsRepository) GetFilterOptions(ctx *appcontext.Context, filter model.Filter) (*model.FilterOptions, error) {
	key := filter.DateRange.Start.String() + "|" + filter.DateRange.End.String()
	if cached, found := r.cache.Get(key); found {
		if options, ok := cached.(*model.FilterOptions); ok {
			ctx.Log.Debugf("Filter options cache hit for %s", key)
			return options, nil
		}
	}
	options, err := r.MetricsRepository.GetFilterOptions(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, options)
	return options, nil
}
