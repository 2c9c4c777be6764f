package businessflow

import (
	"context"
	"encoding/json"

	"github.com/partnerincentives/engagements-config/app/dto"
	"github.com/partnerincentives/engagements-config/config"
	"github.com/partnerincentives/engagements-config/repository"
	"github.com/partnerincentives/engagements-config/utils"
	"github.com/redis/go-redis/v9"
)

// CountryFlow defines operations for the country reference list backing
// per-country customer limits.
type CountryFlow interface {
	ListCountries(ctx context.Context) (*dto.ListCountriesResponse, error)
}

// CountryFlowImpl implements the country business flow
type CountryFlowImpl struct {
	countryRepo repository.CountryRepository
	cacheConfig *config.CacheConfig
	rc          *redis.Client
}

// NewCountryFlow creates a new country flow instance
func NewCountryFlow(countryRepo repository.CountryRepository, rc *redis.Client, cacheConfig *config.CacheConfig) CountryFlow {
	return &CountryFlowImpl{
		countryRepo: countryRepo,
		cacheConfig: cacheConfig,
		rc:          rc,
	}
}

// ListCountries returns the country reference list from cache or database.
func (s *CountryFlowImpl) ListCountries(ctx context.Context) (*dto.ListCountriesResponse, error) {
	cacheKey := redisKey(*s.cacheConfig, utils.CountryListCacheKey)

	if s.cacheConfig.Enabled && s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var items []dto.CountryItem
			if err := json.Unmarshal(bs, &items); err == nil {
				return &dto.ListCountriesResponse{
					Message:   "Countries retrieved from cache",
					Countries: items,
				}, nil
			}
		}
	}

	countries, err := s.countryRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("COUNTRY_LIST_FAILED", "Failed to list countries", err)
	}

	items := make([]dto.CountryItem, 0, len(countries))
	for _, c := range countries {
		items = append(items, dto.CountryItem{
			Code: c.Code,
			Name: c.Name,
		})
	}

	if s.cacheConfig.Enabled && s.rc != nil {
		if bs, err := json.Marshal(items); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.CountryListCacheTTL).Err()
		}
	}

	return &dto.ListCountriesResponse{
		Message:   "Countries retrieved successfully",
		Countries: items,
	}, nil
}
