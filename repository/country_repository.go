package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/partnerincentives/engagements-config/models"
	"gorm.io/gorm"
)

// CountryRepositoryImpl implements the CountryRepository interface
type CountryRepositoryImpl struct {
	*BaseRepository[models.Country, models.CountryFilter]
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &CountryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Country, models.CountryFilter](db),
	}
}

// ByCode retrieves a country by its ISO 3166-1 alpha-2 code
func (r *CountryRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Country, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	filter := models.CountryFilter{Code: &normalized}
	countries, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(countries) == 0 {
		return nil, nil
	}

	return countries[0], nil
}

// ListAll returns every country ordered by name
func (r *CountryRepositoryImpl) ListAll(ctx context.Context) ([]*models.Country, error) {
	return r.ByFilter(ctx, models.CountryFilter{}, "name ASC", 0, 0)
}

// ByFilter retrieves countries based on filter criteria
func (r *CountryRepositoryImpl) ByFilter(ctx context.Context, filter models.CountryFilter, orderBy string, limit, offset int) ([]*models.Country, error) {
	db := r.getDB(ctx)

	var countries []*models.Country
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&countries).Error
	if err != nil {
		return nil, err
	}

	return countries, nil
}

// Count returns the number of countries matching the filter
func (r *CountryRepositoryImpl) Count(ctx context.Context, filter models.CountryFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Country{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}

	return count, nil
}

// Exists checks if any country matching the filter exists
func (r *CountryRepositoryImpl) Exists(ctx context.Context, filter models.CountryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *CountryRepositoryImpl) applyFilter(db *gorm.DB, filter models.CountryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Code != nil {
		db = db.Where("code = ?", *filter.Code)
	}
	return db
}
