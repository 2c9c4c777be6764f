package repository

import (
	"context"
	"fmt"

	"github.com/partnerincentives/engagements-config/models"
	"github.com/partnerincentives/engagements-config/utils"
	"gorm.io/gorm"
)

// EngagementRepositoryImpl implements the EngagementRepository interface
type EngagementRepositoryImpl struct {
	*BaseRepository[models.Engagement, models.EngagementFilter]
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &EngagementRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Engagement, models.EngagementFilter](db),
	}
}

// ByEngagementID retrieves an engagement by its external id
func (r *EngagementRepositoryImpl) ByEngagementID(ctx context.Context, engagementID string) (*models.Engagement, error) {
	filter := models.EngagementFilter{EngagementID: &engagementID}
	engagements, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(engagements) == 0 {
		return nil, nil
	}

	return engagements[0], nil
}

// Update updates an engagement row
func (r *EngagementRepositoryImpl) Update(ctx context.Context, engagement models.Engagement) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	engagement.UpdatedAt = utils.UTCNowPtr()

	err = db.Save(&engagement).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves engagements based on filter criteria
func (r *EngagementRepositoryImpl) ByFilter(ctx context.Context, filter models.EngagementFilter, orderBy string, limit, offset int) ([]*models.Engagement, error) {
	db := r.getDB(ctx)

	var engagements []*models.Engagement
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

	err := query.Find(&engagements).Error
	if err != nil {
		return nil, err
	}

	return engagements, nil
}

// Count returns the number of engagements matching the filter
func (r *EngagementRepositoryImpl) Count(ctx context.Context, filter models.EngagementFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Engagement{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count engagements: %w", err)
	}

	return count, nil
}

// Exists checks if any engagement matching the filter exists
func (r *EngagementRepositoryImpl) Exists(ctx context.Context, filter models.EngagementFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *EngagementRepositoryImpl) applyFilter(db *gorm.DB, filter models.EngagementFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.EngagementID != nil {
		db = db.Where("engagement_id = ?", *filter.EngagementID)
	}
	if filter.State != nil {
		db = db.Where("state = ?", *filter.State)
	}
	if filter.StartAfter != nil {
		db = db.Where("start_date >= ?", *filter.StartAfter)
	}
	if filter.EndBefore != nil {
		db = db.Where("end_date <= ?", *filter.EndBefore)
	}
	return db
}
