package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partnerincentives/engagements-config/models"
	"github.com/partnerincentives/engagements-config/utils"
	"gorm.io/gorm"
)

// AssociationComponentRepositoryImpl implements the AssociationComponentRepository interface
type AssociationComponentRepositoryImpl struct {
	*BaseRepository[models.AssociationComponent, models.AssociationComponentFilter]
}

// NewAssociationComponentRepository creates a new association component repository
func NewAssociationComponentRepository(db *gorm.DB) AssociationComponentRepository {
	return &AssociationComponentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AssociationComponent, models.AssociationComponentFilter](db),
	}
}

// ByEngagementID retrieves the component configured for an engagement, nil when absent
func (r *AssociationComponentRepositoryImpl) ByEngagementID(ctx context.Context, engagementID string) (*models.AssociationComponent, error) {
	filter := models.AssociationComponentFilter{EngagementID: &engagementID}
	components, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(components) == 0 {
		return nil, nil
	}

	return components[0], nil
}

// ByUUID retrieves a component by its instance id
func (r *AssociationComponentRepositoryImpl) ByUUID(ctx context.Context, id string) (*models.AssociationComponent, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid component uuid %q: %w", id, err)
	}

	filter := models.AssociationComponentFilter{UUID: &parsed}
	components, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(components) == 0 {
		return nil, nil
	}

	return components[0], nil
}

// Update updates a component row
func (r *AssociationComponentRepositoryImpl) Update(ctx context.Context, component models.AssociationComponent) error {
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

	component.UpdatedAt = utils.UTCNowPtr()

	err = db.Save(&component).Error
	if err != nil {
		return err
	}

	return nil
}

// DeleteByEngagementID removes an engagement's component; reports whether a row was deleted
func (r *AssociationComponentRepositoryImpl) DeleteByEngagementID(ctx context.Context, engagementID string) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
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

	result := db.Where("engagement_id = ?", engagementID).Delete(&models.AssociationComponent{})
	if result.Error != nil {
		err = result.Error
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// ByFilter retrieves components based on filter criteria
func (r *AssociationComponentRepositoryImpl) ByFilter(ctx context.Context, filter models.AssociationComponentFilter, orderBy string, limit, offset int) ([]*models.AssociationComponent, error) {
	db := r.getDB(ctx)

	var components []*models.AssociationComponent
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

	err := query.Find(&components).Error
	if err != nil {
		return nil, err
	}

	return components, nil
}

// Count returns the number of components matching the filter
func (r *AssociationComponentRepositoryImpl) Count(ctx context.Context, filter models.AssociationComponentFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.AssociationComponent{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count association components: %w", err)
	}

	return count, nil
}

// Exists checks if any component matching the filter exists
func (r *AssociationComponentRepositoryImpl) Exists(ctx context.Context, filter models.AssociationComponentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *AssociationComponentRepositoryImpl) applyFilter(db *gorm.DB, filter models.AssociationComponentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.EngagementID != nil {
		db = db.Where("engagement_id = ?", *filter.EngagementID)
	}
	return db
}
