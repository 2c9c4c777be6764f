// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/partnerincentives/engagements-config/models"
)

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// EngagementRepository defines operations for engagement metadata rows
type EngagementRepository interface {
	Repository[models.Engagement, models.EngagementFilter]
	ByEngagementID(ctx context.Context, engagementID string) (*models.Engagement, error)
	Update(ctx context.Context, engagement models.Engagement) error
}

// AssociationComponentRepository defines operations for customer-association components
type AssociationComponentRepository interface {
	Repository[models.AssociationComponent, models.AssociationComponentFilter]
	ByEngagementID(ctx context.Context, engagementID string) (*models.AssociationComponent, error)
	ByUUID(ctx context.Context, uuid string) (*models.AssociationComponent, error)
	Update(ctx context.Context, component models.AssociationComponent) error
	DeleteByEngagementID(ctx context.Context, engagementID string) (bool, error)
}

// CountryRepository defines read-only operations for country reference data
type CountryRepository interface {
	Repository[models.Country, models.CountryFilter]
	ByCode(ctx context.Context, code string) (*models.Country, error)
	ListAll(ctx context.Context) ([]*models.Country, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByEngagement(ctx context.Context, engagementID string, limit, offset int) ([]*models.AuditLog, error)
}
