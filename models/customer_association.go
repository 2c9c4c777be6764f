// Package models contains domain entities and business models for the engagement configuration service
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssociationComponent represents a persisted customer-association component
// row for one engagement. Configuration sets are stored as a jsonb document
// in their wire form; partition invariants are re-validated on every load by
// reconstructing the aggregate, never trusted from storage.
type AssociationComponent struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:uk_association_components_uuid" json:"uuid"`
	EngagementID      string              `gorm:"type:varchar(64);not null;uniqueIndex:uk_association_components_engagement_id" json:"engagement_id"`
	EngagementVersion int                 `gorm:"not null;default:1" json:"engagement_version"`
	CreationDate      time.Time           `gorm:"not null" json:"creation_date"`
	ConfigSets        ConfigSetRecordList `gorm:"type:jsonb;not null" json:"config_sets"`
	CreatedAt         time.Time           `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt         *time.Time          `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (AssociationComponent) TableName() string {
	return "association_components"
}

// BeforeCreate is called before creating a new record
func (a *AssociationComponent) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	return nil
}

// AssociationComponentFilter represents filter criteria for association components
type AssociationComponentFilter struct {
	ID           *uint      `json:"id,omitempty"`
	UUID         *uuid.UUID `json:"uuid,omitempty"`
	EngagementID *string    `json:"engagement_id,omitempty"`
}

// AssociationComponentRecord is the wire form of a customer-association
// component: identity plus the configuration set partition.
type AssociationComponentRecord struct {
	ID                string                   `json:"id"`
	EngagementID      string                   `json:"engagementId"`
	EngagementVersion int                      `json:"engagementVersion"`
	CreationDate      string                   `json:"creationDate"`
	ConfigSets        []ConfigurationSetRecord `json:"configSets"`
}

// CustomerAssociationRecord is the full component response shape from the
// engagements proxy: engagement metadata plus the optional component. A nil
// (or id-less) component means the engagement has no saved association
// configuration yet.
type CustomerAssociationRecord struct {
	Metadata  EngagementMetadata          `json:"metadata"`
	Component *AssociationComponentRecord `json:"component,omitempty"`
}
