package dto

import (
	"github.com/partnerincentives/engagements-config/models"
)

// GetAssociationRequest represents the request to fetch an engagement's customer association
type GetAssociationRequest struct {
	EngagementID string `json:"-"`
	CanEdit      bool   `json:"-"`
}

// DurationChangeDTO flags a server-side engagement window change detected
// against the stored configuration sets
type DurationChangeDTO struct {
	Changed bool   `json:"changed"`
	Message string `json:"message,omitempty"`
}

// GetAssociationResponse represents an engagement's customer association in responses
type GetAssociationResponse struct {
	Message            string                           `json:"message"`
	Association        models.CustomerAssociationRecord `json:"association"`
	IsEditable         bool                             `json:"is_editable"`
	HasSavedConfigSets bool                             `json:"has_saved_config_sets"`
	DurationChange     *DurationChangeDTO               `json:"duration_change,omitempty"`
}

// SaveAssociationRequest represents the request to create or replace an
// engagement's customer association configuration
type SaveAssociationRequest struct {
	EngagementID string                          `json:"-"`
	CanEdit      bool                            `json:"-"`
	ConfigSets   []models.ConfigurationSetRecord `json:"configSets" validate:"required,min=1,dive"`
}

// SaveAssociationResponse represents the response to a save operation
type SaveAssociationResponse struct {
	Message        string                           `json:"message"`
	Association    models.CustomerAssociationRecord `json:"association"`
	Created        bool                             `json:"created"`
	DurationChange *DurationChangeDTO               `json:"duration_change,omitempty"`
}

// DeleteAssociationRequest represents the request to remove an engagement's
// customer association configuration
type DeleteAssociationRequest struct {
	EngagementID string `json:"-"`
}

// DeleteAssociationResponse represents the response to a delete operation
type DeleteAssociationResponse struct {
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}

// CountryItem represents one selectable country
type CountryItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ListCountriesResponse represents the response to list countries
type ListCountriesResponse struct {
	Message   string        `json:"message"`
	Countries []CountryItem `json:"countries"`
}
