package models

import (
	"time"
)

// Country is a read-only reference row used by the customer-limit editor.
type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(2);not null;uniqueIndex:uk_countries_code" json:"code"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (Country) TableName() string {
	return "countries"
}

// CountryFilter represents filter criteria for countries
type CountryFilter struct {
	ID   *uint   `json:"id,omitempty"`
	Code *string `json:"code,omitempty"`
}
