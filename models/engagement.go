package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// EngagementStatus represents the review state of an engagement
type EngagementStatus string

const (
	EngagementStatusUnknown                 EngagementStatus = "Unknown"
	EngagementStatusDraft                   EngagementStatus = "Draft"
	EngagementStatusSubmitted               EngagementStatus = "Submitted"
	EngagementStatusApproved                EngagementStatus = "Approved"
	EngagementStatusRejected                EngagementStatus = "Rejected"
	EngagementStatusMicrosoftActionRequired EngagementStatus = "MicrosoftActionRequired"
)

// String returns the string representation of the status
func (s EngagementStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s EngagementStatus) Valid() bool {
	switch s {
	case EngagementStatusUnknown, EngagementStatusDraft, EngagementStatusSubmitted,
		EngagementStatusApproved, EngagementStatusRejected,
		EngagementStatusMicrosoftActionRequired:
		return true
	default:
		return false
	}
}

// IsEditable reports whether the engagement is still open to partner-side
// configuration changes. Submitted and approved engagements are frozen.
func (s EngagementStatus) IsEditable() bool {
	switch s {
	case EngagementStatusDraft, EngagementStatusRejected,
		EngagementStatusMicrosoftActionRequired:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for EngagementStatus
func (s *EngagementStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = EngagementStatus(v)
	case []byte:
		*s = EngagementStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EngagementStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for EngagementStatus
func (s EngagementStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid EngagementStatus: %s", s)
	}
	return string(s), nil
}

// SolutionArea identifies the cloud solution area an engagement targets
type SolutionArea string

const (
	SolutionAreaUnknown               SolutionArea = "Unknown"
	SolutionAreaAzure                 SolutionArea = "Azure"
	SolutionAreaModernWorkAndSecurity SolutionArea = "ModernWorkAndSecurity"
	SolutionAreaBusinessApplications  SolutionArea = "BusinessApplications"
)

// PartnerRole identifies the role the partner plays in the engagement
type PartnerRole string

const (
	PartnerRoleUnknown         PartnerRole = "Unknown"
	PartnerRoleBuildIntent     PartnerRole = "BuildIntent"
	PartnerRoleTransact        PartnerRole = "Transact"
	PartnerRoleDeployAndManage PartnerRole = "DeployAndManage"
)

// AssociationType identifies how customers are associated with the partner
type AssociationType string

const (
	AssociationTypeUnknown AssociationType = "Unknown"
	AssociationTypeCPOR    AssociationType = "CPOR"
	AssociationTypePAL     AssociationType = "PAL"
)

// Engagement represents an engagement row mirrored from the engagements proxy
type Engagement struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	EngagementID     string           `gorm:"type:varchar(64);not null;uniqueIndex:uk_engagements_engagement_id" json:"engagement_id"`
	State            EngagementStatus `gorm:"type:varchar(32);not null;default:'Draft'" json:"state"`
	Version          int              `gorm:"not null;default:1" json:"version"`
	ApprovedVersions pq.Int64Array    `gorm:"type:bigint[]" json:"approved_versions"`
	StartDate        time.Time        `gorm:"not null" json:"start_date"`
	EndDate          time.Time        `gorm:"not null" json:"end_date"`
	ProgramGuid      string           `gorm:"type:varchar(64)" json:"program_guid"`
	PartnerRole      PartnerRole      `gorm:"type:varchar(32)" json:"partner_role"`
	SolutionArea     SolutionArea     `gorm:"type:varchar(32)" json:"solution_area"`
	AssociationType  AssociationType  `gorm:"type:varchar(16)" json:"association_type"`
	CreatedAt        time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Engagement) TableName() string {
	return "engagements"
}

// EngagementFilter represents filter criteria for engagements
type EngagementFilter struct {
	ID           *uint             `json:"id,omitempty"`
	EngagementID *string           `json:"engagement_id,omitempty"`
	State        *EngagementStatus `json:"state,omitempty"`
	StartAfter   *time.Time        `json:"start_after,omitempty"`
	EndBefore    *time.Time        `json:"end_before,omitempty"`
}

// EngagementMetadata is the wire form of engagement-level metadata attached
// to every component response by the engagements proxy.
type EngagementMetadata struct {
	ID               string           `json:"id"`
	State            EngagementStatus `json:"state"`
	Version          int              `json:"version"`
	ApprovedVersions []int64          `json:"approvedVersions"`
	StartDate        string           `json:"startDate"`
	EndDate          string           `json:"endDate"`
	ProgramGuid      string           `json:"programGuid"`
	PartnerRole      PartnerRole      `json:"partnerRole"`
	SolutionArea     SolutionArea     `json:"solutionArea"`
	AssociationType  AssociationType  `json:"associationType"`
}
