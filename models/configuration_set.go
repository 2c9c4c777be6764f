package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/partnerincentives/engagements-config/utils"
)

// CustomerLimit caps how many customers may be claimed for one country
type CustomerLimit struct {
	CountryCode  string `json:"countryCode"`
	MaxCustomers int    `json:"maxCustomers"`
}

// CustomerLimits is a per-country customer cap list. Legacy payloads encode
// an empty mapping as "{}" instead of "[]", so decoding tolerates both.
type CustomerLimits []CustomerLimit

// UnmarshalJSON implements json.Unmarshaler for CustomerLimits
func (l *CustomerLimits) UnmarshalJSON(data []byte) error {
	var limits []CustomerLimit
	if err := json.Unmarshal(data, &limits); err == nil {
		*l = limits
		return nil
	}

	var legacy map[string]any
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("cannot unmarshal %s into CustomerLimits", string(data))
	}
	if len(legacy) != 0 {
		return fmt.Errorf("unexpected customer limits object: %s", string(data))
	}
	*l = CustomerLimits{}
	return nil
}

// ConfigurationSetRecord is the wire form of one configuration set as it
// crosses the component API boundary. Dates are ISO-8601 strings.
type ConfigurationSetRecord struct {
	ID                                     string         `json:"id"`
	StartDate                              string         `json:"startDate"`
	EndDate                                string         `json:"endDate"`
	DaysFromClaimCustomerToCustomerConsent int            `json:"daysFromClaimCustomerToCustomerConsent"`
	DaysFromCustomerConsentToSubmitClaim   int            `json:"daysFromCustomerConsentToSubmitClaim"`
	DaysFromCustomerConsentToFinalReview   int            `json:"daysFromCustomerConsentToFinalReview"`
	DaysFromClaimRejectionToPartnerDispute int            `json:"daysFromClaimRejectionToPartnerDispute"`
	PartnerSurveyRequired                  bool           `json:"partnerSurveyRequired"`
	CustomerSurveyRequired                 bool           `json:"customerSurveyRequired"`
	SurveyUrlName                          string         `json:"surveyUrlName"`
	CustomerLimits                         CustomerLimits `json:"customerLimits"`
}

// ConfigurationSet is one time-bounded slice of customer-association
// configuration within an engagement's window. Its stored end date is
// informational only: the authoritative end date is always derived from the
// next set's start date (or the engagement end) by the owning aggregate.
type ConfigurationSet struct {
	ID        string
	StartDate time.Time

	// EndDate as loaded from the wire, kept for sync with the base record.
	// Never consulted for partition decisions.
	EndDate string

	DaysFromClaimCustomerToCustomerConsent int
	DaysFromCustomerConsentToSubmitClaim   int
	DaysFromCustomerConsentToFinalReview   int
	DaysFromClaimRejectionToPartnerDispute int
	PartnerSurveyRequired                  bool
	CustomerSurveyRequired                 bool
	SurveyUrlName                          string
	CustomerLimits                         CustomerLimits
}

// NewConfigurationSet builds a ConfigurationSet from its wire record,
// normalizing the start date to a UTC timestamp.
func NewConfigurationSet(record ConfigurationSetRecord) (*ConfigurationSet, error) {
	start, err := utils.ParseISODate(record.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration set start date %q: %w", record.StartDate, err)
	}

	return &ConfigurationSet{
		ID:                                     record.ID,
		StartDate:                              start,
		EndDate:                                record.EndDate,
		DaysFromClaimCustomerToCustomerConsent: record.DaysFromClaimCustomerToCustomerConsent,
		DaysFromCustomerConsentToSubmitClaim:   record.DaysFromCustomerConsentToSubmitClaim,
		DaysFromCustomerConsentToFinalReview:   record.DaysFromCustomerConsentToFinalReview,
		DaysFromClaimRejectionToPartnerDispute: record.DaysFromClaimRejectionToPartnerDispute,
		PartnerSurveyRequired:                  record.PartnerSurveyRequired,
		CustomerSurveyRequired:                 record.CustomerSurveyRequired,
		SurveyUrlName:                          record.SurveyUrlName,
		CustomerLimits:                         record.CustomerLimits,
	}, nil
}

// DefaultConfigurationSet returns a set with zeroed business parameters
// starting at the given date.
func DefaultConfigurationSet(start time.Time) *ConfigurationSet {
	return &ConfigurationSet{
		StartDate:      start.UTC(),
		CustomerLimits: CustomerLimits{},
	}
}

// IsEditableAt reports whether the set can still be edited at the given
// reference time: sets whose start date lies on a past UTC day are frozen,
// sets starting today or later are editable.
func (c *ConfigurationSet) IsEditableAt(now time.Time) bool {
	return !utils.IsBeforeDay(c.StartDate, now)
}

// Clone returns a copy of the set's business payload without its identity.
func (c *ConfigurationSet) Clone() *ConfigurationSet {
	clone := *c
	clone.ID = ""
	clone.CustomerLimits = append(CustomerLimits{}, c.CustomerLimits...)
	return &clone
}

// ToRecord serializes the set to wire form. The caller supplies the derived
// end date (see the owning aggregate's ConfigSetEndDate); the stored end
// date string is deliberately ignored.
func (c *ConfigurationSet) ToRecord(derivedEnd time.Time) ConfigurationSetRecord {
	limits := c.CustomerLimits
	if limits == nil {
		limits = CustomerLimits{}
	}
	return ConfigurationSetRecord{
		ID:                                     c.ID,
		StartDate:                              utils.FormatISODate(c.StartDate),
		EndDate:                                utils.FormatISODate(derivedEnd),
		DaysFromClaimCustomerToCustomerConsent: c.DaysFromClaimCustomerToCustomerConsent,
		DaysFromCustomerConsentToSubmitClaim:   c.DaysFromCustomerConsentToSubmitClaim,
		DaysFromCustomerConsentToFinalReview:   c.DaysFromCustomerConsentToFinalReview,
		DaysFromClaimRejectionToPartnerDispute: c.DaysFromClaimRejectionToPartnerDispute,
		PartnerSurveyRequired:                  c.PartnerSurveyRequired,
		CustomerSurveyRequired:                 c.CustomerSurveyRequired,
		SurveyUrlName:                          c.SurveyUrlName,
		CustomerLimits:                         limits,
	}
}

// ConfigSetRecordList stores a component's configuration sets as a jsonb
// column.
type ConfigSetRecordList []ConfigurationSetRecord

// Value implements the driver.Valuer interface for ConfigSetRecordList
func (l ConfigSetRecordList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for ConfigSetRecordList
func (l *ConfigSetRecordList) Scan(value any) error {
	if value == nil {
		*l = ConfigSetRecordList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConfigSetRecordList", value)
	}

	return json.Unmarshal(bytes, l)
}
