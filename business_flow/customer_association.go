// Package businessflow contains the core business logic and use cases for engagement configuration workflows
package businessflow

import (
	"sort"
	"time"

	"github.com/partnerincentives/engagements-config/models"
	"github.com/partnerincentives/engagements-config/utils"
)

// DeletePolicy is an injected capability check consulted before a
// configuration set may be removed from the partition. The chronologically
// first set is protected regardless of policy.
type DeletePolicy func(set *models.ConfigurationSet, now time.Time) bool

// DefaultDeletePolicy permits deleting sets that have not started yet.
func DefaultDeletePolicy(set *models.ConfigurationSet, now time.Time) bool {
	return set.IsEditableAt(now)
}

// AssociationOption customizes a CustomerAssociation at construction time.
type AssociationOption func(*CustomerAssociation)

// WithClock injects the reference clock used for "today" decisions
// (editability, date availability). Defaults to utils.UTCNow.
func WithClock(now func() time.Time) AssociationOption {
	return func(c *CustomerAssociation) {
		c.now = now
	}
}

// WithDeletePolicy injects the capability check used by DeleteConfigSet and
// start-date moves in UpdateConfigSet.
func WithDeletePolicy(policy DeletePolicy) AssociationOption {
	return func(c *CustomerAssociation) {
		c.canDelete = policy
	}
}

// CustomerAssociation owns the ordered configuration-set partition of one
// engagement's [startDate, endDate) window. The partition is always
// non-empty, sorted ascending by start date, free of duplicate start dates,
// and gapless: each set's end date is derived from its successor's start
// date (or the engagement end for the last set), never stored.
//
// The aggregate is built fresh from a wire record on every load or save
// response; it is never incrementally reopened, so the invariants above are
// re-validated rather than trusted. All operations are synchronous and the
// type is not safe for concurrent use.
type CustomerAssociation struct {
	id                string
	engagementID      string
	engagementVersion int

	engagementState        models.EngagementStatus
	proxyEngagementID      string
	proxyEngagementVersion int
	approvedVersions       []int64
	engagementStartDate    time.Time
	engagementEndDate      time.Time
	programGuid            string
	partnerRole            models.PartnerRole
	solutionArea           models.SolutionArea
	associationType        models.AssociationType

	configSets         []*models.ConfigurationSet
	hasSavedConfigSets bool
	isEditable         bool

	// The record as originally loaded, kept verbatim for change detection.
	initial models.CustomerAssociationRecord

	now       func() time.Time
	canDelete DeletePolicy
}

// NewCustomerAssociation builds the aggregate from a component response.
// Missing component data degrades to a single default configuration set
// spanning the whole engagement window. isEditable is the caller's
// write-permission flag; it is combined with the engagement state's own
// editability.
func NewCustomerAssociation(record models.CustomerAssociationRecord, isEditable bool, opts ...AssociationOption) (*CustomerAssociation, error) {
	startDate, err := utils.ParseISODate(record.Metadata.StartDate)
	if err != nil {
		return nil, NewBusinessErrorf("INVALID_ENGAGEMENT_WINDOW", "invalid engagement start date %q", ErrInvalidEngagementWindow, record.Metadata.StartDate)
	}
	endDate, err := utils.ParseISODate(record.Metadata.EndDate)
	if err != nil {
		return nil, NewBusinessErrorf("INVALID_ENGAGEMENT_WINDOW", "invalid engagement end date %q", ErrInvalidEngagementWindow, record.Metadata.EndDate)
	}

	c := &CustomerAssociation{
		engagementState:        record.Metadata.State,
		proxyEngagementID:      record.Metadata.ID,
		proxyEngagementVersion: record.Metadata.Version,
		approvedVersions:       record.Metadata.ApprovedVersions,
		engagementStartDate:    startDate,
		engagementEndDate:      endDate,
		programGuid:            record.Metadata.ProgramGuid,
		partnerRole:            record.Metadata.PartnerRole,
		solutionArea:           record.Metadata.SolutionArea,
		associationType:        record.Metadata.AssociationType,
		now:                    utils.UTCNow,
		canDelete:              DefaultDeletePolicy,
	}
	for _, opt := range opts {
		opt(c)
	}

	if record.Component != nil && record.Component.ID != "" {
		c.id = record.Component.ID
		c.engagementID = record.Component.EngagementID
		c.engagementVersion = record.Component.EngagementVersion
	} else {
		c.engagementID = record.Metadata.ID
		c.engagementVersion = record.Metadata.Version
	}

	if record.Component != nil {
		for _, raw := range record.Component.ConfigSets {
			set, err := models.NewConfigurationSet(raw)
			if err != nil {
				return nil, NewBusinessErrorf("INVALID_CONFIG_SET", "invalid configuration set in component: %v", ErrInvalidConfigSet, err)
			}
			c.configSets = append(c.configSets, set)
		}
	}

	c.hasSavedConfigSets = record.Component != nil && record.Component.ID != ""
	for _, set := range c.configSets {
		if set.ID != "" {
			c.hasSavedConfigSets = true
			break
		}
	}

	// An unconfigured engagement is represented by one default set covering
	// the whole window.
	if len(c.configSets) == 0 {
		c.configSets = []*models.ConfigurationSet{models.DefaultConfigurationSet(c.engagementStartDate)}
	}

	c.isEditable = c.engagementState.IsEditable() && isEditable

	c.sortConfigSetsAscending()

	c.initial = record

	return c, nil
}

func (c *CustomerAssociation) sortConfigSetsAscending() {
	sort.SliceStable(c.configSets, func(i, j int) bool {
		return c.configSets[i].StartDate.Before(c.configSets[j].StartDate)
	})
}

// indexOfStartDate locates a set by UTC-day start date equality.
func (c *CustomerAssociation) indexOfStartDate(date time.Time) int {
	for i, set := range c.configSets {
		if utils.IsSameDay(set.StartDate, date) {
			return i
		}
	}
	return -1
}

// ID returns the component instance id; empty until first saved.
func (c *CustomerAssociation) ID() string {
	return c.id
}

// EngagementID returns the id of the owning engagement.
func (c *CustomerAssociation) EngagementID() string {
	return c.engagementID
}

// EngagementVersion returns the engagement version the component is bound to.
func (c *CustomerAssociation) EngagementVersion() int {
	return c.engagementVersion
}

// EngagementStartDate returns the start of the engagement window.
func (c *CustomerAssociation) EngagementStartDate() time.Time {
	return c.engagementStartDate
}

// EngagementEndDate returns the end of the engagement window.
func (c *CustomerAssociation) EngagementEndDate() time.Time {
	return c.engagementEndDate
}

// IsEditable reports whether callers may mutate the association: the
// engagement state must allow edits and the caller must hold write
// permission. Advisory only; individual operations do not re-check it.
func (c *CustomerAssociation) IsEditable() bool {
	return c.isEditable
}

// HasSavedConfigSets reports whether any configuration has been persisted,
// which decides create-versus-update on save.
func (c *CustomerAssociation) HasSavedConfigSets() bool {
	return c.hasSavedConfigSets
}

// ConfigSets returns the live ordered partition. Callers may read through
// the returned pointers; mutations go through UpdateConfigSet so the
// partition invariants are re-checked.
func (c *CustomerAssociation) ConfigSets() []*models.ConfigurationSet {
	return c.configSets
}

// NonEditableConfigSets returns the sets frozen in the past.
func (c *CustomerAssociation) NonEditableConfigSets() []*models.ConfigurationSet {
	now := c.now()
	var sets []*models.ConfigurationSet
	for _, set := range c.configSets {
		if !set.IsEditableAt(now) {
			sets = append(sets, set)
		}
	}
	return sets
}

// EditableConfigSets returns the sets starting today or later.
func (c *CustomerAssociation) EditableConfigSets() []*models.ConfigurationSet {
	now := c.now()
	var sets []*models.ConfigurationSet
	for _, set := range c.configSets {
		if set.IsEditableAt(now) {
			sets = append(sets, set)
		}
	}
	return sets
}

// ConfigSetEndDate derives the authoritative end date of a set: the end of
// the UTC day immediately preceding the next set's start date, or the
// engagement end date for the last set.
func (c *CustomerAssociation) ConfigSetEndDate(set *models.ConfigurationSet) time.Time {
	idx := c.indexOfStartDate(set.StartDate)
	if idx < 0 || idx == len(c.configSets)-1 {
		return c.engagementEndDate
	}
	return utils.EndOfPreviousUTCDay(c.configSets[idx+1].StartDate)
}

// IsDateAvailable reports whether a candidate start date may host a new
// configuration set: on or after both today and the engagement start, on or
// before the engagement end, and not already taken. Window boundary dates
// are available while unoccupied.
func (c *CustomerAssociation) IsDateAvailable(date time.Time) bool {
	if utils.IsBeforeDay(date, c.now()) {
		return false
	}
	if utils.IsBeforeDay(date, c.engagementStartDate) || utils.IsAfterDay(date, c.engagementEndDate) {
		return false
	}
	return c.indexOfStartDate(date) < 0
}

// AddConfigSet appends a default-valued set starting at the given date and
// re-sorts. Unavailable dates leave the partition untouched; the current
// partition is returned either way.
func (c *CustomerAssociation) AddConfigSet(startDate time.Time) []*models.ConfigurationSet {
	if !c.IsDateAvailable(startDate) {
		return c.configSets
	}
	c.configSets = append(c.configSets, models.DefaultConfigurationSet(startDate))
	c.sortConfigSetsAscending()
	return c.configSets
}

// CloneConfigSet appends a copy of source's business payload (without its
// identity) starting at the given date and re-sorts. Unavailable dates leave
// the partition untouched.
func (c *CustomerAssociation) CloneConfigSet(startDate time.Time, source *models.ConfigurationSet) []*models.ConfigurationSet {
	if !c.IsDateAvailable(startDate) {
		return c.configSets
	}
	clone := source.Clone()
	clone.StartDate = utils.TimeToUTC(startDate)
	c.configSets = append(c.configSets, clone)
	c.sortConfigSetsAscending()
	return c.configSets
}

// canDeleteConfigSet guards removal: the chronologically first set anchors
// the partition to the engagement start and can never be removed; all other
// sets are subject to the injected policy.
func (c *CustomerAssociation) canDeleteConfigSet(set *models.ConfigurationSet) bool {
	if len(c.configSets) == 0 {
		return false
	}
	if utils.IsSameDay(set.StartDate, c.configSets[0].StartDate) {
		return false
	}
	return c.canDelete(set, c.now())
}

// DeleteConfigSet removes the set sharing the given set's start date.
// Returns whether removal occurred.
func (c *CustomerAssociation) DeleteConfigSet(set *models.ConfigurationSet) bool {
	if !c.canDeleteConfigSet(set) {
		return false
	}
	idx := c.indexOfStartDate(set.StartDate)
	if idx < 0 {
		return false
	}
	c.configSets = append(c.configSets[:idx], c.configSets[idx+1:]...)
	return true
}

// UpdateConfigSet replaces the set currently starting at startDate with a
// set built from the supplied payload, then re-sorts. It fails (returning
// false, with no mutation) when no set starts at startDate, when that set is
// no longer editable, or, if the payload moves the start date, when the
// new date is unavailable or vacating the original slot is not permitted.
func (c *CustomerAssociation) UpdateConfigSet(payload *models.ConfigurationSet, startDate time.Time) bool {
	idx := c.indexOfStartDate(startDate)
	if idx < 0 || !c.configSets[idx].IsEditableAt(c.now()) {
		return false
	}
	if !utils.IsSameDay(startDate, payload.StartDate) {
		if !c.IsDateAvailable(payload.StartDate) {
			return false
		}
		if !c.canDeleteConfigSet(c.configSets[idx]) {
			return false
		}
	}
	next := *payload
	next.CustomerLimits = append(models.CustomerLimits{}, payload.CustomerLimits...)
	c.configSets[idx] = &next
	c.sortConfigSetsAscending()
	return true
}

// IsConfigSetModified reports whether a set differs from the loaded
// baseline. A set is modified when no baseline set shares its start date
// (it is new), or when its derived end date shifted, which happens when a
// sibling's start date changed even if this set's own fields are untouched.
func (c *CustomerAssociation) IsConfigSetModified(set *models.ConfigurationSet) bool {
	baseline, err := NewCustomerAssociation(c.initial, true, WithClock(c.now), WithDeletePolicy(c.canDelete))
	if err != nil {
		return true
	}

	var matches []*models.ConfigurationSet
	for _, original := range baseline.ConfigSets() {
		if utils.IsSameDay(set.StartDate, original.StartDate) {
			matches = append(matches, original)
		}
	}
	if len(matches) == 1 {
		return !utils.IsSameDay(c.ConfigSetEndDate(set), baseline.ConfigSetEndDate(matches[0]))
	}
	return true
}

// ToComponentRecord serializes the association back to wire form with a
// fresh creation timestamp. Each set's end date is the derived one.
func (c *CustomerAssociation) ToComponentRecord() models.AssociationComponentRecord {
	configSets := make([]models.ConfigurationSetRecord, 0, len(c.configSets))
	for _, set := range c.configSets {
		configSets = append(configSets, set.ToRecord(c.ConfigSetEndDate(set)))
	}
	return models.AssociationComponentRecord{
		ID:                c.id,
		EngagementID:      c.engagementID,
		EngagementVersion: c.engagementVersion,
		CreationDate:      utils.FormatISODate(c.now()),
		ConfigSets:        configSets,
	}
}

// ToRecord rebuilds the full external record: engagement metadata plus the
// serialized component.
func (c *CustomerAssociation) ToRecord() models.CustomerAssociationRecord {
	component := c.ToComponentRecord()
	return models.CustomerAssociationRecord{
		Metadata: models.EngagementMetadata{
			ID:               c.proxyEngagementID,
			State:            c.engagementState,
			Version:          c.proxyEngagementVersion,
			ApprovedVersions: c.approvedVersions,
			StartDate:        utils.FormatISODate(c.engagementStartDate),
			EndDate:          utils.FormatISODate(c.engagementEndDate),
			ProgramGuid:      c.programGuid,
			PartnerRole:      c.partnerRole,
			SolutionArea:     c.solutionArea,
			AssociationType:  c.associationType,
		},
		Component: &component,
	}
}

// DeepCopy reconstructs an independent association from the serialized
// current state. This is the supported mechanism for "discard changes" and
// for producing snapshots.
func (c *CustomerAssociation) DeepCopy() (*CustomerAssociation, error) {
	return NewCustomerAssociation(c.ToRecord(), c.isEditable, WithClock(c.now), WithDeletePolicy(c.canDelete))
}

// Duration-change warnings surfaced when the engagement window changed
// server-side underneath an open editing session.
const (
	EngagementEndDateMovedBackMessage    = "The last config set's end date is after the engagement end date. Click save to adjust the configuration to the new engagement duration."
	EngagementEndDateMovedForwardMessage = "The last config set's end date is before the engagement end date. Click save to adjust the configuration to the new engagement duration."
)

// EngagementDurationChange flags a server-side engagement window change
// detected between a held association and a freshly fetched record.
type EngagementDurationChange struct {
	Changed bool
	Message string
}

// DetectEngagementDurationChange compares a freshly fetched record's last
// stored config-set end date against the held association's engagement end
// date. A later end date means the engagement was moved back (shortened
// window on our side), an earlier one that it was moved forward.
func DetectEngagementDurationChange(record models.CustomerAssociationRecord, held *CustomerAssociation) EngagementDurationChange {
	if record.Component == nil || len(record.Component.ConfigSets) == 0 {
		return EngagementDurationChange{}
	}

	configSets := append([]models.ConfigurationSetRecord{}, record.Component.ConfigSets...)
	sort.SliceStable(configSets, func(i, j int) bool {
		left, errL := utils.ParseISODate(configSets[i].StartDate)
		right, errR := utils.ParseISODate(configSets[j].StartDate)
		if errL != nil || errR != nil {
			return configSets[i].StartDate < configSets[j].StartDate
		}
		return left.Before(right)
	})

	lastEnd, err := utils.ParseISODate(configSets[len(configSets)-1].EndDate)
	if err != nil {
		return EngagementDurationChange{}
	}
	if utils.IsAfterDay(lastEnd, held.EngagementEndDate()) {
		return EngagementDurationChange{Changed: true, Message: EngagementEndDateMovedBackMessage}
	}
	if utils.IsBeforeDay(lastEnd, held.EngagementEndDate()) {
		return EngagementDurationChange{Changed: true, Message: EngagementEndDateMovedForwardMessage}
	}
	return EngagementDurationChange{}
}
