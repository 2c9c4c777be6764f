// Package businessflow contains the core business logic and use cases for engagement configuration workflows
package businessflow

import (
	"testing"
	"time"

	"github.com/partnerincentives/engagements-config/models"
	"github.com/partnerincentives/engagements-config/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The reference clock for all tests: mid-engagement, mid-day.
var testNow = time.Date(2020, 8, 15, 10, 30, 0, 0, time.UTC)

func testClock() time.Time {
	return testNow
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// testMetadata returns engagement metadata for a window spanning
// 2020-01-02 through 2021-12-31 in the given state.
func testMetadata(state models.EngagementStatus) models.EngagementMetadata {
	return models.EngagementMetadata{
		ID:               "engagement-42",
		State:            state,
		Version:          3,
		ApprovedVersions: []int64{1, 2},
		StartDate:        "2020-01-02T00:00:00.000Z",
		EndDate:          "2021-12-31T23:59:59.999Z",
		ProgramGuid:      "prog-guid-1",
		PartnerRole:      models.PartnerRoleBuildIntent,
		SolutionArea:     models.SolutionAreaAzure,
		AssociationType:  models.AssociationTypeCPOR,
	}
}

func testRecord(state models.EngagementStatus, component *models.AssociationComponentRecord) models.CustomerAssociationRecord {
	return models.CustomerAssociationRecord{
		Metadata:  testMetadata(state),
		Component: component,
	}
}

func configSetRecord(id, start string) models.ConfigurationSetRecord {
	return models.ConfigurationSetRecord{
		ID:             id,
		StartDate:      start,
		CustomerLimits: models.CustomerLimits{},
	}
}

// savedComponent returns a persisted component with sets starting at the
// engagement start, June 1st (already running) and September 1st (upcoming).
func savedComponent() *models.AssociationComponentRecord {
	return &models.AssociationComponentRecord{
		ID:                "component-7",
		EngagementID:      "engagement-42",
		EngagementVersion: 3,
		CreationDate:      "2020-05-01T12:00:00.000Z",
		ConfigSets: []models.ConfigurationSetRecord{
			configSetRecord("set-c", "2020-09-01T00:00:00.000Z"),
			configSetRecord("set-a", "2020-01-02T00:00:00.000Z"),
			configSetRecord("set-b", "2020-06-01T00:00:00.000Z"),
		},
	}
}

func mustAssociation(t *testing.T, record models.CustomerAssociationRecord, isEditable bool, opts ...AssociationOption) *CustomerAssociation {
	t.Helper()
	opts = append([]AssociationOption{WithClock(testClock)}, opts...)
	assoc, err := NewCustomerAssociation(record, isEditable, opts...)
	require.NoError(t, err)
	return assoc
}

func startDates(sets []*models.ConfigurationSet) []time.Time {
	dates := make([]time.Time, 0, len(sets))
	for _, set := range sets {
		dates = append(dates, set.StartDate)
	}
	return dates
}

func setStartingAt(t *testing.T, assoc *CustomerAssociation, date time.Time) *models.ConfigurationSet {
	t.Helper()
	for _, set := range assoc.ConfigSets() {
		if utils.IsSameDay(set.StartDate, date) {
			return set
		}
	}
	t.Fatalf("no config set starting at %s", date)
	return nil
}

func TestNewCustomerAssociation(t *testing.T) {
	t.Run("DefaultSetForMissingComponent", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, nil), true)

		require.Len(t, assoc.ConfigSets(), 1)
		assert.True(t, utils.IsSameDay(assoc.ConfigSets()[0].StartDate, day(2020, time.January, 2)))
		assert.Empty(t, assoc.ID())
		assert.Equal(t, "engagement-42", assoc.EngagementID())
		assert.Equal(t, 3, assoc.EngagementVersion())
		assert.False(t, assoc.HasSavedConfigSets())
		assert.True(t, assoc.IsEditable())
	})

	t.Run("AdoptsSavedComponent", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		assert.Equal(t, "component-7", assoc.ID())
		assert.True(t, assoc.HasSavedConfigSets())

		sets := assoc.ConfigSets()
		require.Len(t, sets, 3)
		assert.Equal(t, []time.Time{
			day(2020, time.January, 2),
			day(2020, time.June, 1),
			day(2020, time.September, 1),
		}, startDates(sets))
	})

	t.Run("UnsavedDraftSetsRetained", func(t *testing.T) {
		component := &models.AssociationComponentRecord{
			ConfigSets: []models.ConfigurationSetRecord{
				configSetRecord("", "2020-01-02T00:00:00.000Z"),
				configSetRecord("", "2020-10-01T00:00:00.000Z"),
			},
		}
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, component), true)

		assert.Empty(t, assoc.ID())
		assert.False(t, assoc.HasSavedConfigSets())
		assert.Len(t, assoc.ConfigSets(), 2)
	})

	t.Run("InvalidEngagementWindow", func(t *testing.T) {
		record := testRecord(models.EngagementStatusDraft, nil)
		record.Metadata.StartDate = "not-a-date"

		_, err := NewCustomerAssociation(record, true, WithClock(testClock))
		require.Error(t, err)
		assert.True(t, IsInvalidEngagementWindow(err))
	})

	t.Run("InvalidConfigSet", func(t *testing.T) {
		component := &models.AssociationComponentRecord{
			ConfigSets: []models.ConfigurationSetRecord{configSetRecord("set-x", "garbage")},
		}

		_, err := NewCustomerAssociation(testRecord(models.EngagementStatusDraft, component), true, WithClock(testClock))
		require.Error(t, err)
		assert.True(t, IsInvalidConfigSet(err))
	})

	t.Run("Editability", func(t *testing.T) {
		tests := []struct {
			name     string
			state    models.EngagementStatus
			canEdit  bool
			editable bool
		}{
			{"draft with permission", models.EngagementStatusDraft, true, true},
			{"draft without permission", models.EngagementStatusDraft, false, false},
			{"rejected with permission", models.EngagementStatusRejected, true, true},
			{"action required with permission", models.EngagementStatusMicrosoftActionRequired, true, true},
			{"submitted with permission", models.EngagementStatusSubmitted, true, false},
			{"approved with permission", models.EngagementStatusApproved, true, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assoc := mustAssociation(t, testRecord(tt.state, nil), tt.canEdit)
				assert.Equal(t, tt.editable, assoc.IsEditable())
			})
		}
	})
}

func TestConfigSetEndDate(t *testing.T) {
	assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	first := setStartingAt(t, assoc, day(2020, time.January, 2))
	second := setStartingAt(t, assoc, day(2020, time.June, 1))
	last := setStartingAt(t, assoc, day(2020, time.September, 1))

	// Each set ends at 23:59:59.999 of the day before its successor starts.
	assert.Equal(t, time.Date(2020, time.May, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), assoc.ConfigSetEndDate(first))
	assert.Equal(t, time.Date(2020, time.August, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), assoc.ConfigSetEndDate(second))

	// The last set absorbs the remainder of the engagement window.
	assert.Equal(t, assoc.EngagementEndDate(), assoc.ConfigSetEndDate(last))
}

func TestEditableSplit(t *testing.T) {
	assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	frozen := assoc.NonEditableConfigSets()
	require.Len(t, frozen, 2)
	assert.Equal(t, []time.Time{day(2020, time.January, 2), day(2020, time.June, 1)}, startDates(frozen))

	editable := assoc.EditableConfigSets()
	require.Len(t, editable, 1)
	assert.True(t, utils.IsSameDay(editable[0].StartDate, day(2020, time.September, 1)))
}

func TestIsDateAvailable(t *testing.T) {
	assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	tests := []struct {
		name      string
		date      time.Time
		available bool
	}{
		{"yesterday", day(2020, time.August, 14), false},
		{"today", day(2020, time.August, 15), true},
		{"open future date", day(2020, time.October, 1), true},
		{"occupied date", day(2020, time.September, 1), false},
		{"before engagement start", day(2019, time.December, 1), false},
		{"after engagement end", day(2022, time.January, 1), false},
		{"engagement end day", day(2021, time.December, 31), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.available, assoc.IsDateAvailable(tt.date))
		})
	}
}

func TestAddConfigSet(t *testing.T) {
	t.Run("AppendsAndSorts", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		sets := assoc.AddConfigSet(day(2020, time.August, 20))
		require.Len(t, sets, 4)
		assert.Equal(t, []time.Time{
			day(2020, time.January, 2),
			day(2020, time.June, 1),
			day(2020, time.August, 20),
			day(2020, time.September, 1),
		}, startDates(sets))
	})

	t.Run("RejectsOccupiedDate", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		sets := assoc.AddConfigSet(day(2020, time.September, 1))
		assert.Len(t, sets, 3)
	})

	t.Run("RejectsPastDate", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		sets := assoc.AddConfigSet(day(2020, time.July, 1))
		assert.Len(t, sets, 3)
	})
}

func TestCloneConfigSet(t *testing.T) {
	assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	source := setStartingAt(t, assoc, day(2020, time.September, 1))
	source.DaysFromClaimCustomerToCustomerConsent = 14
	source.PartnerSurveyRequired = true
	source.CustomerLimits = models.CustomerLimits{{CountryCode: "US", MaxCustomers: 5}}

	t.Run("CopiesPayloadWithoutIdentity", func(t *testing.T) {
		sets := assoc.CloneConfigSet(day(2020, time.November, 1), source)
		require.Len(t, sets, 4)

		clone := setStartingAt(t, assoc, day(2020, time.November, 1))
		assert.Empty(t, clone.ID)
		assert.Equal(t, 14, clone.DaysFromClaimCustomerToCustomerConsent)
		assert.True(t, clone.PartnerSurveyRequired)
		assert.Equal(t, source.CustomerLimits, clone.CustomerLimits)

		// Limits are copied, not shared.
		clone.CustomerLimits[0].MaxCustomers = 99
		assert.Equal(t, 5, source.CustomerLimits[0].MaxCustomers)
	})

	t.Run("RejectsOccupiedDate", func(t *testing.T) {
		sets := assoc.CloneConfigSet(day(2020, time.June, 1), source)
		assert.Len(t, sets, 4)
	})
}

func TestDeleteConfigSet(t *testing.T) {
	t.Run("FirstSetProtected", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		first := setStartingAt(t, assoc, day(2020, time.January, 2))
		assert.False(t, assoc.DeleteConfigSet(first))
		assert.Len(t, assoc.ConfigSets(), 3)
	})

	t.Run("StartedSetProtectedByDefaultPolicy", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		running := setStartingAt(t, assoc, day(2020, time.June, 1))
		assert.False(t, assoc.DeleteConfigSet(running))
		assert.Len(t, assoc.ConfigSets(), 3)
	})

	t.Run("UpcomingSetDeletable", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		upcoming := setStartingAt(t, assoc, day(2020, time.September, 1))
		assert.True(t, assoc.DeleteConfigSet(upcoming))
		assert.Len(t, assoc.ConfigSets(), 2)
	})

	t.Run("InjectedPolicyDenies", func(t *testing.T) {
		deny := func(set *models.ConfigurationSet, now time.Time) bool { return false }
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true, WithDeletePolicy(deny))

		upcoming := setStartingAt(t, assoc, day(2020, time.September, 1))
		assert.False(t, assoc.DeleteConfigSet(upcoming))
		assert.Len(t, assoc.ConfigSets(), 3)
	})
}

func TestUpdateConfigSet(t *testing.T) {
	t.Run("InPlaceEdit", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		payload := setStartingAt(t, assoc, day(2020, time.September, 1)).Clone()
		payload.DaysFromCustomerConsentToSubmitClaim = 30

		assert.True(t, assoc.UpdateConfigSet(payload, day(2020, time.September, 1)))

		updated := setStartingAt(t, assoc, day(2020, time.September, 1))
		assert.Equal(t, 30, updated.DaysFromCustomerConsentToSubmitClaim)
	})

	t.Run("FrozenSetRejected", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		payload := setStartingAt(t, assoc, day(2020, time.June, 1)).Clone()
		payload.PartnerSurveyRequired = true

		assert.False(t, assoc.UpdateConfigSet(payload, day(2020, time.June, 1)))
		assert.False(t, setStartingAt(t, assoc, day(2020, time.June, 1)).PartnerSurveyRequired)
	})

	t.Run("MoveToOpenDate", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		payload := setStartingAt(t, assoc, day(2020, time.September, 1)).Clone()
		payload.StartDate = day(2020, time.October, 15)

		assert.True(t, assoc.UpdateConfigSet(payload, day(2020, time.September, 1)))

		dates := startDates(assoc.ConfigSets())
		assert.Contains(t, dates, day(2020, time.October, 15))
		assert.NotContains(t, dates, day(2020, time.September, 1))
	})

	t.Run("MoveToOccupiedDateRejected", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		payload := setStartingAt(t, assoc, day(2020, time.September, 1)).Clone()
		payload.StartDate = day(2020, time.June, 1)

		assert.False(t, assoc.UpdateConfigSet(payload, day(2020, time.September, 1)))
	})

	t.Run("MoveDeniedByDeletePolicy", func(t *testing.T) {
		deny := func(set *models.ConfigurationSet, now time.Time) bool { return false }
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true, WithDeletePolicy(deny))

		payload := setStartingAt(t, assoc, day(2020, time.September, 1)).Clone()
		payload.StartDate = day(2020, time.October, 15)

		assert.False(t, assoc.UpdateConfigSet(payload, day(2020, time.September, 1)))
	})

	t.Run("UnknownStartDateRejected", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		payload := models.DefaultConfigurationSet(day(2020, time.December, 1))
		assert.False(t, assoc.UpdateConfigSet(payload, day(2020, time.December, 1)))
	})
}

func TestIsConfigSetModified(t *testing.T) {
	t.Run("UntouchedSetUnmodified", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		last := setStartingAt(t, assoc, day(2020, time.September, 1))
		assert.False(t, assoc.IsConfigSetModified(last))
	})

	t.Run("AddedSetModified", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		assoc.AddConfigSet(day(2020, time.October, 1))
		added := setStartingAt(t, assoc, day(2020, time.October, 1))
		assert.True(t, assoc.IsConfigSetModified(added))
	})

	t.Run("SiblingShiftMarksPredecessorModified", func(t *testing.T) {
		assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

		// Inserting after September shortens the September set's derived end.
		assoc.AddConfigSet(day(2020, time.October, 1))

		september := setStartingAt(t, assoc, day(2020, time.September, 1))
		assert.True(t, assoc.IsConfigSetModified(september))

		// The June set keeps its successor, so its derived end is unchanged.
		june := setStartingAt(t, assoc, day(2020, time.June, 1))
		assert.False(t, assoc.IsConfigSetModified(june))
	})
}

func TestToComponentRecord(t *testing.T) {
	assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	record := assoc.ToComponentRecord()

	assert.Equal(t, "component-7", record.ID)
	assert.Equal(t, "engagement-42", record.EngagementID)
	assert.Equal(t, 3, record.EngagementVersion)
	assert.Equal(t, utils.FormatISODate(testNow), record.CreationDate)

	require.Len(t, record.ConfigSets, 3)
	assert.Equal(t, "2020-01-02T00:00:00.000Z", record.ConfigSets[0].StartDate)
	assert.Equal(t, "2020-05-31T23:59:59.999Z", record.ConfigSets[0].EndDate)
	assert.Equal(t, "2020-08-31T23:59:59.999Z", record.ConfigSets[1].EndDate)
	assert.Equal(t, "2021-12-31T23:59:59.999Z", record.ConfigSets[2].EndDate)
}

func TestDeepCopy(t *testing.T) {
	assoc := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	snapshot, err := assoc.DeepCopy()
	require.NoError(t, err)

	assert.Equal(t, assoc.ID(), snapshot.ID())
	assert.Equal(t, startDates(assoc.ConfigSets()), startDates(snapshot.ConfigSets()))

	// Mutating the copy leaves the original untouched.
	snapshot.AddConfigSet(day(2020, time.November, 1))
	assert.Len(t, snapshot.ConfigSets(), 4)
	assert.Len(t, assoc.ConfigSets(), 3)
}

func TestDetectEngagementDurationChange(t *testing.T) {
	held := mustAssociation(t, testRecord(models.EngagementStatusDraft, savedComponent()), true)

	fetched := func(lastEnd string) models.CustomerAssociationRecord {
		component := savedComponent()
		for i := range component.ConfigSets {
			if component.ConfigSets[i].StartDate == "2020-09-01T00:00:00.000Z" {
				component.ConfigSets[i].EndDate = lastEnd
			} else {
				component.ConfigSets[i].EndDate = "2020-05-31T23:59:59.999Z"
			}
		}
		return testRecord(models.EngagementStatusDraft, component)
	}

	t.Run("NoComponent", func(t *testing.T) {
		change := DetectEngagementDurationChange(testRecord(models.EngagementStatusDraft, nil), held)
		assert.False(t, change.Changed)
	})

	t.Run("Unchanged", func(t *testing.T) {
		change := DetectEngagementDurationChange(fetched("2021-12-31T23:59:59.999Z"), held)
		assert.False(t, change.Changed)
	})

	t.Run("EndDateMovedBack", func(t *testing.T) {
		change := DetectEngagementDurationChange(fetched("2022-06-30T23:59:59.999Z"), held)
		assert.True(t, change.Changed)
		assert.Equal(t, EngagementEndDateMovedBackMessage, change.Message)
	})

	t.Run("EndDateMovedForward", func(t *testing.T) {
		change := DetectEngagementDurationChange(fetched("2021-06-30T23:59:59.999Z"), held)
		assert.True(t, change.Changed)
		assert.Equal(t, EngagementEndDateMovedForwardMessage, change.Message)
	})
}
