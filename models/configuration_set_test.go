package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerLimitsUnmarshal(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		var limits CustomerLimits
		err := json.Unmarshal([]byte(`[{"countryCode":"US","maxCustomers":10}]`), &limits)
		require.NoError(t, err)
		require.Len(t, limits, 1)
		assert.Equal(t, "US", limits[0].CountryCode)
		assert.Equal(t, 10, limits[0].MaxCustomers)
	})

	t.Run("LegacyEmptyObject", func(t *testing.T) {
		var limits CustomerLimits
		err := json.Unmarshal([]byte(`{}`), &limits)
		require.NoError(t, err)
		assert.Empty(t, limits)
		assert.NotNil(t, limits)
	})

	t.Run("NonEmptyObjectRejected", func(t *testing.T) {
		var limits CustomerLimits
		err := json.Unmarshal([]byte(`{"US":10}`), &limits)
		assert.Error(t, err)
	})
}

func TestNewConfigurationSet(t *testing.T) {
	t.Run("ParsesStartDate", func(t *testing.T) {
		set, err := NewConfigurationSet(ConfigurationSetRecord{
			ID:        "set-1",
			StartDate: "2020-06-01T00:00:00.000Z",
			EndDate:   "2020-08-31T23:59:59.999Z",
		})
		require.NoError(t, err)
		assert.Equal(t, "set-1", set.ID)
		assert.Equal(t, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), set.StartDate)
		assert.Equal(t, "2020-08-31T23:59:59.999Z", set.EndDate)
	})

	t.Run("RejectsBadStartDate", func(t *testing.T) {
		_, err := NewConfigurationSet(ConfigurationSetRecord{StartDate: "June 1st"})
		assert.Error(t, err)
	})
}

func TestConfigurationSetIsEditableAt(t *testing.T) {
	now := time.Date(2020, 8, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		editable bool
	}{
		{"past day", time.Date(2020, 8, 14, 23, 0, 0, 0, time.UTC), false},
		{"same day earlier hour", time.Date(2020, 8, 15, 0, 0, 0, 0, time.UTC), true},
		{"future day", time.Date(2020, 8, 16, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultConfigurationSet(tt.start)
			assert.Equal(t, tt.editable, set.IsEditableAt(now))
		})
	}
}

func TestConfigurationSetClone(t *testing.T) {
	set := &ConfigurationSet{
		ID:                    "set-1",
		StartDate:             time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		PartnerSurveyRequired: true,
		CustomerLimits:        CustomerLimits{{CountryCode: "DE", MaxCustomers: 3}},
	}

	clone := set.Clone()
	assert.Empty(t, clone.ID)
	assert.True(t, clone.PartnerSurveyRequired)
	assert.Equal(t, set.CustomerLimits, clone.CustomerLimits)

	clone.CustomerLimits[0].MaxCustomers = 7
	assert.Equal(t, 3, set.CustomerLimits[0].MaxCustomers)
}

func TestConfigurationSetToRecord(t *testing.T) {
	set := &ConfigurationSet{
		ID:        "set-1",
		StartDate: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   "ignored-stored-value",
	}

	record := set.ToRecord(time.Date(2020, 8, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC))
	assert.Equal(t, "2020-06-01T00:00:00.000Z", record.StartDate)
	assert.Equal(t, "2020-08-31T23:59:59.999Z", record.EndDate)

	// Nil limits serialize as an empty list, not null.
	assert.NotNil(t, record.CustomerLimits)
	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"customerLimits":[]`)
}

func TestConfigSetRecordListScanValue(t *testing.T) {
	list := ConfigSetRecordList{
		{ID: "set-1", StartDate: "2020-01-02T00:00:00.000Z", CustomerLimits: CustomerLimits{}},
	}

	value, err := list.Value()
	require.NoError(t, err)

	var restored ConfigSetRecordList
	require.NoError(t, restored.Scan(value))
	assert.Equal(t, list, restored)

	t.Run("NilValue", func(t *testing.T) {
		var l ConfigSetRecordList
		require.NoError(t, l.Scan(nil))
		assert.Empty(t, l)
	})

	t.Run("StringValue", func(t *testing.T) {
		var l ConfigSetRecordList
		require.NoError(t, l.Scan(`[{"id":"set-2"}]`))
		require.Len(t, l, 1)
		assert.Equal(t, "set-2", l[0].ID)
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		var l ConfigSetRecordList
		assert.Error(t, l.Scan(42))
	})
}
