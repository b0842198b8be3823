package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-tracker/internal/core"
)

func TestFuelEntryUnmarshalJSON(t *testing.T) {
	t.Parallel()

	type want struct {
		date    time.Time
		invalid bool
	}

	tcs := []struct {
		name    string
		payload string
		want    want
	}{
		{
			name:    "mobile export with milliseconds",
			payload: `{"id":"1709539200000","date":"2024-03-04T08:00:00.000Z","cost":50,"amount":10,"pricePerUnit":5}`,
			want:    want{date: time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)},
		},
		{
			name:    "bare calendar date",
			payload: `{"id":"a","date":"2024-03-04","cost":50,"amount":10}`,
			want:    want{date: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:    "unparseable date",
			payload: `{"id":"a","date":"next tuesday","cost":50,"amount":10}`,
			want:    want{invalid: true},
		},
		{
			name:    "missing date",
			payload: `{"id":"a","cost":50,"amount":10}`,
			want:    want{invalid: true},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var entry core.FuelEntry
			err := json.Unmarshal([]byte(tc.payload), &entry)
			if tc.want.invalid {
				assert.ErrorIs(t, err, core.ErrInvalidDate, tc.name)
				return
			}
			require.NoError(t, err, tc.name)
			assert.True(t, tc.want.date.Equal(entry.Date), "%s: got %s", tc.name, entry.Date)
			assert.Equal(t, 50.0, entry.Cost, tc.name)
			assert.Equal(t, 10.0, entry.Amount, tc.name)
		})
	}
}

func TestFuelEntryJSONKeepsOptionalFields(t *testing.T) {
	t.Parallel()

	odometer := 88000.5
	entry := core.FuelEntry{
		Meta:         core.Meta{ID: "x"},
		Date:         time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC),
		Cost:         30,
		Amount:       15,
		Unit:         core.UnitLiters,
		PricePerUnit: 2,
		Odometer:     &odometer,
		Notes:        "full tank",
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded core.FuelEntry
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Odometer)
	assert.Equal(t, odometer, *decoded.Odometer)
	assert.Equal(t, "full tank", decoded.Notes)
	assert.Equal(t, core.UnitLiters, decoded.Unit)
	assert.True(t, entry.Date.Equal(decoded.Date))
}

func TestParseUnit(t *testing.T) {
	t.Parallel()

	u, err := core.ParseUnit(" Gallons ")
	require.NoError(t, err)
	assert.Equal(t, core.UnitGallons, u)
	assert.Equal(t, "gal", u.Suffix())

	_, err = core.ParseUnit("pints")
	assert.ErrorIs(t, err, core.ErrInvalidUnit)
}
