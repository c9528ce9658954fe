package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2026, 7, 14, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2026, 7, 14, 23, 59, 59, 0, time.UTC)

	assert.True(t, DateOf(morning).Equal(DateOf(evening)))
	assert.Equal(t, "2026-07-14", DateOf(evening).String())
}

func TestDateInUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	instant := time.Date(2026, 7, 14, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-07-15", DateIn(instant, loc).String())
	assert.Equal(t, "2026-07-14", DateIn(instant, nil).String())
}

func TestDateAddDaysRollsOver(t *testing.T) {
	assert.Equal(t, "2027-01-01", MustParseDate("2026-12-31").AddDays(1).String())
	assert.Equal(t, "2026-02-28", MustParseDate("2026-03-01").AddDays(-1).String())
	assert.Equal(t, "2028-02-29", MustParseDate("2028-02-28").AddDays(1).String())
}

func TestDateCompare(t *testing.T) {
	a := MustParseDate("2026-07-14")
	b := MustParseDate("2026-07-15")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.True(t, a.Between(a, b))
	assert.True(t, b.Between(a, b))
	assert.False(t, a.AddDays(-1).Between(a, b))
	assert.False(t, b.AddDays(1).Between(a, b))
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		On Date `json:"on"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2026-08-01"}`), &payload))
	assert.Equal(t, MustParseDate("2026-08-01"), payload.On)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2026-08-01"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"on":"08/01/2026"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2026-08-01"))
	assert.Equal(t, "2026-08-01", d.String())

	require.NoError(t, d.Scan([]byte("2026-08-02T00:00:00Z")))
	assert.Equal(t, "2026-08-02", d.String())

	require.NoError(t, d.Scan(time.Date(2026, 8, 3, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-08-03", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
