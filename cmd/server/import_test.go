package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camp-rental/backend/internal/config"
	"github.com/camp-rental/backend/internal/storage/models"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg = &config.Config{
		DataDir:    t.TempDir(),
		Timezone:   "UTC",
		MaxRetries: 1,
		RetryBase:  time.Millisecond,
		PaymentURL: "http://payments.test",
	}
	a, err := newApp(nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.store.Camps.Create(context.Background(), &models.Camp{
		ID:     "camp-1",
		HostID: "host-1",
		Name:   "Pine Ridge",
		Status: models.CampStatusActive,
	}))
	return a
}

const sampleExport = `{
	"bookings": [
		{"id": "b1", "campId": "camp-1", "checkInDate": "2026-08-01", "checkOutDate": "2026-08-02", "status": "confirmed"},
		{"_id": "b2", "camp_id": "camp-1", "startDate": {"seconds": 1786406400}, "status": "cancelled"}
	],
	"blockedDates": [
		{"id": "x1", "campId": "camp-1", "startDate": "2026-07-30", "endDate": "2026-08-02", "category": "maintenance"},
		{"id": "x2", "campId": "camp-1", "startDate": "2026-08-10", "endDate": "2026-08-11", "reason": "family visit", "category": "personal"}
	]
}`

func TestRestoreExport_RefusesBlocksOverBookings(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	var export exportFile
	require.NoError(t, json.Unmarshal([]byte(sampleExport), &export))

	var out bytes.Buffer
	bookings, blocks := decodeExport(&out, export, time.UTC)
	require.Len(t, bookings, 2)
	require.Len(t, blocks, 2)

	summary, err := restoreExport(ctx, &out, a, bookings, blocks)
	require.NoError(t, err)
	assert.Equal(t, importSummary{Bookings: 2, Blocks: 1, Refused: 1}, summary)
	assert.Contains(t, out.String(), "covers bookings b1")

	stored, err := a.store.ListBlockedRanges(ctx, "camp-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "x2", stored[0].ID)
}

func TestRestoreExport_IsRepeatable(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	var export exportFile
	require.NoError(t, json.Unmarshal([]byte(sampleExport), &export))

	var out bytes.Buffer
	bookings, blocks := decodeExport(&out, export, time.UTC)
	_, err := restoreExport(ctx, &out, a, bookings, blocks)
	require.NoError(t, err)

	bookings, blocks = decodeExport(&out, export, time.UTC)
	summary, err := restoreExport(ctx, &out, a, bookings, blocks)
	require.NoError(t, err)
	assert.Equal(t, importSummary{Refused: 1}, summary)
}
