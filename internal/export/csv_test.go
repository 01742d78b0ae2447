package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machine-maintenance-backend/internal/store"
)

func TestWriteMachinesCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMachinesCSV(&buf, []store.MachineRow{
		{AssetTag: "M-001", Type: "Overlock", Sector: "A", Status: "active"},
		{AssetTag: "M-002", Type: "Reta", Sector: "", Status: "deactivated"},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, MachineHeader, records[0])
	assert.Equal(t, []string{"M-001", "Overlock", "A", "active"}, records[1])
	assert.Equal(t, []string{"M-002", "Reta", "", "deactivated"}, records[2])
}

func TestWriteTicketsCSV(t *testing.T) {
	opened := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteTicketsCSV(&buf, []store.TicketRow{
		{
			ID:         7,
			AssetTag:   "M-001",
			Type:       "Overlock",
			Sector:     "A",
			Problem:    "Agulha quebrada",
			Notes:      "fio preso, revisar tensão",
			Status:     "open",
			OpenedAt:   opened,
			ReportedBy: "Técnico",
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, TicketHeader, records[0])
	assert.Equal(t, []string{
		"7", "M-001", "Overlock", "A", "Agulha quebrada",
		"fio preso, revisar tensão", "open", "2024-12-31T23:59:59Z", "Técnico",
	}, records[1])
}

func TestWriteTicketsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTicketsCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	// Header only.
	require.Len(t, records, 1)
}
