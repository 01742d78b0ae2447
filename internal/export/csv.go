// Package export serializes registry and ticket query results to CSV. Both
// writers are pure projections; query errors are handled upstream.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"machine-maintenance-backend/internal/store"
)

// MachineHeader is the column order of the machine export.
var MachineHeader = []string{"patrimonio", "tipo", "setor", "status"}

// TicketHeader is the column order of the ticket export.
var TicketHeader = []string{"id", "patrimonio", "tipo", "setor", "problema", "observacoes", "status", "data_abertura", "aberto_por"}

// WriteMachinesCSV writes the machine export, one row per machine.
func WriteMachinesCSV(w io.Writer, rows []store.MachineRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MachineHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.AssetTag, r.Type, r.Sector, r.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTicketsCSV writes the ticket export, one row per ticket, with
// opened-at timestamps in ISO-8601.
func WriteTicketsCSV(w io.Writer, rows []store.TicketRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TicketHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.AssetTag,
			r.Type,
			r.Sector,
			r.Problem,
			r.Notes,
			r.Status,
			r.OpenedAt.UTC().Format(time.RFC3339),
			r.ReportedBy,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
