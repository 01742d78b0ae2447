// Package importer parses the machine roster CSV used by the destructive
// reset-and-import operation.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"machine-maintenance-backend/internal/store"
)

// ParseRoster reads a roster CSV with a (patrimonio, tipo, setor, status)
// header row and returns one MachineRow per data row. Column order is taken
// from the header; a UTF-8 BOM on the first cell is tolerated. Rows shorter
// than the header are skipped.
func ParseRoster(r io.Reader) ([]store.MachineRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		idx[strings.ToLower(name)] = i
	}
	tagCol, ok := idx["patrimonio"]
	if !ok {
		return nil, fmt.Errorf("roster header is missing the patrimonio column")
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []store.MachineRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading roster row: %w", err)
		}
		if tagCol >= len(record) {
			continue
		}
		rows = append(rows, store.MachineRow{
			AssetTag: field(record, "patrimonio"),
			Type:     field(record, "tipo"),
			Sector:   field(record, "setor"),
			Status:   field(record, "status"),
		})
	}
	return rows, nil
}
