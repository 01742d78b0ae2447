package store

import "time"

// MachineFilter selects machines for listing and export.
type MachineFilter struct {
	ExcludeDeactivated bool
	Sector             string
}

// TicketFilter scopes ticket queries and statistics. Year and Month only
// take effect when both are set (month 1-12); a lone year or month is
// treated as no time filter. Sector is an exact match; blank means no
// restriction.
type TicketFilter struct {
	Year   int
	Month  int
	Sector string
}

// Window returns the half-open [start, end) aggregation window, or ok=false
// when the filter carries no usable year+month pair. December rolls over to
// January of the next year.
func (f TicketFilter) Window() (start, end time.Time, ok bool) {
	if f.Year <= 0 || f.Month < 1 || f.Month > 12 {
		return time.Time{}, time.Time{}, false
	}
	start = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), true
}

// ProblemCount is one entry of a per-machine problem breakdown.
type ProblemCount struct {
	Problem string `json:"problema"`
	Count   int64  `json:"count"`
}

// StatsResult is the dashboard aggregation: all three maps are computed
// from the same filtered ticket set.
type StatsResult struct {
	// TotalsByType has one entry per catalog machine type, zero-defaulted.
	// Types outside the catalog are not reported.
	TotalsByType map[string]int64 `json:"totals_tipo"`
	// TotalsByMachine maps asset tag to ticket count; only machines with at
	// least one matching ticket appear.
	TotalsByMachine map[string]int64 `json:"totals_machine"`
	// ProblemsByMachine maps asset tag to its problem breakdown, ordered by
	// count descending.
	ProblemsByMachine map[string][]ProblemCount `json:"problems"`
}

// MachineRow is the flat machine projection used by the CSV export and the
// roster import.
type MachineRow struct {
	AssetTag string
	Type     string
	Sector   string
	Status   string
}

// TicketRow is the flat ticket projection used by the CSV export.
type TicketRow struct {
	ID         int64
	AssetTag   string
	Type       string
	Sector     string
	Problem    string
	Notes      string
	Status     string
	OpenedAt   time.Time
	ReportedBy string
}
