package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"machine-maintenance-backend/internal/model"
)

// Sentinel errors for the failure classes callers are expected to branch on.
var (
	ErrNotFound          = errors.New("not found")
	ErrMachineNotFound   = errors.New("machine not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrDuplicateAssetTag = errors.New("asset tag already registered")
	ErrInvalidInput      = errors.New("invalid input")
)

// MachineInput carries the mutable machine fields for create and update.
type MachineInput struct {
	AssetTag string
	Type     string
	Sector   string
	Status   string
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateMachine(ctx context.Context, in MachineInput) (*model.Machine, error)
	UpdateMachine(ctx context.Context, id int64, in MachineInput) (*model.Machine, error)
	GetMachineByID(ctx context.Context, id int64) (*model.Machine, error)
	GetMachineByAssetTag(ctx context.Context, assetTag string) (*model.Machine, error)
	ListMachines(ctx context.Context, f MachineFilter) ([]model.Machine, error)
	DistinctSectors(ctx context.Context) ([]string, error)

	OpenTicket(ctx context.Context, machineID int64, problem, notes, reportedBy string) (*model.Ticket, error)
	SetTicketStatus(ctx context.Context, id int64, status string) (*model.Ticket, error)
	ListTickets(ctx context.Context, f TicketFilter) ([]model.Ticket, error)

	Stats(ctx context.Context, f TicketFilter) (*StatsResult, error)

	MachineExportRows(ctx context.Context, sector string) ([]MachineRow, error)
	TicketExportRows(ctx context.Context, f TicketFilter) ([]TicketRow, error)
	ResetAndImportMachines(ctx context.Context, rows []MachineRow) (int, error)

	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// --- Machine registry ---

func normalizeMachineInput(in MachineInput) (MachineInput, model.MachineStatus, error) {
	in.AssetTag = strings.TrimSpace(in.AssetTag)
	in.Type = strings.TrimSpace(in.Type)
	in.Sector = strings.TrimSpace(in.Sector)

	if in.AssetTag == "" || in.Type == "" {
		return in, "", fmt.Errorf("%w: asset tag and type are required", ErrInvalidInput)
	}

	status := model.MachineActive
	if in.Status != "" {
		parsed, ok := model.ParseMachineStatus(in.Status)
		if !ok {
			return in, "", fmt.Errorf("%w: unknown machine status %q", ErrInvalidInput, in.Status)
		}
		status = parsed
	}
	return in, status, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, in MachineInput) (*model.Machine, error) {
	in, status, err := normalizeMachineInput(in)
	if err != nil {
		return nil, err
	}

	machine := model.Machine{
		AssetTag: in.AssetTag,
		Type:     in.Type,
		Sector:   in.Sector,
		Status:   status,
	}
	if err := s.db.WithContext(ctx).Create(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAssetTag, in.AssetTag)
		}
		return nil, fmt.Errorf("creating machine: %w", err)
	}
	return &machine, nil
}

func (s *gormStore) UpdateMachine(ctx context.Context, id int64, in MachineInput) (*model.Machine, error) {
	in, status, err := normalizeMachineInput(in)
	if err != nil {
		return nil, err
	}

	var machine model.Machine
	if err := s.db.WithContext(ctx).First(&machine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("loading machine %d: %w", id, err)
	}

	// Reject an asset tag already held by a different machine. The unique
	// index backstops this check under concurrent writes.
	var other model.Machine
	err = s.db.WithContext(ctx).Where("asset_tag = ? AND id <> ?", in.AssetTag, id).First(&other).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAssetTag, in.AssetTag)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking asset tag %q: %w", in.AssetTag, err)
	}

	machine.AssetTag = in.AssetTag
	machine.Type = in.Type
	machine.Sector = in.Sector
	machine.Status = status
	if err := s.db.WithContext(ctx).Save(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAssetTag, in.AssetTag)
		}
		return nil, fmt.Errorf("updating machine %d: %w", id, err)
	}
	return &machine, nil
}

func (s *gormStore) GetMachineByID(ctx context.Context, id int64) (*model.Machine, error) {
	var machine model.Machine
	if err := s.db.WithContext(ctx).First(&machine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return &machine, nil
}

func (s *gormStore) GetMachineByAssetTag(ctx context.Context, assetTag string) (*model.Machine, error) {
	var machine model.Machine
	err := s.db.WithContext(ctx).Where("asset_tag = ?", assetTag).First(&machine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return &machine, nil
}

func (s *gormStore) ListMachines(ctx context.Context, f MachineFilter) ([]model.Machine, error) {
	q := s.db.WithContext(ctx).Model(&model.Machine{})
	if f.ExcludeDeactivated {
		q = q.Where("status <> ?", model.MachineDeactivated)
	}
	if f.Sector != "" {
		q = q.Where("sector = ?", f.Sector)
	}

	var machines []model.Machine
	if err := q.Order("type, asset_tag").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("listing machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) DistinctSectors(ctx context.Context) ([]string, error) {
	var sectors []string
	err := s.db.WithContext(ctx).
		Model(&model.Machine{}).
		Where("sector <> ''").
		Distinct().
		Order("sector").
		Pluck("sector", &sectors).Error
	if err != nil {
		return nil, fmt.Errorf("listing sectors: %w", err)
	}
	return sectors, nil
}

// --- Ticket store ---

func (s *gormStore) OpenTicket(ctx context.Context, machineID int64, problem, notes, reportedBy string) (*model.Ticket, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, fmt.Errorf("%w: problem is required", ErrInvalidInput)
	}

	if _, err := s.GetMachineByID(ctx, machineID); err != nil {
		return nil, err
	}

	ticket := model.Ticket{
		MachineID:  machineID,
		Problem:    problem,
		Notes:      strings.TrimSpace(notes),
		Status:     model.TicketOpen,
		OpenedAt:   time.Now().UTC(),
		ReportedBy: reportedBy,
	}
	if err := s.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		return nil, fmt.Errorf("opening ticket: %w", err)
	}
	return &ticket, nil
}

// SetTicketStatus applies a caller-driven status change. Unrecognized
// status values are a documented no-op: the ticket is returned unchanged
// and no error is raised.
func (s *gormStore) SetTicketStatus(ctx context.Context, id int64, status string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("loading ticket %d: %w", id, err)
	}

	parsed, ok := model.ParseTicketStatus(status)
	if !ok || parsed == ticket.Status {
		return &ticket, nil
	}

	// Last writer wins; no optimistic versioning.
	ticket.Status = parsed
	if err := s.db.WithContext(ctx).Model(&model.Ticket{}).Where("id = ?", id).Update("status", parsed).Error; err != nil {
		return nil, fmt.Errorf("updating ticket %d status: %w", id, err)
	}
	return &ticket, nil
}

func (s *gormStore) ListTickets(ctx context.Context, f TicketFilter) ([]model.Ticket, error) {
	q := applyTicketFilter(s.ticketJoin(s.db.WithContext(ctx)), f)

	var tickets []model.Ticket
	err := q.Preload("Machine").Order("tickets.opened_at DESC").Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return tickets, nil
}

func (s *gormStore) ticketJoin(tx *gorm.DB) *gorm.DB {
	return tx.Model(&model.Ticket{}).
		Joins("JOIN machines ON machines.id = tickets.machine_id")
}

func applyTicketFilter(q *gorm.DB, f TicketFilter) *gorm.DB {
	if f.Sector != "" {
		q = q.Where("machines.sector = ?", f.Sector)
	}
	if start, end, ok := f.Window(); ok {
		q = q.Where("tickets.opened_at >= ? AND tickets.opened_at < ?", start, end)
	}
	return q
}

// --- Aggregation engine ---

// Stats computes the three dashboard summaries over the filtered
// ticket-machine join. All three queries run inside one transaction so they
// observe the same snapshot.
func (s *gormStore) Stats(ctx context.Context, f TicketFilter) (*StatsResult, error) {
	result := &StatsResult{
		TotalsByType:      make(map[string]int64, len(model.MachineTypes)),
		TotalsByMachine:   make(map[string]int64),
		ProblemsByMachine: make(map[string][]ProblemCount),
	}
	for _, t := range model.MachineTypes {
		result.TotalsByType[t] = 0
	}

	type countRow struct {
		Label string
		Total int64
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := func() *gorm.DB { return applyTicketFilter(s.ticketJoin(tx), f) }

		var byType []countRow
		if err := base().
			Select("machines.type AS label, COUNT(tickets.id) AS total").
			Group("machines.type").
			Scan(&byType).Error; err != nil {
			return fmt.Errorf("aggregating by type: %w", err)
		}
		for _, row := range byType {
			// Only the fixed catalog keys are reported.
			if _, ok := result.TotalsByType[row.Label]; ok {
				result.TotalsByType[row.Label] = row.Total
			}
		}

		var byMachine []countRow
		if err := base().
			Select("machines.asset_tag AS label, COUNT(tickets.id) AS total").
			Group("machines.asset_tag").
			Scan(&byMachine).Error; err != nil {
			return fmt.Errorf("aggregating by machine: %w", err)
		}
		for _, row := range byMachine {
			result.TotalsByMachine[row.Label] = row.Total
		}

		type problemRow struct {
			AssetTag string
			Problem  string
			Total    int64
		}
		var problems []problemRow
		if err := base().
			Select("machines.asset_tag AS asset_tag, tickets.problem AS problem, COUNT(tickets.id) AS total").
			Group("machines.asset_tag, tickets.problem").
			Order("machines.asset_tag, total DESC, tickets.problem").
			Scan(&problems).Error; err != nil {
			return fmt.Errorf("aggregating problems: %w", err)
		}
		for _, row := range problems {
			result.ProblemsByMachine[row.AssetTag] = append(
				result.ProblemsByMachine[row.AssetTag],
				ProblemCount{Problem: row.Problem, Count: row.Total},
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- Export projections ---

func (s *gormStore) MachineExportRows(ctx context.Context, sector string) ([]MachineRow, error) {
	q := s.db.WithContext(ctx).Model(&model.Machine{})
	if sector != "" {
		q = q.Where("sector = ?", sector)
	}

	var rows []MachineRow
	err := q.
		Select("asset_tag, type, sector, status").
		Order("type, asset_tag").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("exporting machines: %w", err)
	}
	return rows, nil
}

func (s *gormStore) TicketExportRows(ctx context.Context, f TicketFilter) ([]TicketRow, error) {
	q := applyTicketFilter(s.ticketJoin(s.db.WithContext(ctx)), f)

	var rows []TicketRow
	err := q.
		Select("tickets.id, machines.asset_tag, machines.type, machines.sector, tickets.problem, tickets.notes, tickets.status, tickets.opened_at, tickets.reported_by").
		Order("tickets.opened_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("exporting tickets: %w", err)
	}
	return rows, nil
}

// --- Roster import ---

// ResetAndImportMachines wipes all tickets and machines, then inserts the
// given roster rows de-duplicated on asset tag (first seen wins). The wipe
// and insert happen in a single transaction.
func (s *gormStore) ResetAndImportMachines(ctx context.Context, rows []MachineRow) (int, error) {
	var machines []model.Machine
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		assetTag := strings.TrimSpace(row.AssetTag)
		if assetTag == "" || seen[assetTag] {
			continue
		}
		seen[assetTag] = true

		status := model.MachineActive
		if parsed, ok := model.ParseMachineStatus(strings.TrimSpace(row.Status)); ok {
			status = parsed
		}
		machines = append(machines, model.Machine{
			AssetTag: assetTag,
			Type:     strings.TrimSpace(row.Type),
			Sector:   strings.TrimSpace(row.Sector),
			Status:   status,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := wipe.Delete(&model.Ticket{}).Error; err != nil {
			return fmt.Errorf("wiping tickets: %w", err)
		}
		if err := wipe.Delete(&model.Machine{}).Error; err != nil {
			return fmt.Errorf("wiping machines: %w", err)
		}
		if len(machines) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&machines, 200).Error; err != nil {
			return fmt.Errorf("inserting roster: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(machines), nil
}

// --- Users ---

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
