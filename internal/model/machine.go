package model

import "time"

// MachineStatus is the activation state of a machine on the factory floor.
type MachineStatus string

const (
	MachineActive      MachineStatus = "active"
	MachineMaintenance MachineStatus = "maintenance"
	MachineDeactivated MachineStatus = "deactivated"
)

// ParseMachineStatus maps an incoming status value to its canonical form.
// The Portuguese labels used by the legacy roster CSVs are accepted as
// aliases. The second return value is false for unrecognized input.
func ParseMachineStatus(s string) (MachineStatus, bool) {
	switch s {
	case string(MachineActive), "Ativa":
		return MachineActive, true
	case string(MachineMaintenance), "Em manutenção":
		return MachineMaintenance, true
	case string(MachineDeactivated), "Desativada":
		return MachineDeactivated, true
	}
	return "", false
}

// Machine represents a single sewing machine identified by its asset tag
// (patrimonio). The asset tag is unique across the fleet; the unique index
// is the authority for that, not application-level checks.
type Machine struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	AssetTag  string        `gorm:"uniqueIndex;size:80;not null" json:"assetTag"`
	Type      string        `gorm:"size:80;not null" json:"type"`
	Sector    string        `gorm:"size:80" json:"sector"`
	Status    MachineStatus `gorm:"size:30;not null;default:active" json:"status"`
	CreatedAt time.Time     `json:"-"`
	UpdatedAt time.Time     `json:"-"`
}
