package model

import "time"

// TicketStatus is the lifecycle state of a maintenance ticket.
// Legal transitions: open -> in_progress -> resolved, with open -> resolved
// allowed directly. resolved is terminal. Transitions are caller-driven.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

// ParseTicketStatus maps an incoming status value to its canonical form.
// The Portuguese labels from the legacy console are accepted as aliases.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch s {
	case string(TicketOpen), "Aberto":
		return TicketOpen, true
	case string(TicketInProgress), "Em andamento":
		return TicketInProgress, true
	case string(TicketResolved), "Concluído", "Resolved":
		return TicketResolved, true
	}
	return "", false
}

// Ticket is a single reported maintenance issue against one machine.
// MachineID is immutable after creation; tickets are never deleted
// individually (the roster reset wipes the whole table).
type Ticket struct {
	ID         int64        `gorm:"primaryKey" json:"id"`
	MachineID  int64        `gorm:"index;not null" json:"machineId"`
	Problem    string       `gorm:"size:120;not null" json:"problem"`
	Notes      string       `gorm:"type:text" json:"notes"`
	Status     TicketStatus `gorm:"size:20;not null;default:open" json:"status"`
	OpenedAt   time.Time    `gorm:"not null;index" json:"openedAt"`
	ReportedBy string       `gorm:"size:80" json:"reportedBy"`

	// Associations
	Machine Machine `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
