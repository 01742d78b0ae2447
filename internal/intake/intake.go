// Package intake is the ticket-creation boundary. The console variant
// trusts the session identity; the QR variant is unauthenticated and gated
// by the shared technician PIN.
package intake

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"machine-maintenance-backend/internal/model"
	"machine-maintenance-backend/internal/store"
)

// ErrInvalidPIN is returned when the supplied PIN does not match the shared
// secret. No ticket is created; the caller may retry.
var ErrInvalidPIN = errors.New("invalid PIN")

// ErrMissingProblem is returned by the QR variant when no problem was
// selected. No ticket is created.
var ErrMissingProblem = errors.New("problem is required")

// AnonymousReporter is recorded when neither a session identity nor a
// caller-supplied name is available on the console path.
const AnonymousReporter = "anonimo"

// TechnicianFallback is recorded when the QR form carries no technician
// name.
const TechnicianFallback = "Técnico"

// Gateway creates tickets through the two intake variants.
type Gateway struct {
	store store.Store
	pin   string
}

// NewGateway creates an intake gateway bound to the process-wide PIN.
func NewGateway(s store.Store, pin string) *Gateway {
	return &Gateway{store: s, pin: pin}
}

// ConsoleOpen creates a ticket from the factory console. The reporter is
// the session identity when present, then the caller-supplied name, then
// the anonymous sentinel. A missing machine id or problem is a soft no-op:
// both return values are nil and no ticket is created.
func (g *Gateway) ConsoleOpen(ctx context.Context, identity string, machineID int64, problem, notes, fallbackName string) (*model.Ticket, error) {
	problem = strings.TrimSpace(problem)
	if machineID <= 0 || problem == "" {
		return nil, nil
	}

	reportedBy := identity
	if reportedBy == "" {
		reportedBy = strings.TrimSpace(fallbackName)
	}
	if reportedBy == "" {
		reportedBy = AnonymousReporter
	}

	return g.store.OpenTicket(ctx, machineID, problem, notes, reportedBy)
}

// QROpen creates a ticket from the unauthenticated technician form. The
// asset tag must resolve to a machine and the PIN must match before any
// write happens; the PIN is required again on every attempt.
func (g *Gateway) QROpen(ctx context.Context, assetTag, pin, technician, problem, notes string) (*model.Ticket, error) {
	machine, err := g.store.GetMachineByAssetTag(ctx, strings.TrimSpace(assetTag))
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(pin)), []byte(g.pin)) != 1 {
		return nil, ErrInvalidPIN
	}

	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, ErrMissingProblem
	}

	reportedBy := strings.TrimSpace(technician)
	if reportedBy == "" {
		reportedBy = TechnicianFallback
	}

	return g.store.OpenTicket(ctx, machine.ID, problem, notes, reportedBy)
}
