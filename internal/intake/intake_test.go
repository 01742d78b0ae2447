package intake

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"machine-maintenance-backend/internal/model"
	"machine-maintenance-backend/internal/store"
)

const testPIN = "4321"

func newTestGateway(t *testing.T) (*Gateway, store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.Machine{}, &model.Ticket{}))

	s := store.NewGormStore(db)
	return NewGateway(s, testPIN), s
}

func seedMachine(t *testing.T, s store.Store, assetTag string) *model.Machine {
	t.Helper()
	m, err := s.CreateMachine(context.Background(), store.MachineInput{
		AssetTag: assetTag,
		Type:     "Overlock",
	})
	require.NoError(t, err)
	return m
}

func countTickets(t *testing.T, s store.Store) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(&model.Ticket{}).Count(&n).Error)
	return n
}

func TestQROpen_WrongPIN(t *testing.T) {
	g, s := newTestGateway(t)
	seedMachine(t, s, "M-001")

	// A wrong PIN never creates a ticket, even with valid form fields.
	ticket, err := g.QROpen(context.Background(), "M-001", "0000", "João", "Agulha quebrada", "")
	assert.ErrorIs(t, err, ErrInvalidPIN)
	assert.Nil(t, ticket)
	assert.Zero(t, countTickets(t, s))
}

func TestQROpen_UnknownAssetTag(t *testing.T) {
	g, s := newTestGateway(t)

	_, err := g.QROpen(context.Background(), "NOPE", testPIN, "", "Agulha quebrada", "")
	assert.ErrorIs(t, err, store.ErrMachineNotFound)
	assert.Zero(t, countTickets(t, s))
}

func TestQROpen_MissingProblem(t *testing.T) {
	g, s := newTestGateway(t)
	seedMachine(t, s, "M-001")

	// A correct PIN with no problem still creates nothing.
	_, err := g.QROpen(context.Background(), "M-001", testPIN, "João", "   ", "")
	assert.ErrorIs(t, err, ErrMissingProblem)
	assert.Zero(t, countTickets(t, s))
}

func TestQROpen_Success(t *testing.T) {
	g, s := newTestGateway(t)
	m := seedMachine(t, s, "M-001")

	ticket, err := g.QROpen(context.Background(), "M-001", testPIN, "  ", "Agulha quebrada", "fio preso")
	require.NoError(t, err)
	assert.Equal(t, m.ID, ticket.MachineID)
	assert.Equal(t, model.TicketOpen, ticket.Status)
	assert.Equal(t, TechnicianFallback, ticket.ReportedBy)

	named, err := g.QROpen(context.Background(), "M-001", testPIN, "João", "Barulho estranho", "")
	require.NoError(t, err)
	assert.Equal(t, "João", named.ReportedBy)
}

func TestConsoleOpen_SoftNoOp(t *testing.T) {
	g, s := newTestGateway(t)
	m := seedMachine(t, s, "M-001")

	// Missing machine id or problem is a silent no-op, not an error.
	ticket, err := g.ConsoleOpen(context.Background(), "admin", 0, "Agulha quebrada", "", "")
	assert.NoError(t, err)
	assert.Nil(t, ticket)

	ticket, err = g.ConsoleOpen(context.Background(), "admin", m.ID, "  ", "", "")
	assert.NoError(t, err)
	assert.Nil(t, ticket)

	assert.Zero(t, countTickets(t, s))
}

func TestConsoleOpen_ReporterFallback(t *testing.T) {
	g, s := newTestGateway(t)
	m := seedMachine(t, s, "M-001")
	ctx := context.Background()

	fromSession, err := g.ConsoleOpen(ctx, "admin", m.ID, "Agulha quebrada", "", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "admin", fromSession.ReportedBy)

	fromForm, err := g.ConsoleOpen(ctx, "", m.ID, "Agulha quebrada", "", "Maria")
	require.NoError(t, err)
	assert.Equal(t, "Maria", fromForm.ReportedBy)

	anonymous, err := g.ConsoleOpen(ctx, "", m.ID, "Agulha quebrada", "", "  ")
	require.NoError(t, err)
	assert.Equal(t, AnonymousReporter, anonymous.ReportedBy)
}

func TestConsoleOpen_UnknownMachine(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.ConsoleOpen(context.Background(), "admin", 9999, "Agulha quebrada", "", "")
	assert.ErrorIs(t, err, store.ErrMachineNotFound)
}
