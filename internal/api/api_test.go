package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"machine-maintenance-backend/config"
	"machine-maintenance-backend/internal/auth"
	"machine-maintenance-backend/internal/intake"
	"machine-maintenance-backend/internal/model"
	"machine-maintenance-backend/internal/store"
)

const testPIN = "4321"

type testEnv struct {
	router *gin.Engine
	store  store.Store
	auth   *auth.Service
}

// newTestEnv wires a full router over an isolated in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Machine{}, &model.Ticket{}))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 10000
	cfg.Server.RateLimitBurst = 10000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Auth.SessionTTL = time.Hour
	cfg.QR.PIN = testPIN
	cfg.QR.AttemptsPerMinute = 600000
	cfg.QR.AttemptBurst = 10000

	s := store.NewGormStore(db)
	gateway := intake.NewGateway(s, cfg.QR.PIN)
	authSvc := auth.NewService("test-secret", cfg.Auth.SessionTTL)

	return &testEnv{
		router: NewRouter(s, gateway, authSvc, cfg),
		store:  s,
		auth:   authSvc,
	}
}

func (e *testEnv) sessionCookie(t *testing.T, username string, role model.Role) *http.Cookie {
	t.Helper()
	token, err := e.auth.IssueToken(auth.Identity{Username: username, Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedMachine(t *testing.T, assetTag, mtype, sector string) *model.Machine {
	t.Helper()
	m, err := e.store.CreateMachine(context.Background(), store.MachineInput{
		AssetTag: assetTag,
		Type:     mtype,
		Sector:   sector,
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) ticketCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.store.DB().Model(&model.Ticket{}).Count(&n).Error)
	return n
}
