//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"equb-app-go/internal/config"
	"equb-app-go/internal/db"
	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	payoutdomain "equb-app-go/internal/domain/payout"
	reportingdomain "equb-app-go/internal/domain/reporting"
	"equb-app-go/internal/metrics"
	"equb-app-go/internal/repository/inmemory"
	attendancerepo "equb-app-go/internal/repository/postgres/attendance"
	equbrepo "equb-app-go/internal/repository/postgres/equb"
	memberrepo "equb-app-go/internal/repository/postgres/member"
	payoutrepo "equb-app-go/internal/repository/postgres/payout"
	reportingrepo "equb-app-go/internal/repository/postgres/reporting"
	"equb-app-go/internal/transport/httpserver"
	"equb-app-go/internal/transport/httpserver/handler"
	attendancehandler "equb-app-go/internal/transport/httpserver/handler/attendance"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	equbshandler "equb-app-go/internal/transport/httpserver/handler/equbs"
	membershandler "equb-app-go/internal/transport/httpserver/handler/members"
	payoutshandler "equb-app-go/internal/transport/httpserver/handler/payouts"
	reportinghandler "equb-app-go/internal/transport/httpserver/handler/reporting"
	authmw "equb-app-go/internal/transport/httpserver/middleware"
	"equb-app-go/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const jwtSecret = "e2e-secret"

var (
	adminA = uuid.NewString()
	adminB = uuid.NewString()
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, slog.LevelError, "json")
	cfg := config.Config{
		MetricsEnabled: true,
		AllowedOrigins: []string{"*"},
		DB:             config.DBConfig{Driver: "postgres", DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Minute},
		Auth:           config.AuthConfig{JWTSecret: jwtSecret},
		Reporting:      config.ReportingConfig{CacheTTL: time.Minute},
	}

	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	m := metrics.New()
	equbService := equbdomain.NewService(equbrepo.NewPostgres(dbConn))
	memberService := memberdomain.NewService(memberrepo.NewPostgres(dbConn), equbService).WithLogger(log)
	attendanceService := attendancedomain.NewService(attendancerepo.NewPostgres(dbConn))
	payoutService := payoutdomain.NewService(payoutrepo.NewPostgres(dbConn), m)
	reportingService := reportingdomain.NewService(reportingrepo.NewPostgres(dbConn)).
		WithCache(inmemory.NewInMemoryDashboardCache(), cfg.Reporting.CacheTTL)

	handlers := handler.New(
		commonhandler.New(log),
		equbshandler.New(equbService, reportingService, log),
		membershandler.New(memberService, reportingService, log),
		attendancehandler.New(attendanceService, reportingService, log),
		payoutshandler.New(payoutService, reportingService, log),
		reportinghandler.New(reportingService, log),
	)

	server := httptest.NewServer(httpserver.NewRouter(cfg, handlers, m, log))
	return &testEnv{server: server, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE payouts, attendances, members, people, periods, equbs CASCADE",
	).Error
}

func tokenFor(t *testing.T, adminID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, authmw.Claims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}, out interface{}) int {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Errorf("marshal payload: %v", err)
			return 0
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Errorf("new request: %v", err)
		return 0
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Errorf("do request: %v", err)
		return 0
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Errorf("read response: %v", err)
		return 0
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			t.Errorf("decode %q: %v", string(respBody), err)
		}
	}
	return resp.StatusCode
}

type idResponse struct {
	ID string `json:"id"`
}

type equbResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CurrentRound int    `json:"currentRound"`
	Periods      []struct {
		ID       string `json:"id"`
		Sequence int    `json:"sequence"`
	} `json:"periods"`
}

type payoutResponse struct {
	ID       string          `json:"id"`
	MemberID string          `json:"memberId"`
	Amount   decimal.Decimal `json:"amount"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// seedEqub creates an equb with one member per share through the API and
// returns it with its generated periods.
func seedEqub(t *testing.T, client *http.Client, baseURL, token string, shares ...string) (equbResponse, []string) {
	t.Helper()

	var equb equbResponse
	if status := requestJSON(t, client, http.MethodPost, baseURL+"/api/equbs", token, map[string]interface{}{
		"name":       "Merkato " + uuid.NewString()[:6],
		"cadence":    "WEEKLY",
		"startDate":  "2026-01-05",
		"baseAmount": 1000,
	}, &equb); status != http.StatusCreated {
		t.Fatalf("create equb status = %d", status)
	}

	members := make([]string, 0, len(shares))
	for _, share := range shares {
		var person idResponse
		if status := requestJSON(t, client, http.MethodPost, baseURL+"/api/people", token, map[string]interface{}{
			"name":  "Member " + share,
			"phone": "+2519" + uuid.NewString()[:8],
		}, &person); status != http.StatusCreated {
			t.Fatalf("create person status = %d", status)
		}
		var member idResponse
		if status := requestJSON(t, client, http.MethodPost, baseURL+"/api/members", token, map[string]interface{}{
			"equbId":   equb.ID,
			"personId": person.ID,
			"share":    share,
		}, &member); status != http.StatusCreated {
			t.Fatalf("create member status = %d", status)
		}
		members = append(members, member.ID)
	}

	if status := requestJSON(t, client, http.MethodGet, baseURL+"/api/equbs/"+equb.ID, token, nil, &equb); status != http.StatusOK {
		t.Fatalf("get equb status = %d", status)
	}
	if len(equb.Periods) != len(shares) {
		t.Fatalf("periods = %d, want %d", len(equb.Periods), len(shares))
	}
	return equb, members
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	if status := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil, nil); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}

	var unauthorized errorEnvelope
	status := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/equbs", "", nil, &unauthorized)
	if status != http.StatusUnauthorized || unauthorized.Error.Code != "invalid_token" {
		t.Fatalf("anonymous list = %d %q", status, unauthorized.Error.Code)
	}

	var me struct {
		ID string `json:"id"`
	}
	if status := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", tokenFor(t, adminA), nil, &me); status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	if me.ID != adminA {
		t.Fatalf("me id = %q, want %q", me.ID, adminA)
	}
}

func TestE2EAdminIsolation(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	equb, members := seedEqub(t, client, env.server.URL, tokenFor(t, adminA), "FULL")
	intruder := tokenFor(t, adminB)

	for _, path := range []string{
		"/api/equbs/" + equb.ID,
		"/api/members/" + members[0],
		"/api/reporting/equbs/" + equb.ID,
	} {
		if status := requestJSON(t, client, http.MethodGet, env.server.URL+path, intruder, nil, nil); status != http.StatusNotFound {
			t.Fatalf("GET %s as other admin = %d, want 404", path, status)
		}
	}

	var rejected errorEnvelope
	status := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/payouts/random", intruder, map[string]interface{}{
		"equbId":   equb.ID,
		"periodId": equb.Periods[0].ID,
	}, &rejected)
	if status != http.StatusNotFound {
		t.Fatalf("foreign payout = %d %q, want 404", status, rejected.Error.Code)
	}
}

func TestE2EConcurrentPayoutsSettleEachMemberOnce(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	token := tokenFor(t, adminA)
	equb, members := seedEqub(t, client, env.server.URL, token, "FULL", "HALF", "QUARTER")

	const attempts = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		settled  []payoutResponse
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var payout payoutResponse
			status := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/payouts/random", token, map[string]interface{}{
				"equbId":   equb.ID,
				"periodId": equb.Periods[0].ID,
			}, &payout)

			mu.Lock()
			defer mu.Unlock()
			if status == http.StatusCreated {
				settled = append(settled, payout)
				return
			}
			rejected++
		}()
	}
	wg.Wait()

	if len(settled) != len(members) || rejected != attempts-len(members) {
		t.Fatalf("settled %d rejected %d, want %d and %d", len(settled), rejected, len(members), attempts-len(members))
	}

	winners := make(map[string]bool, len(settled))
	want := decimal.NewFromInt(1750)
	for _, payout := range settled {
		if winners[payout.MemberID] {
			t.Fatalf("member %s won twice", payout.MemberID)
		}
		winners[payout.MemberID] = true
		if !payout.Amount.Equal(want) {
			t.Fatalf("payout amount = %s, want %s", payout.Amount, want)
		}
	}

	var final equbResponse
	if status := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/equbs/"+equb.ID, token, nil, &final); status != http.StatusOK {
		t.Fatalf("get equb status = %d", status)
	}
	if final.Status != "COMPLETED" {
		t.Fatalf("status after full cycle = %q, want COMPLETED", final.Status)
	}

	var reset struct {
		Cleared int64 `json:"cleared"`
	}
	if status := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/equbs/"+equb.ID+"/reset-payouts", token, nil, &reset); status != http.StatusOK {
		t.Fatalf("reset status = %d", status)
	}
	if reset.Cleared != int64(len(members)) {
		t.Fatalf("cleared = %d, want %d", reset.Cleared, len(members))
	}
	if status := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/equbs/"+equb.ID, token, nil, &final); status != http.StatusOK || final.Status != "ACTIVE" || final.CurrentRound != 1 {
		t.Fatalf("after reset = %d %+v", status, final)
	}
}
