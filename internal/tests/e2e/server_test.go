package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/you/campusauth/internal/app"
	"github.com/you/campusauth/internal/config"
)

const (
	superAdminEmail    = "root@unimigo.co"
	superAdminPassword = "root-secret"
)

// testServer runs the whole service over SQLite and miniredis
type testServer struct {
	t         *testing.T
	server    *httptest.Server
	container *app.Container
	redis     *miniredis.Miniredis
	logs      *observer.ObservedLogs
	client    *http.Client
}

func testConfig(redisAddr string) *config.Config {
	return &config.Config{
		AppName:              "campusauth-e2e",
		Port:                 "0",
		Env:                  "test",
		DBDriver:             "sqlite",
		DSN:                  fmt.Sprintf("file:e2e-%s?mode=memory&cache=shared", uuid.NewString()),
		RedisAddr:            redisAddr,
		JWTIssuer:            "campusauth",
		JWTActiveKID:         "k1",
		JWTSigningKeys:       map[string]string{"k1": "e2e-signing-secret"},
		StudentTTL:           720 * time.Hour,
		AdminTTL:             168 * time.Hour,
		OTP_TTL:              10 * time.Minute,
		OTP_Length:           6,
		OTP_MaxAttempts:      5,
		OTP_Store:            "redis",
		PublicDomains:        config.DefaultPublicDomains,
		EmailProvider:        "log",
		LogLevel:             "debug",
		SweepInterval:        time.Hour,
		DefaultAdminPassword: "admin123",
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	core, logs := observer.New(zap.DebugLevel)

	c, err := app.NewContainer(context.Background(), testConfig(mr.Addr()), zap.New(core))
	require.NoError(t, err)
	sqlDB, err := c.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { c.Close() })

	_, _, err = app.EnsureSuperAdmin(context.Background(), c.IdentityRepo, c.PasswordSvc, superAdminEmail, superAdminPassword, "")
	require.NoError(t, err)

	srv := httptest.NewServer(c.Router())
	t.Cleanup(srv.Close)

	return &testServer{
		t:         t,
		server:    srv,
		container: c,
		redis:     mr,
		logs:      logs,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// do sends a JSON request and decodes a JSON object response, if any
func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

// code reads the pending one-time code for email straight from Redis
func (s *testServer) code(email string) string {
	s.t.Helper()
	code, err := s.redis.Get("otp:" + email)
	require.NoError(s.t, err)
	return code
}

func (s *testServer) superAdminToken() string {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/admin/login", "", map[string]string{
		"email": superAdminEmail, "password": superAdminPassword,
	})
	require.Equal(s.t, http.StatusOK, status, "%v", body)
	return body["token"].(string)
}

// onboard creates a university and returns its id and admin credentials
func (s *testServer) onboard(name, domainName string) (id, adminEmail, adminPassword string) {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/admin/universities", s.superAdminToken(), map[string]string{
		"name": name, "domain": domainName,
	})
	require.Equal(s.t, http.StatusCreated, status, "%v", body)
	admin := body["admin"].(map[string]any)
	return body["university"].(map[string]any)["id"].(string), admin["email"].(string), admin["password"].(string)
}

func (s *testServer) adminToken(email, password string) string {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/admin/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, status, "%v", body)
	return body["token"].(string)
}

// studentLogin runs the full code flow and returns the session token
func (s *testServer) studentLogin(email string) (string, map[string]any) {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/auth/request-otp", "", map[string]string{"email": email})
	require.Equal(s.t, http.StatusOK, status, "%v", body)

	status, body = s.do(http.MethodPost, "/auth/verify-otp", "", map[string]string{"email": email, "otp": s.code(email)})
	require.Equal(s.t, http.StatusOK, status, "%v", body)
	return body["token"].(string), body
}
