package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/auth"
	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/service"
	"github.com/emplix/emplix/internal/storage"
	"github.com/emplix/emplix/internal/store"
	"github.com/emplix/emplix/internal/tenant"
)

var testSecret = []byte("router-test-secret-long-enough!!")

type testEnv struct {
	router   http.Handler
	tenantID uuid.UUID
	users    *store.MemoryUserStore
	limiter  *RateLimiter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tenants := store.NewMemoryTenantStore()
	employees := store.NewMemoryEmployeeStore()
	users := store.NewMemoryUserStore(employees)
	attendances := store.NewMemoryAttendanceStore()
	requests := store.NewMemoryRequestStore(employees)
	kudos := store.NewMemoryKudoStore(employees)
	documents := store.NewMemoryDocumentStore()

	tenantID := uuid.New()
	require.NoError(t, tenants.Create(context.Background(), &models.Tenant{
		TenantID: tenantID,
		Slug:     "conexa",
		Name:     "Conexa",
		Status:   models.TenantStatusActive,
	}))
	require.NoError(t, tenants.Create(context.Background(), &models.Tenant{
		TenantID: uuid.New(),
		Slug:     "frozen",
		Name:     "Frozen",
		Status:   models.TenantStatusSuspended,
	}))

	objects, err := storage.NewLocalStorage(t.TempDir(), testSecret)
	require.NoError(t, err)
	kudoService, err := service.NewKudoService(kudos, employees)
	require.NoError(t, err)

	limiter := NewRateLimiter(1000, 1000)
	router := NewRouter(Config{
		Logger:        zerolog.Nop(),
		Resolver:      tenant.NewResolver(tenants),
		SessionSecret: testSecret,
		RateLimiter:   limiter,
		Auth:          NewAuthHandler(service.NewAuthService(users, employees, testSecret, nil)),
		Attendance:    NewAttendanceHandler(service.NewAttendanceService(attendances, employees)),
		Requests:      NewRequestHandler(service.NewRequestService(requests, employees)),
		Kudos:         NewKudoHandler(kudoService),
		Employees:     NewEmployeeHandler(service.NewEmployeeService(users, employees)),
		Documents:     NewDocumentHandler(service.NewDocumentService(documents, employees, objects), objects),
	})

	return &testEnv{router: router, tenantID: tenantID, users: users, limiter: limiter}
}

func (env *testEnv) do(method, path, slug, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	}
	r := httptest.NewRequest(method, path, reader)
	if slug != "" {
		r.Header.Set(tenant.HeaderSlug, slug)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func (env *testEnv) register(t *testing.T, email string) {
	t.Helper()
	w := env.do("POST", "/api/auth/register", "conexa", "", map[string]string{
		"email":     email,
		"password":  "s3cret-enough",
		"firstName": "Ana",
		"lastName":  "Lopez",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (env *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := env.do("POST", "/api/auth/login", "conexa", "", map[string]string{
		"email":    email,
		"password": "s3cret-enough",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Token
}

func TestHealthSkipsTenantResolution(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("GET", "/health", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTenantGate(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing tenant", func(t *testing.T) {
		w := env.do("POST", "/api/auth/login", "", "", map[string]string{"email": "a@b.com", "password": "x"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "missing_tenant", errorCode(t, w))
	})

	t.Run("unknown tenant", func(t *testing.T) {
		w := env.do("POST", "/api/auth/login", "ghost", "", map[string]string{"email": "a@b.com", "password": "x"})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "tenant_not_found", errorCode(t, w))
	})

	t.Run("suspended tenant", func(t *testing.T) {
		w := env.do("POST", "/api/auth/login", "frozen", "", map[string]string{"email": "a@b.com", "password": "x"})
		require.Equal(t, http.StatusPaymentRequired, w.Code)
		require.Equal(t, "tenant_suspended", errorCode(t, w))
	})
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")
	token := env.login(t, "ana@example.com")

	w := env.do("GET", "/api/auth/me", "conexa", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Employee *struct {
			FullName string `json:"fullName"`
		} `json:"employee"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ana@example.com", body.User.Email)
	require.NotNil(t, body.Employee)
	require.Equal(t, "Ana Lopez", body.Employee.FullName)
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")

	t.Run("missing token", func(t *testing.T) {
		w := env.do("GET", "/api/auth/me", "conexa", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := env.do("GET", "/api/auth/me", "conexa", "garbage", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token from another tenant", func(t *testing.T) {
		foreign, err := auth.IssueToken(testSecret, uuid.New(), uuid.New(), "USER", "x@y.com")
		require.NoError(t, err)
		w := env.do("GET", "/api/auth/me", "conexa", foreign, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "tenant_mismatch", errorCode(t, w))
	})
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")
	token := env.login(t, "ana@example.com")

	// Registration grants USER; admin-only routes must refuse it.
	w := env.do("GET", "/api/requests", "conexa", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "forbidden", errorCode(t, w))
}

func TestAttendanceFlow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")
	token := env.login(t, "ana@example.com")

	w := env.do("POST", "/api/attendance/check-in", "conexa", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do("POST", "/api/attendance/check-in", "conexa", token, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "already_clocked_in", errorCode(t, w))

	w = env.do("POST", "/api/attendance/check-out", "conexa", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do("GET", "/api/attendance/today", "conexa", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, models.AttendanceCompleted, body.Status)
}

func TestRequestFlowViaHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")
	token := env.login(t, "ana@example.com")

	w := env.do("POST", "/api/requests", "conexa", token, map[string]any{
		"type":      "VACATION",
		"startDate": "2024-06-10",
		"endDate":   "2024-06-14",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do("GET", "/api/requests/mine", "conexa", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var mine []struct {
		RequestID string `json:"requestId"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	require.Equal(t, models.RequestStatusPending, mine[0].Status)

	t.Run("bad date format", func(t *testing.T) {
		w := env.do("POST", "/api/requests", "conexa", token, map[string]any{
			"type":      "VACATION",
			"startDate": "10/06/2024",
			"endDate":   "2024-06-14",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "validation_error", errorCode(t, w))
	})
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	tenantID := uuid.New()

	require.True(t, limiter.allow(tenantID))
	require.True(t, limiter.allow(tenantID))
	require.False(t, limiter.allow(tenantID))

	// Another tenant has its own bucket.
	require.True(t, limiter.allow(uuid.New()))
}

func TestRateLimiterOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.rate = 0.0001
	env.limiter.burst = 1

	w := env.do("POST", "/api/auth/login", "conexa", "", map[string]string{"email": "a@b.com", "password": "x"})
	require.NotEqual(t, http.StatusTooManyRequests, w.Code)

	w = env.do("POST", "/api/auth/login", "conexa", "", map[string]string{"email": "a@b.com", "password": "x"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "rate_limited", errorCode(t, w))
	require.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestUnknownFieldRejected(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("POST", "/api/auth/login", "conexa", "", map[string]string{
		"email": "a@b.com", "password": "x", "admin": "true",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "validation_error", errorCode(t, w))
}

func TestSignedDownloadRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("GET", fmt.Sprintf("/files/tenant-%s/abc.pdf?expires=9999999999&sig=forged", env.tenantID), "", "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
