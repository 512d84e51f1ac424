package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehrozeikram/ERP-sub001/internal/config"
	"github.com/shehrozeikram/ERP-sub001/internal/push"
	"github.com/shehrozeikram/ERP-sub001/internal/utils"
)

const testSecret = "test-secret"

func newControlRouter(t *testing.T) (*gin.Engine, *push.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		JwtSecret:        testSecret,
		PushAddr:         "127.0.0.1:0",
		PushTimezone:     "UTC",
		CheckInStatesRaw: "0,IN",
		RecordTimeoutMS:  1000,
	}

	service, err := push.NewService(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { service.Stop() })

	router := gin.New()
	Register(router, service, cfg)
	return router, service
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := utils.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func perform(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestControl_RequiresToken(t *testing.T) {
	router, _ := newControlRouter(t)

	recorder := perform(router, http.MethodPost, "/api/device-push/start", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestControl_RequiresAdminRole(t *testing.T) {
	router, _ := newControlRouter(t)

	recorder := perform(router, http.MethodGet, "/api/device-push/status", signToken(t, "employee"))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestControl_StartStatusStop(t *testing.T) {
	router, service := newControlRouter(t)
	token := signToken(t, "admin")

	recorder := perform(router, http.MethodPost, "/api/device-push/start", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, service.Status().Running)

	// Second start reports success without a second listener.
	addr := service.Addr()
	recorder = perform(router, http.MethodPost, "/api/device-push/start", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, addr, service.Addr())

	recorder = perform(router, http.MethodGet, "/api/device-push/status", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"running"`)

	recorder = perform(router, http.MethodPost, "/api/device-push/stop", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.False(t, service.Status().Running)
}

func TestHealthIsPublic(t *testing.T) {
	router, _ := newControlRouter(t)

	recorder := perform(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}
