package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suedwestenergie/contact/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, err := config.LoadWithDefaults("")
	require.NoError(t, err)
	c.RateLimit.QPS = 1
	c.RateLimit.Burst = 2
	c.HTTP.AdminToken = "ops-token"
	return c
}

func testEngine(t *testing.T, c *config.Config) http.Handler {
	t.Helper()
	appCtx, cleanup, err := initService(c)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	e, err := newEngine(appCtx)
	require.NoError(t, err)
	return e
}

func submit(e http.Handler) *httptest.ResponseRecorder {
	return submitFrom(e, "203.0.113.7:4711", "")
}

func submitFrom(e http.Handler, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact",
		strings.NewReader(`{"name":"Anna","email":"anna@firma.de","company":"Firma","message":"Bitte um Rückruf."}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func adminGet(e http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestInitService_WithoutOptionalInfrastructure(t *testing.T) {
	appCtx, cleanup, err := initService(testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, appCtx.Journal)
	assert.NotNil(t, appCtx.Metrics)
	assert.NotNil(t, appCtx.Dispatcher)
	assert.False(t, appCtx.Ninox.Configured())
}

func TestEngine_SubmitAndRateLimit(t *testing.T) {
	e := testEngine(t, testConfig(t))

	assert.Equal(t, http.StatusOK, submit(e).Code)
	assert.Equal(t, http.StatusOK, submit(e).Code)

	w := submit(e)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestEngine_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	e := testEngine(t, testConfig(t))

	codes := map[int]int{}
	for i := 0; i < 20; i++ {
		codes[submitFrom(e, "203.0.113.7:4711", fmt.Sprintf("10.0.0.%d", i)).Code]++
	}
	assert.Equal(t, 2, codes[http.StatusOK])
	assert.Equal(t, 18, codes[http.StatusTooManyRequests])
}

func TestEngine_RateLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	c := testConfig(t)
	c.HTTP.TrustedProxies = []string{"10.1.0.0/16"}
	e := testEngine(t, c)

	// 经可信代理转发的不同客户端各自计数
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, submitFrom(e, "10.1.0.2:80", fmt.Sprintf("198.51.100.%d", i)).Code)
	}
	assert.Equal(t, http.StatusOK, submitFrom(e, "10.1.0.2:80", "198.51.100.9").Code)
	assert.Equal(t, http.StatusOK, submitFrom(e, "10.1.0.2:80", "198.51.100.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, submitFrom(e, "10.1.0.2:80", "198.51.100.9").Code)
}

func TestNewEngine_InvalidTrustedProxy(t *testing.T) {
	c := testConfig(t)
	c.HTTP.TrustedProxies = []string{"not-an-ip"}
	appCtx, cleanup, err := initService(c)
	require.NoError(t, err)
	defer cleanup()

	_, err = newEngine(appCtx)
	assert.ErrorContains(t, err, "trusted_proxies")
}

func TestEngine_AdminRoutesRequireToken(t *testing.T) {
	e := testEngine(t, testConfig(t))

	for _, path := range []string{"/metrics", "/api/v1/contact/deliveries"} {
		assert.Equal(t, http.StatusUnauthorized, adminGet(e, path, "").Code, path)
		assert.Equal(t, http.StatusUnauthorized, adminGet(e, path, "wrong").Code, path)
	}

	c := testConfig(t)
	c.HTTP.AdminToken = ""
	closed := testEngine(t, c)
	assert.Equal(t, http.StatusUnauthorized, adminGet(closed, "/metrics", "").Code)
}

func TestEngine_SystemRoutes(t *testing.T) {
	e := testEngine(t, testConfig(t))

	submit(e)

	for _, path := range []string{"/sys/health", "/sys/ready"} {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := adminGet(e, "/metrics", "ops-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `swe_contact_submissions_total{result="accepted"} 1`)
	assert.Contains(t, w.Body.String(), `swe_contact_deliveries_total{outcome="skipped",sink="ninox"} 1`)
}

func TestValidateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", "", "validate", "--name", "A", "--email", "bad", "--company", "X", "--message", "1234567890"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, out.String(), "invalid (email): Bitte geben Sie eine gültige E-Mail-Adresse ein.")
}
