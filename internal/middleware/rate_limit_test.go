package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pageza/chefbook/backend/internal/logger"
)

func setupRedis(t *testing.T) *redis.Client {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimitMiddleware(t *testing.T) {
	client := setupRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: "test"}, logger.Discard())

	router := gin.New()
	router.Use(limiter.RateLimitMiddleware())
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func() *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		return rr
	}

	assert.Equal(t, http.StatusCreated, post().Code)
	rr := post()
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = post()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, get.Code, "reads are not counted")
}

func TestRateLimitFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "test"}, logger.Discard())

	router := gin.New()
	router.Use(limiter.RateLimitMiddleware())
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
}
