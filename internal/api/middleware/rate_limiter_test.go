package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newLimitedApp(rl *RateLimiter, paths ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(429).JSON(fiber.Map{"error": "rate limit"})
		},
	})
	app.Use(rl.Handler())
	for _, p := range paths {
		app.Get(p, func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})
	}
	return app
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    5,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "10.0.0.1"
			},
		})
		defer rl.Stop()

		app := newLimitedApp(rl, "/test")

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "OK", string(body))
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "10.0.0.1"
			},
		})
		defer rl.Stop()

		app := newLimitedApp(rl, "/test")

		// First 2 should succeed
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// Third should be rate limited
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	})

	t.Run("different clients have separate limits", func(t *testing.T) {
		var currentClient string

		rl := NewRateLimiter(RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return currentClient
			},
		})
		defer rl.Stop()

		app := newLimitedApp(rl, "/test")

		// Client A uses 2 requests
		currentClient = "10.0.0.1"
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// Client A is now rate limited
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)

		// Client B can still make requests
		currentClient = "10.0.0.2"
		req = httptest.NewRequest("GET", "/test", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("rate limit headers are set", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Minute})
		defer rl.Stop()

		app := newLimitedApp(rl, "/test")

		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return ""
			},
		})
		defer rl.Stop()

		app := newLimitedApp(rl, "/test")

		for i := 0; i < 10; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}
	})
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	assert.Equal(t, 60, config.Max)
	assert.Equal(t, time.Minute, config.Window)
	assert.NotNil(t, config.KeyGenerator)
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Second})

	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Second})
	defer rl.Stop()

	now := time.Now()
	rl.limiters["stale"] = &clientWindow{lastAccess: now.Add(-3 * time.Second), window: time.Second}
	rl.limiters["fresh"] = &clientWindow{lastAccess: now, window: time.Second}

	rl.sweep(now)

	assert.NotContains(t, rl.limiters, "stale")
	assert.Contains(t, rl.limiters, "fresh")
}

func TestRateLimiter_PerEndpoint(t *testing.T) {
	t.Run("applies different limits per endpoint", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    100,
			Window: time.Minute,
			PerEndpoint: map[string]EndpointRateLimit{
				"/compare": {Requests: 2, Window: time.Minute},
			},
		})
		defer rl.Stop()

		app := newLimitedApp(rl, "/compare", "/analyze")

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/compare", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		req := httptest.NewRequest("GET", "/compare", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)

		// /analyze uses the global limit
		for i := 0; i < 10; i++ {
			req = httptest.NewRequest("GET", "/analyze", nil)
			resp, _ = app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}
	})

	t.Run("headers reflect endpoint limits", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    100,
			Window: time.Minute,
			PerEndpoint: map[string]EndpointRateLimit{
				"/compare": {Requests: 30, Window: time.Minute},
			},
		})
		defer rl.Stop()

		app := newLimitedApp(rl, "/compare", "/analyze")

		req := httptest.NewRequest("GET", "/compare", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, "30", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "29", resp.Header.Get("X-RateLimit-Remaining"))

		req = httptest.NewRequest("GET", "/analyze", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "99", resp.Header.Get("X-RateLimit-Remaining"))
	})
}
