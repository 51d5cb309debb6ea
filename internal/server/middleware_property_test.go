package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"pgregory.net/rapid"
)

func requestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals("request_id").(string)
		return c.SendString(id)
	})
	return app
}

// TestRequestIDEchoProperty checks that a caller-supplied request id is kept
// unchanged in both the response header and the request locals.
func TestRequestIDEchoProperty(t *testing.T) {
	app := requestIDApp()

	rapid.Check(t, func(t *rapid.T) {
		id := rapid.StringMatching(`[A-Za-z0-9_-]{1,64}`).Draw(t, "requestID")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if got := resp.Header.Get(RequestIDHeader); got != id {
			t.Fatalf("request id mismatch: sent %q, got %q", id, got)
		}
	})
}

// TestRequestIDGeneratedProperty checks that requests without an id always get
// a fresh UUID.
func TestRequestIDGeneratedProperty(t *testing.T) {
	app := requestIDApp()
	seen := make(map[string]bool)

	rapid.Check(t, func(t *rapid.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		id := resp.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("generated request id %q is not a UUID: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("request id %q was generated twice", id)
		}
		seen[id] = true
	})
}
