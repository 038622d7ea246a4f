package log

import (
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func captureLine(t *testing.T, fn func()) entry {
	t.Helper()
	var sb strings.Builder
	prev := stdlog.Writer()
	prevFlags := stdlog.Flags()
	stdlog.SetOutput(&sb)
	stdlog.SetFlags(0)
	t.Cleanup(func() {
		stdlog.SetOutput(prev)
		stdlog.SetFlags(prevFlags)
	})

	fn()

	line := strings.TrimSpace(sb.String())
	var e entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("not a JSON line: %q: %v", line, err)
	}
	return e
}

func TestInfoWithoutRequestContext(t *testing.T) {
	e := captureLine(t, func() {
		Info(nil, "server.start", map[string]any{"port": "8080"})
	})
	if e.Level != "info" || e.Action != "server.start" {
		t.Fatalf("got %+v", e)
	}
	if e.Fields["port"] != "8080" {
		t.Fatalf("fields lost: %+v", e.Fields)
	}
	if e.TS == "" {
		t.Fatalf("missing timestamp: %+v", e)
	}
}

func TestErrorCarriesErrAndRequestFields(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		Error(c, "thing.fail", errors.New("db gone"), nil)
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	e := captureLine(t, func() {
		if _, err := app.Test(httptest.NewRequest("GET", "/boom", nil)); err != nil {
			t.Fatal(err)
		}
	})
	if e.Level != "error" || e.Err != "db gone" {
		t.Fatalf("got %+v", e)
	}
	if e.Method != "GET" || e.Path != "/boom" {
		t.Fatalf("request fields missing: %+v", e)
	}
}
