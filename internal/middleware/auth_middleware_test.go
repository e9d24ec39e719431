package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// newPrivilegeApp builds a tiny app whose first handler injects the
// privileges RequireAuth would normally load from the token.
func newPrivilegeApp(privileges []string, gate fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("user_privileges", privileges)
		return c.Next()
	}, gate, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app
}

func TestRequirePrivilege(t *testing.T) {
	tests := []struct {
		name       string
		privileges []string
		want       int
	}{
		{"holder passes", []string{"sale:view", "report:view"}, 200},
		{"non-holder blocked", []string{"sale:create"}, 403},
		{"no privileges blocked", nil, 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newPrivilegeApp(tt.privileges, RequirePrivilege("report:view"))
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRequireAnyPrivilege(t *testing.T) {
	gate := RequireAnyPrivilege("report:view", "sale:view")

	tests := []struct {
		name       string
		privileges []string
		want       int
	}{
		{"first code passes", []string{"report:view"}, 200},
		{"second code passes", []string{"sale:view"}, 200},
		{"neither code blocked", []string{"drug:create"}, 403},
		{"no privileges blocked", nil, 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newPrivilegeApp(tt.privileges, gate)
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
