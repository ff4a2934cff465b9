package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sehatku-paylater/internal/config"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const testSecret = "test-secret"

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers = append(handlers, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"userId": userID})
	})
	app.Get("/", handlers...)
	return app
}

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
}

func token(t *testing.T, role domain.Role, minutes int) string {
	t.Helper()
	issuer := jwt.NewIssuer(testSecret, "test-refresh-secret", time.Duration(minutes)*time.Minute, time.Hour)
	tok, err := issuer.Access(7, "pasien@example.com", string(role))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(AuthMiddleware(testConfig()))

	tests := []struct {
		name   string
		setup  func(r *httptestRequest)
		status int
	}{
		{"missing token", func(r *httptestRequest) {}, fiber.StatusUnauthorized},
		{"bearer header", func(r *httptestRequest) { r.bearer = token(t, domain.RoleBPJS, 15) }, fiber.StatusOK},
		{"cookie", func(r *httptestRequest) { r.cookie = token(t, domain.RoleBPJS, 15) }, fiber.StatusOK},
		{"expired", func(r *httptestRequest) { r.bearer = token(t, domain.RoleBPJS, -1) }, fiber.StatusUnauthorized},
		{"garbage", func(r *httptestRequest) { r.bearer = "not-a-jwt" }, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &httptestRequest{}
			tt.setup(r)
			resp, err := app.Test(r.build())
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestHospitalAdminOnly(t *testing.T) {
	app := newTestApp(AuthMiddleware(testConfig()), HospitalAdminOnly())

	patient := &httptestRequest{bearer: token(t, domain.RoleNonBPJS, 15)}
	resp, _ := app.Test(patient.build())
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for patient, got %d", resp.StatusCode)
	}

	admin := &httptestRequest{bearer: token(t, domain.RoleHospitalAdmin, 15)}
	resp, _ = app.Test(admin.build())
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	app := newTestApp(OptionalAuth(testConfig()))

	r := &httptestRequest{bearer: "broken"}
	resp, _ := app.Test(r.build())
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequestID(t *testing.T) {
	app := newTestApp(RequestID())

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Fatal("expected a generated request id")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, _ = app.Test(req)
	if got := resp.Header.Get(fiber.HeaderXRequestID); got != "abc-123" {
		t.Fatalf("expected propagated id, got %q", got)
	}
}

type httptestRequest struct {
	bearer string
	cookie string
}

func (r *httptestRequest) build() *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	if r.cookie != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: r.cookie})
	}
	return req
}
