package serverutils

import (
	"errors"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type sampleRequest struct {
	Message string `validate:"required"`
	Email   string `validate:"omitempty,email"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := ValidateRequest(sampleRequest{Message: "halo"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{})
		if err == nil {
			t.Fatal("expected validation error")
		}

		var fe *fiber.Error
		if !errors.As(err, &fe) {
			t.Fatalf("expected fiber error, got %T", err)
		}
		if fe.Code != fiber.StatusBadRequest {
			t.Errorf("code = %d, want 400", fe.Code)
		}
		if !strings.Contains(fe.Message, "Message") {
			t.Errorf("message %q does not name the failed field", fe.Message)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{Message: "halo", Email: "not-an-email"})
		if err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestSuccessResponse(t *testing.T) {
	res := SuccessResponse("ok", 42)
	if !res.Success || res.Message != "ok" || res.Data != 42 {
		t.Errorf("unexpected response: %+v", res)
	}
}
