package serverutils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(token string, body []byte) string {
	key, _ := base64.StdEncoding.DecodeString(token)
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

var webhookToken = base64.StdEncoding.EncodeToString([]byte("webhook-secret"))

func TestVerifyChatworkSignature(t *testing.T) {
	body := []byte(`{"webhook_event":{"body":"hi"}}`)

	assert.True(t, VerifyChatworkSignature(webhookToken, body, sign(webhookToken, body)))
	assert.False(t, VerifyChatworkSignature(webhookToken, []byte("tampered"), sign(webhookToken, body)))
	assert.False(t, VerifyChatworkSignature(webhookToken, body, "not-base64!"))
	assert.False(t, VerifyChatworkSignature("", body, sign(webhookToken, body)))
}

func TestChatworkSignatureMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/hook", ChatworkSignatureMiddleware(webhookToken), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	body := `{"webhook_event":{"body":"hi"}}`

	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set(ChatworkSignatureHeader, sign(webhookToken, []byte(body)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set(ChatworkSignatureHeader, sign(webhookToken, []byte("other")))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", JwtMiddleware("s3cret"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("operator").(string))
	})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ops", string(got))

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type sample struct {
	Question string `json:"question" validate:"required,max=10"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Question: "ok"}))

	err := ValidateRequest(sample{})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Contains(t, fe.Message, "sample.Question")
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return &apperror.UpstreamError{Service: "kintone", StatusCode: 520, Body: "down"}
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/upstream", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, 502, body.Code)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
