package serverutils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
)

const ChatworkSignatureHeader = "X-ChatWorkWebhookSignature"

// VerifyChatworkSignature checks the base64 HMAC-SHA256 of body keyed with
// the base64-decoded webhook token.
func VerifyChatworkSignature(token string, body []byte, signature string) bool {
	key, err := base64.StdEncoding.DecodeString(token)
	if err != nil || len(key) == 0 {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// ChatworkSignatureMiddleware rejects webhook calls whose signature does not
// match. With no token configured every call is accepted.
func ChatworkSignatureMiddleware(token string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if token == "" {
			return ctx.Next()
		}
		sig := ctx.Get(ChatworkSignatureHeader)
		if sig == "" {
			sig = ctx.Query("chatwork_webhook_signature")
		}
		if !VerifyChatworkSignature(token, ctx.Body(), sig) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid signature"))
		}
		return ctx.Next()
	}
}
