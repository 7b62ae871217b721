package controller

import (
	"time"

	"kb-assistant-be/internal/dto"
	"kb-assistant-be/internal/pkg/serverutils"
	"kb-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

var ackMessages = map[string]string{
	service.OutcomeAccepted: "OK",
	service.OutcomeEmpty:    "OK",
	service.OutcomeSkipped:  "Message from bot itself. Skipped.",
}

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Receive(ctx *fiber.Ctx) error
}

type webhookController struct {
	service      service.IAssistantService
	webhookToken string
}

func NewWebhookController(service service.IAssistantService, webhookToken string) IWebhookController {
	return &webhookController{
		service:      service,
		webhookToken: webhookToken,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatwork/v1")
	h.Get("/webhook", c.Health)
	h.Post("/webhook", serverutils.ChatworkSignatureMiddleware(c.webhookToken), c.Receive)
}

func (c *webhookController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Message:   "Chatwork AI Bot API is running!",
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	})
}

// Receive acknowledges the event immediately; the answer is posted to the
// room in the background.
func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	var req dto.WebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid webhook body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	outcome := c.service.HandleWebhook(ctx.UserContext(), req.WebhookEvent)
	return ctx.JSON(dto.WebhookResponse{Message: ackMessages[outcome]})
}
