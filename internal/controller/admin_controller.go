package controller

import (
	"kb-assistant-be/internal/dto"
	"kb-assistant-be/internal/pkg/serverutils"
	"kb-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	AskGet(ctx *fiber.Ctx) error
	AskPost(ctx *fiber.Ctx) error
	PurgeCache(ctx *fiber.Ctx) error
}

type adminController struct {
	service   service.IAssistantService
	jwtSecret string
}

func NewAdminController(service service.IAssistantService, jwtSecret string) IAdminController {
	return &adminController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

// adminMiddleware requires the "admin" role claim set by JwtMiddleware.
func (c *adminController) adminMiddleware(ctx *fiber.Ctx) error {
	role, _ := ctx.Locals("role").(string)
	if role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Access denied: Admins only"))
	}
	return ctx.Next()
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1", serverutils.JwtMiddleware(c.jwtSecret), c.adminMiddleware)
	h.Get("/ask", c.AskGet)
	h.Post("/ask", c.AskPost)
	h.Post("/cache/purge", c.PurgeCache)
}

// AskGet runs the pipeline for ?q= without posting to chat.
func (c *adminController) AskGet(ctx *fiber.Ctx) error {
	return c.ask(ctx, dto.AskRequest{Question: ctx.Query("q")})
}

func (c *adminController) AskPost(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return c.ask(ctx, req)
}

func (c *adminController) ask(ctx *fiber.Ctx, req dto.AskRequest) error {
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), req.Question)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *adminController) PurgeCache(ctx *fiber.Ctx) error {
	res, err := c.service.PurgeCache(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Knowledge cache purged", res))
}
