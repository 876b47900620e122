package controller

import (
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/dto"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/pkg/serverutils"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/", c.Create)
	h.Get("/", c.GetAll)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var request dto.CreateDocumentRequest
	if err := ctx.BodyParser(&request); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(request); err != nil {
		return err
	}

	response, err := c.documentService.Create(ctx.Context(), userId, &request)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document created", response))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	response, err := c.documentService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents retrieved", response))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	var request dto.CreateDocumentRequest
	if err := ctx.BodyParser(&request); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(request); err != nil {
		return err
	}

	if err := c.documentService.Update(ctx.Context(), userId, id, &request); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Document updated", nil))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Document deleted", nil))
}
