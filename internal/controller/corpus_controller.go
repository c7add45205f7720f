package controller

import (
	"net/http"
	"strconv"

	"poetic-camera-be/internal/dto"
	"poetic-camera-be/internal/pkg/serverutils"
	"poetic-camera-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	Add(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type corpusController struct {
	corpusService service.ICorpusService
}

func NewCorpusController(corpusService service.ICorpusService) ICorpusController {
	return &corpusController{
		corpusService: corpusService,
	}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Post("", c.Add)
	h.Get("", c.List)
	h.Get("search", c.Search)
	h.Get(":poemId", c.Show)
}

func (c *corpusController) Add(ctx *fiber.Ctx) error {
	var req dto.AddPoemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.corpusService.Add(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue poem for indexing", res))
}

func (c *corpusController) List(ctx *fiber.Ctx) error {
	namespace := ctx.Query("namespace")
	if namespace == "" {
		return serverutils.NewAppError(http.StatusBadRequest, "query parameter namespace is required")
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "0"))

	res, err := c.corpusService.List(ctx.Context(), namespace, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list corpus", res))
}

func (c *corpusController) Show(ctx *fiber.Ctx) error {
	poemId, err := uuid.Parse(ctx.Params("poemId"))
	if err != nil {
		return serverutils.NewAppError(http.StatusBadRequest, "invalid poem id")
	}

	res, err := c.corpusService.Show(ctx.Context(), poemId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get poem", res))
}

func (c *corpusController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return serverutils.NewAppError(http.StatusBadRequest, "query parameter q is required")
	}

	namespace := ctx.Query("namespace")
	if namespace == "" {
		return serverutils.NewAppError(http.StatusBadRequest, "query parameter namespace is required")
	}

	topK, _ := strconv.Atoi(ctx.Query("top_k", "0"))

	res, err := c.corpusService.Search(ctx.Context(), query, namespace, topK)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search corpus", res))
}
