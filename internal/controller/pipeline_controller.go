package controller

import (
	"io"
	"net/http"

	"poetic-camera-be/internal/dto"
	"poetic-camera-be/internal/pkg/serverutils"
	"poetic-camera-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	GetAudio(ctx *fiber.Ctx) error
	GetState(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	ListPersonas(ctx *fiber.Ctx) error
}

type pipelineController struct {
	pipelineService service.IPipelineService
}

func NewPipelineController(pipelineService service.IPipelineService) IPipelineController {
	return &pipelineController{
		pipelineService: pipelineService,
	}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Get("personas", c.ListPersonas)
	h.Post("session", c.CreateSession)
	h.Get("session/:sessionId", c.GetState)
	h.Post("session/:sessionId/analyze", c.Analyze)
	h.Post("session/:sessionId/generate", c.Generate)
	h.Get("session/:sessionId/audio", c.GetAudio)
	h.Post("session/:sessionId/reset", c.Reset)
}

func (c *pipelineController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.pipelineService.CreateSession(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *pipelineController) Analyze(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return serverutils.NewAppError(http.StatusBadRequest, "image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if len(image) == 0 {
		return serverutils.NewAppError(http.StatusBadRequest, "image file is empty")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	persona := ctx.FormValue("persona")

	res, err := c.pipelineService.Analyze(ctx.Context(), sessionId, persona, fileHeader.Filename, image, mimeType)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze image", res))
}

func (c *pipelineController) Generate(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	var req dto.GeneratePoemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pipelineService.Generate(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate poem", res))
}

func (c *pipelineController) GetAudio(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	audio, err := c.pipelineService.GetAudio(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	return ctx.Send(audio)
}

func (c *pipelineController) GetState(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	res, err := c.pipelineService.GetState(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session state", res))
}

func (c *pipelineController) Reset(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	if err := c.pipelineService.Reset(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", nil))
}

func (c *pipelineController) ListPersonas(ctx *fiber.Ctx) error {
	res := c.pipelineService.ListPersonas()
	return ctx.JSON(serverutils.SuccessResponse("Success list personas", res))
}

func parseSessionId(ctx *fiber.Ctx) (uuid.UUID, error) {
	idParam := ctx.Params("sessionId")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return uuid.Nil, serverutils.NewAppError(http.StatusBadRequest, "invalid session id")
	}
	return id, nil
}
