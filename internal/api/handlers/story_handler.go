package handlers

import (
	"errors"

	"rag-mentor/internal/dto"
	"rag-mentor/internal/models"
	"rag-mentor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StoryHandler struct {
	storyService *service.StoryService
	logger       *zap.Logger
}

func NewStoryHandler(storyService *service.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		logger:       logger,
	}
}

// SubmitStory godoc
// @Summary Submit an anonymized outcome story
// @Description Stores the story best-effort; persistence failures do not surface to the caller
// @Tags stories
// @Accept json
// @Produce json
// @Param request body dto.StoryRequest true "Story"
// @Success 200 {object} dto.StoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /student_story [post]
func (h *StoryHandler) SubmitStory(c *fiber.Ctx) error {
	var req dto.StoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	story := &models.StudentStory{
		TelegramUserID: req.TelegramUserID,
		Level:          req.Level,
		Stage:          req.Stage,
		Channel:        req.Channel,
		Goal:           req.Goal,
		Text:           req.Text,
		Outcome:        models.StoryOutcome(req.Outcome),
		UsedKuIDs:      req.UsedKuIDs,
	}

	if err := h.storyService.Submit(c.Context(), story); err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: validationErr.Error()})
		}
		h.logger.Error("Story submission failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.StoryResponse{Status: "ok"})
}
