package handlers

import (
	"context"
	"errors"

	"rag-mentor/internal/dto"
	"rag-mentor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Answer a user message with knowledge-grounded advice
// @Description Embeds the message, retrieves matching techniques under the given filters and generates an answer
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat request"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	answer, usedKuIDs, err := h.chatService.Chat(c.Context(), req.UserMessage, req.ConvoHistory, req.ToFilter())
	if err != nil {
		return h.mapError(c, err)
	}

	if usedKuIDs == nil {
		usedKuIDs = []string{}
	}
	return c.JSON(dto.ChatResponse{
		Answer:    answer,
		UsedKuIDs: usedKuIDs,
	})
}

// mapError translates the service error taxonomy into HTTP codes. Provider
// failures are never disguised as answers: the caller always sees a non-2xx
// with an error body.
func (h *ChatHandler) mapError(c *fiber.Ctx, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: validationErr.Error()})
	}

	status := fiber.StatusInternalServerError
	var embErr *service.EmbeddingError
	var genErr *service.GenerationError
	var storeErr *service.StoreError
	switch {
	case errors.As(err, &embErr), errors.As(err, &genErr):
		status = fiber.StatusBadGateway
	case errors.As(err, &storeErr):
		status = fiber.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		status = fiber.StatusGatewayTimeout
	}

	h.logger.Error("Chat turn failed", zap.Error(err), zap.Int("status", status))
	return c.Status(status).JSON(dto.ErrorResponse{Error: err.Error()})
}
