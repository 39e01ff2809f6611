package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type ChatbotHandler struct {
	chatbot ports.ChatbotService
}

func NewChatbotHandler(chatbot ports.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbot: chatbot}
}

type askRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type askResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source"`
}

// Ask answers a question from the FAQ or the language model.
//
// @Summary      Ask the HR assistant
// @Tags         chatbot
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      askRequest  true  "Question"
// @Success      200   {object}  askResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/chatbot/ask [post]
func (h *ChatbotHandler) Ask(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req askRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ans, err := h.chatbot.Ask(c.Request().Context(), p.UserID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, askResponse{Reply: ans.Reply, Source: ans.Source})
}

// History returns the caller's conversation.
//
// @Summary      Chat history
// @Tags         chatbot
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ChatSession
// @Router       /api/chatbot/history [get]
func (h *ChatbotHandler) History(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	sess, err := h.chatbot.History(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}
