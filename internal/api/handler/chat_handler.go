package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

// ChatHandler serves the authenticated /api/chat routes.
type ChatHandler struct {
	chat ports.ChatService
}

func NewChatHandler(chat ports.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat sends a message and returns the assistant reply.
//
// @Summary      Send a chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      chatRequest  true  "Message and recent turns"
// @Success      200   {object}  chatResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}

	reply, err := h.chat.Chat(c.Request().Context(), toChatInput(userID, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chatResponse{Reply: reply})
}

// History returns the caller's stored conversation, oldest first.
//
// @Summary      Get chat history
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  historyResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/chat/history [get]
func (h *ChatHandler) History(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	turns, err := h.chat.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnResponse{Role: string(t.Role), Text: t.Text, Timestamp: t.Timestamp})
	}
	return c.JSON(http.StatusOK, historyResponse{Messages: out})
}

// ClearHistory deletes the caller's stored conversation.
//
// @Summary      Clear chat history
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/chat/history [delete]
func (h *ChatHandler) ClearHistory(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.chat.ClearHistory(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "chat history cleared"})
}

func toChatInput(userID string, r chatRequest) ports.ChatInput {
	in := ports.ChatInput{UserID: userID, Message: r.Message}
	if len(r.History) > 0 {
		in.History = make([]ports.HistoryEntry, 0, len(r.History))
		for _, h := range r.History {
			in.History = append(in.History, ports.HistoryEntry{Role: h.Role, Text: h.Text})
		}
	}
	return in
}
