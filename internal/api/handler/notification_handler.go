package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type markReadRequest struct {
	IDs []string `json:"notificationIds" validate:"required,min=1,dive,required"`
}

type markReadResponse struct {
	Updated int64 `json:"updated"`
}

// All lists the caller's notifications, newest first.
//
// @Summary      All notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Notification
// @Router       /api/notifications [get]
func (h *NotificationHandler) All(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.notifications.All(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Unread lists the caller's unread notifications.
//
// @Summary      Unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Notification
// @Router       /api/notifications/unread [get]
func (h *NotificationHandler) Unread(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.notifications.Unread(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead flags notifications of the caller as read.
//
// @Summary      Mark notifications as read
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markReadRequest  true  "Notification ids"
// @Success      200   {object}  markReadResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/notifications/mark-as-read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req markReadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.notifications.MarkRead(c.Request().Context(), p.UserID, req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markReadResponse{Updated: n})
}
