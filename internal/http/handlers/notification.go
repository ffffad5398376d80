package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/data/repos/notifications"
	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type NotificationHandler struct {
	log              *logger.Logger
	notificationRepo notifications.NotificationRepo
}

func NewNotificationHandler(log *logger.Logger, notificationRepo notifications.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{
		log:              log.With("handler", "NotificationHandler"),
		notificationRepo: notificationRepo,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
		return
	}

	limit := intQuery(c, "limit", 50)
	rows, err := h.notificationRepo.GetByUserID(ctx, nil, rd.UserID, limit)
	if err != nil {
		h.log.Error("List failed", "error", err, "user_id", rd.UserID)
		response.RespondServiceError(c, "load_notifications_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": rows, "total": len(rows)})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_notification_id", err)
		return
	}

	if err := h.notificationRepo.MarkRead(ctx, nil, rd.UserID, notificationID); err != nil {
		h.log.Error("MarkRead failed", "error", err, "notification_id", notificationID)
		response.RespondServiceError(c, "mark_read_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"marked_read": true})
}
