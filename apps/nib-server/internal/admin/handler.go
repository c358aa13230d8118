// Package admin は登録状況の参照と運用操作のためのHTTP APIを提供する。
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/nib"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/smsq"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/oyaguma3/nib-server-poc/pkg/httputil"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// Service は管理APIが使う処理を定義する。
type Service interface {
	Registrations() []model.Registration
	PendingSMS() []model.PendingSMS
	Rejected() []model.Rejection
	Reload(ctx context.Context) (*nib.ReloadReport, error)
	SendSystemSMS(ctx context.Context, imsi, text string) (*smsq.Entry, error)
}

// HealthResponse はヘルスチェックレスポンス
type HealthResponse struct {
	Status string `json:"status"`
}

// SMSRequest はPOST /api/v1/sms のリクエスト
type SMSRequest struct {
	IMSI string `json:"imsi" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// Handler は管理APIのハンドラー
type Handler struct {
	svc Service
}

// NewHandler は新しいHandlerを生成する。
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// HandleHealth はGET /health のハンドラー。
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleRegistrations はGET /api/v1/registrations のハンドラー。
func (h *Handler) HandleRegistrations(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.Registrations()))
}

// HandlePendingSMS はGET /api/v1/sms のハンドラー。
func (h *Handler) HandlePendingSMS(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.PendingSMS()))
}

// HandleRejected はGET /api/v1/rejected のハンドラー。
func (h *Handler) HandleRejected(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.Rejected()))
}

// HandleReload はPOST /api/v1/reload のハンドラー。
func (h *Handler) HandleReload(c *gin.Context) {
	report, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			httputil.WriteError(c, httputil.BadRequest(verr.Error()))
			return
		}
		httputil.WriteError(c, httputil.ServiceUnavailable(err.Error()))
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleSendSMS はPOST /api/v1/sms のハンドラー。
func (h *Handler) HandleSendSMS(c *gin.Context) {
	var req SMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.WriteError(c, httputil.BadRequest("imsi and text are required"))
		return
	}

	e, err := h.svc.SendSystemSMS(c.Request.Context(), req.IMSI, req.Text)
	switch {
	case errors.Is(err, apperr.ErrNotRegistered):
		httputil.WriteError(c, httputil.NotFound("subscriber "+req.IMSI+" is not registered"))
		return
	case errors.Is(err, smsq.ErrEmptyBody):
		httputil.WriteError(c, httputil.BadRequest(err.Error()))
		return
	case err != nil:
		httputil.WriteError(c, httputil.InternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, e.View())
}

// nonNil は空の一覧をnullではなく[]として返すためのもの
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
