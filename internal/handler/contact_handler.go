package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/carblog/internal/middleware"
	"github.com/hitoshi/carblog/internal/model"
)

// maxContactBodySize はお問い合わせリクエストボディの上限（64KiB）。
const maxContactBodySize = 64 << 10

// ContactServiceInterface はお問い合わせハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	Submit(ctx context.Context, msg model.ContactMessage) error
}

// ContactHandler はお問い合わせフォームのHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// contactAcceptedResponse は受付完了のレスポンス。
type contactAcceptedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Submit はお問い合わせを受け付ける。
// POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBodySize)

	var msg model.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.Submit(r.Context(), msg); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, contactAcceptedResponse{
		Status:  "received",
		Message: "Thank you for your message. We'll get back to you soon.",
	})
}
