package extract

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/noah-isme/hampers-api/internal/common"
	"github.com/noah-isme/hampers-api/internal/obs"
)

// Handler exposes the text extraction endpoint.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

type textRequest struct {
	Text string `json:"text"`
}

// Text handles POST /api/v1/extract/text.
func (h *Handler) Text(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "text is required", nil)
		return
	}
	info := ProductInfo(req.Text)
	if obs.ExtractTotal != nil {
		obs.ExtractTotal.WithLabelValues(recognitionLabel(info)).Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": info})
}

func recognitionLabel(info Info) string {
	switch {
	case info.Title != nil && info.Spec != nil && info.Price != nil:
		return "full"
	case info.Title == nil && info.Spec == nil && info.Price == nil:
		return "none"
	}
	return "partial"
}
