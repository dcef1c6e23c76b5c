package api

import (
	"errors"
	"net/http"

	"github.com/nyashahama/guide-delivery-backend/internal/delivery"
)

// ─── POST /api/send-download ──────────────────────────────────────────────────

type sendDownloadRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sendDownloadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

type sendDownloadFailedResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Reference string `json:"reference"`
	Error     string `json:"error"`
}

// handleSendDownload delivers the guide directly to the given address.
// Payment is trusted to have been settled out-of-band (prior checkout
// step), so there is no gateway call on this path.
func (s *Server) handleSendDownload(w http.ResponseWriter, r *http.Request) {
	var req sendDownloadRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.workflow.Deliver(r.Context(), delivery.DeliveryRequest{
		Email: req.Email,
		Name:  req.Name,
	})

	var validationErr *delivery.ValidationError
	var deliveryErr *delivery.DeliveryError

	switch {
	case err == nil:
		respond(w, http.StatusOK, sendDownloadResponse{
			Success: true,
			Message: "PDF 파일이 이메일로 발송되었습니다.",
			Email:   res.Email,
		})

	case errors.As(err, &validationErr):
		respondErr(w, http.StatusBadRequest, validationErr.Message)

	case errors.As(err, &deliveryErr):
		s.logger.Error("send-download: delivery failed",
			"reference", res.Reference,
			"asset_missing", deliveryErr.AssetMissing,
			"error", deliveryErr.Err,
			logField(r),
		)
		respond(w, http.StatusInternalServerError, sendDownloadFailedResponse{
			Success:   false,
			Code:      "delivery_failed",
			Reference: res.Reference,
			Error:     "이메일 발송 중 오류가 발생했습니다. 카카오톡 채널로 문의해주세요.",
		})

	default:
		s.respondInternalErr(w, r, err)
	}
}
