package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/athena3d/athena-backend/services"
)

// AdminHandler lida com as operações privilegiadas da plataforma.
type AdminHandler struct {
	FeePolicy *services.FeePolicyService
}

func NewAdminHandler(feePolicy *services.FeePolicyService) *AdminHandler {
	return &AdminHandler{FeePolicy: feePolicy}
}

// SetFeeRate altera a taxa de plataforma (somente admin).
// POST /admin/fee-rate
func (h *AdminHandler) SetFeeRate(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		NewRateBasisPoints uint16 `json:"new_rate_basis_points"`
		Caller             string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Caller == "" {
		http.Error(w, "Caller é obrigatório", http.StatusBadRequest)
		return
	}

	if err := h.FeePolicy.SetFeeRate(requestBody.NewRateBasisPoints, requestBody.Caller); err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeRate(w)
}

// GetFeeRate retorna a taxa de plataforma vigente.
// GET /admin/fee-rate
func (h *AdminHandler) GetFeeRate(w http.ResponseWriter, r *http.Request) {
	h.writeRate(w)
}

func (h *AdminHandler) writeRate(w http.ResponseWriter) {
	resp := struct {
		RateBasisPoints uint16 `json:"rate_basis_points"`
	}{h.FeePolicy.RateBasisPoints()}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
