package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/athena3d/athena-backend/services"

	"github.com/go-chi/chi/v5"
)

// AccountHandler expõe os saldos a receber acumulados na tesouraria.
type AccountHandler struct {
	Treasury *services.TreasuryService
}

func NewAccountHandler(treasury *services.TreasuryService) *AccountHandler {
	return &AccountHandler{Treasury: treasury}
}

// GetBalance retorna o saldo acumulado de uma identidade.
// GET /accounts/{id}/balance
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "id")
	if account == "" {
		http.Error(w, "ID da conta é obrigatório", http.StatusBadRequest)
		return
	}

	resp := struct {
		Account string `json:"account"`
		Balance uint64 `json:"balance"`
	}{account, h.Treasury.Balance(account)}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
