package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/athena3d/athena-backend/services"
	"github.com/athena3d/athena-backend/storage"

	"github.com/go-chi/chi/v5"
)

// MarketplaceHandler lida com as requisições HTTP do marketplace de NFTs.
type MarketplaceHandler struct {
	Minting    *services.MintingService
	Listing    *services.ListingService
	Settlement *services.SettlementService
	Ledger     storage.Ledger
}

// NewMarketplaceHandler cria uma nova instância do handler do marketplace.
func NewMarketplaceHandler(minting *services.MintingService, listing *services.ListingService, settlement *services.SettlementService, ledger storage.Ledger) *MarketplaceHandler {
	return &MarketplaceHandler{Minting: minting, Listing: listing, Settlement: settlement, Ledger: ledger}
}

// Mint cria um novo NFT.
// POST /nfts
func (h *MarketplaceHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Recipient          string `json:"recipient"`
		MetadataURI        string `json:"metadata_uri"`
		RoyaltyBasisPoints uint16 `json:"royalty_basis_points"`
		Caller             string `json:"caller"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Recipient == "" || requestBody.MetadataURI == "" || requestBody.Caller == "" {
		http.Error(w, "Destinatário, URI de metadados e caller são obrigatórios", http.StatusBadRequest)
		return
	}

	token, err := h.Minting.Mint(requestBody.Recipient, requestBody.MetadataURI, requestBody.RoyaltyBasisPoints, requestBody.Caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(token)
}

// GetTokenByID obtém o registro completo de um token.
// GET /nfts/{id}
func (h *MarketplaceHandler) GetTokenByID(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	token, found, err := h.Ledger.GetToken(tokenID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Token não encontrado", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(token)
}

// GetTokensByOwner obtém todos os tokens de uma identidade.
// GET /nfts/by-owner/{owner}
func (h *MarketplaceHandler) GetTokensByOwner(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		http.Error(w, "Proprietário é obrigatório", http.StatusBadRequest)
		return
	}

	tokens, err := h.Ledger.GetTokensByOwner(owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokens)
}

// GetListing obtém o estado de listagem de um token.
// GET /nfts/{id}/listing
func (h *MarketplaceHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	listing, err := h.Listing.GetListing(tokenID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// GetRoyaltyInfo obtém o criador e o royalty fixado no mint.
// GET /nfts/{id}/royalty
func (h *MarketplaceHandler) GetRoyaltyInfo(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	creator, royaltyBasisPoints, err := h.Listing.GetRoyaltyInfo(tokenID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := struct {
		Creator            string `json:"creator"`
		RoyaltyBasisPoints uint16 `json:"royalty_basis_points"`
	}{creator, royaltyBasisPoints}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// List coloca um token à venda.
// POST /nfts/{id}/list
func (h *MarketplaceHandler) List(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	var requestBody struct {
		Price  uint64 `json:"price"`
		Caller string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Caller == "" {
		http.Error(w, "Caller é obrigatório", http.StatusBadRequest)
		return
	}

	listing, err := h.Listing.List(tokenID, requestBody.Price, requestBody.Caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// Unlist retira um token da venda.
// POST /nfts/{id}/unlist
func (h *MarketplaceHandler) Unlist(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	var requestBody struct {
		Caller string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Caller == "" {
		http.Error(w, "Caller é obrigatório", http.StatusBadRequest)
		return
	}

	if err := h.Listing.Unlist(tokenID, requestBody.Caller); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Purchase liquida a compra de um token listado.
// POST /nfts/{id}/purchase
func (h *MarketplaceHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	var requestBody struct {
		Caller        string `json:"caller"`
		PaymentAmount uint64 `json:"payment_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Caller == "" {
		http.Error(w, "Caller é obrigatório", http.StatusBadRequest)
		return
	}

	receipt, err := h.Settlement.Purchase(tokenID, requestBody.Caller, requestBody.PaymentAmount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

func parseTokenID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	tokenID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "ID do token inválido", http.StatusBadRequest)
		return 0, false
	}
	return tokenID, true
}

// writeServiceError traduz os erros sentinela dos serviços para HTTP.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrTokenNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidRoyalty),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidRate):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotListed):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientPayment):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrTransferFailed):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
