package services

import (
	"fmt"

	"github.com/athena3d/athena-backend/models"
	"github.com/athena3d/athena-backend/storage"
)

// ListingService liga e desliga o estado de venda de um token,
// aplicando as checagens de propriedade.
type ListingService struct {
	Ledger storage.Ledger
	Events EventPublisher
}

func NewListingService(ledger storage.Ledger, events EventPublisher) *ListingService {
	return &ListingService{Ledger: ledger, Events: events}
}

// List coloca o token à venda pelo preço dado.
func (s *ListingService) List(tokenID uint64, price uint64, caller string) (models.Listing, error) {
	token, found, err := s.Ledger.GetToken(tokenID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("falha ao buscar token: %w", err)
	}
	if !found {
		return models.Listing{}, fmt.Errorf("token %d: %w", tokenID, ErrTokenNotFound)
	}
	if caller != token.Owner {
		return models.Listing{}, fmt.Errorf("apenas o proprietário pode listar o token: %w", ErrUnauthorized)
	}
	if price == 0 {
		return models.Listing{}, fmt.Errorf("token %d: %w", tokenID, ErrInvalidPrice)
	}

	if err := s.Ledger.SetListing(tokenID, true, price); err != nil {
		return models.Listing{}, fmt.Errorf("falha ao gravar listagem: %w", err)
	}

	s.Events.Publish(models.Event{
		Type:    models.EventTokenListed,
		TokenID: tokenID,
		Price:   price,
	})
	return models.Listing{TokenID: tokenID, IsListed: true, Price: price}, nil
}

// Unlist retira o token da venda. Falha com ErrNotListed se a listagem
// não estiver ativa (a segunda chamada consecutiva falha sem alterar nada).
func (s *ListingService) Unlist(tokenID uint64, caller string) error {
	token, found, err := s.Ledger.GetToken(tokenID)
	if err != nil {
		return fmt.Errorf("falha ao buscar token: %w", err)
	}
	if !found {
		return fmt.Errorf("token %d: %w", tokenID, ErrTokenNotFound)
	}
	if caller != token.Owner {
		return fmt.Errorf("apenas o proprietário pode retirar o token da venda: %w", ErrUnauthorized)
	}

	listing, _, err := s.Ledger.GetListing(tokenID)
	if err != nil {
		return fmt.Errorf("falha ao buscar listagem: %w", err)
	}
	if !listing.IsListed {
		return fmt.Errorf("token %d: %w", tokenID, ErrNotListed)
	}

	if err := s.Ledger.SetListing(tokenID, false, 0); err != nil {
		return fmt.Errorf("falha ao limpar listagem: %w", err)
	}

	s.Events.Publish(models.Event{
		Type:    models.EventTokenUnlisted,
		TokenID: tokenID,
	})
	return nil
}

// GetListing retorna (isListed, price) de um token existente.
func (s *ListingService) GetListing(tokenID uint64) (models.Listing, error) {
	listing, found, err := s.Ledger.GetListing(tokenID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("falha ao buscar listagem: %w", err)
	}
	if !found {
		return models.Listing{}, fmt.Errorf("token %d: %w", tokenID, ErrTokenNotFound)
	}
	return listing, nil
}

// GetRoyaltyInfo retorna o criador original e o royalty fixado no mint.
func (s *ListingService) GetRoyaltyInfo(tokenID uint64) (string, uint16, error) {
	token, found, err := s.Ledger.GetToken(tokenID)
	if err != nil {
		return "", 0, fmt.Errorf("falha ao buscar token: %w", err)
	}
	if !found {
		return "", 0, fmt.Errorf("token %d: %w", tokenID, ErrTokenNotFound)
	}
	return token.Creator, token.RoyaltyBasisPoints, nil
}
