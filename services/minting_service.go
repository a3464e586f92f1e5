package services

import (
	"fmt"

	"github.com/athena3d/athena-backend/models"
	"github.com/athena3d/athena-backend/storage"
)

// EventPublisher publica eventos de domínio na ordem de emissão e
// devolve o evento com sequência e id preenchidos.
type EventPublisher interface {
	Publish(ev models.Event) models.Event
}

// MintingService cria novos tokens com os termos de royalty embutidos.
type MintingService struct {
	Ledger storage.Ledger
	Events EventPublisher
}

func NewMintingService(ledger storage.Ledger, events EventPublisher) *MintingService {
	return &MintingService{Ledger: ledger, Events: events}
}

// Mint cria um token com owner = recipient e creator = caller.
// O caller do mint é o beneficiário permanente dos royalties, mesmo
// quando minta para outra identidade. O token nasce sem listagem.
func (s *MintingService) Mint(recipient, metadataURI string, royaltyBasisPoints uint16, caller string) (models.Token, error) {
	if royaltyBasisPoints > MaxRoyaltyBasisPoints {
		return models.Token{}, fmt.Errorf("royalty de %d basis points: %w", royaltyBasisPoints, ErrInvalidRoyalty)
	}

	token, err := s.Ledger.CreateToken(recipient, metadataURI, caller, royaltyBasisPoints)
	if err != nil {
		return models.Token{}, fmt.Errorf("falha ao registrar token no ledger: %w", err)
	}

	s.Events.Publish(models.Event{
		Type:        models.EventTokenMinted,
		TokenID:     token.TokenID,
		Creator:     token.Creator,
		MetadataURI: token.MetadataURI,
	})
	return token, nil
}
