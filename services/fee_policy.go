package services

import (
	"fmt"
	"sync"

	"github.com/athena3d/athena-backend/models"

	"github.com/holiman/uint256"
)

const (
	// BasisPointsDenominator: 10000 basis points = 100%.
	BasisPointsDenominator = 10000

	// MaxRoyaltyBasisPoints é o teto de royalty fixado no mint (50%).
	MaxRoyaltyBasisPoints = 5000
)

// FeePolicyService guarda a taxa de plataforma vigente e calcula a
// divisão do preço de venda em taxa, royalty e parte do vendedor.
type FeePolicyService struct {
	mu           sync.RWMutex
	rate         uint16 // basis points, lida por toda liquidação
	ceiling      uint16 // teto duro de rate; protege vendedores de taxas confiscatórias
	admin        string // única identidade autorizada a mudar a taxa
	feeRecipient string // identidade que recebe a taxa de plataforma
}

// NewFeePolicyService cria a política com a taxa padrão do deployer.
// defaultRate acima de ceiling é um erro de configuração.
func NewFeePolicyService(defaultRate, ceiling uint16, admin, feeRecipient string) (*FeePolicyService, error) {
	if defaultRate > ceiling {
		return nil, fmt.Errorf("taxa padrão %d acima do teto %d: %w", defaultRate, ceiling, ErrInvalidRate)
	}
	return &FeePolicyService{
		rate:         defaultRate,
		ceiling:      ceiling,
		admin:        admin,
		feeRecipient: feeRecipient,
	}, nil
}

// RateBasisPoints retorna a taxa de plataforma vigente.
func (s *FeePolicyService) RateBasisPoints() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// FeeRecipient retorna a identidade que recebe a taxa de plataforma.
func (s *FeePolicyService) FeeRecipient() string {
	return s.feeRecipient
}

// SetFeeRate muda a taxa de plataforma. Apenas o admin pode chamar e o
// novo valor não pode exceder o teto.
func (s *FeePolicyService) SetFeeRate(newRate uint16, caller string) error {
	if caller != s.admin {
		return fmt.Errorf("apenas o admin pode alterar a taxa de plataforma: %w", ErrUnauthorized)
	}
	if newRate > s.ceiling {
		return fmt.Errorf("taxa %d excede o teto de %d basis points: %w", newRate, s.ceiling, ErrInvalidRate)
	}
	s.mu.Lock()
	s.rate = newRate
	s.mu.Unlock()
	return nil
}

// ComputeSplit divide o preço de venda em três parcelas inteiras:
//
//	platformFee   = floor(salePrice * rate / 10000)
//	royaltyAmount = floor(salePrice * royaltyBasisPoints / 10000)
//	sellerAmount  = salePrice - platformFee - royaltyAmount
//
// O truncamento acumula qualquer resto no vendedor, nunca na plataforma
// ou no criador, e as três parcelas somam exatamente o preço. O produto
// preço × basis points pode estourar uint64 para preços grandes, então
// o cálculo intermediário é feito em 256 bits.
func (s *FeePolicyService) ComputeSplit(salePrice uint64, royaltyBasisPoints uint16) (models.Split, error) {
	if royaltyBasisPoints > MaxRoyaltyBasisPoints {
		return models.Split{}, fmt.Errorf("royalty de %d basis points: %w", royaltyBasisPoints, ErrInvalidRoyalty)
	}

	price := uint256.NewInt(salePrice)
	denominator := uint256.NewInt(BasisPointsDenominator)

	platformFee := new(uint256.Int).Mul(price, uint256.NewInt(uint64(s.RateBasisPoints())))
	platformFee.Div(platformFee, denominator)

	royaltyAmount := new(uint256.Int).Mul(price, uint256.NewInt(uint64(royaltyBasisPoints)))
	royaltyAmount.Div(royaltyAmount, denominator)

	// rate <= 10% e royalty <= 50%, então as duas parcelas nunca passam do preço.
	split := models.Split{
		PlatformFee:   platformFee.Uint64(),
		RoyaltyAmount: royaltyAmount.Uint64(),
	}
	split.SellerAmount = salePrice - split.PlatformFee - split.RoyaltyAmount
	return split, nil
}
