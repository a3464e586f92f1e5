package services

import (
	"fmt"
	"log"
	"time"

	"github.com/athena3d/athena-backend/models"
	"github.com/athena3d/athena-backend/storage"

	"github.com/google/uuid"
)

// Tipos de pagamento gerados por uma liquidação.
const (
	PaymentKindPlatformFee    = "platform_fee"
	PaymentKindRoyalty        = "royalty"
	PaymentKindSellerProceeds = "seller_proceeds"
	PaymentKindRefund         = "refund"
)

// SettlementService executa a compra de um token listado: valida a
// listagem, transfere a propriedade, reparte o pagamento e retira o
// token da venda, tudo como uma unidade atômica.
type SettlementService struct {
	Ledger   storage.Ledger
	Fees     *FeePolicyService
	Treasury Disburser
	Events   EventPublisher
}

func NewSettlementService(ledger storage.Ledger, fees *FeePolicyService, treasury Disburser, events EventPublisher) *SettlementService {
	return &SettlementService{Ledger: ledger, Fees: fees, Treasury: treasury, Events: events}
}

// Purchase liquida a compra do token por caller pagando paymentAmount.
//
// A ordem segue checks-effects-interactions: toda validação e o cálculo
// da divisão acontecem antes de qualquer mutação; a troca de dono e a
// limpeza da listagem entram numa transação do ledger; só então a
// tesouraria desembolsa. Se qualquer pagamento falhar, a transação
// inteira é revertida — uma reentrada em Purchase durante o desembolso
// já observa o token sem listagem e com o novo dono, então a mesma
// listagem nunca é gasta duas vezes.
//
// Compra pelo próprio dono é permitida: a divisão completa é aplicada.
func (s *SettlementService) Purchase(tokenID uint64, caller string, paymentAmount uint64) (models.Receipt, error) {
	tx, err := s.Ledger.Begin()
	if err != nil {
		return models.Receipt{}, fmt.Errorf("falha ao abrir transação de liquidação: %w", err)
	}

	// As leituras passam pela transação para que duas compras
	// concorrentes do mesmo token fiquem serializadas: a segunda só
	// enxerga o estado depois que a primeira confirmou ou reverteu.
	token, found, err := tx.GetToken(tokenID)
	if err != nil {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("falha ao buscar token: %w", err)
	}
	if !found {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("token %d: %w", tokenID, ErrTokenNotFound)
	}

	listing, _, err := tx.GetListing(tokenID)
	if err != nil {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("falha ao buscar listagem: %w", err)
	}
	if !listing.IsListed {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("token %d: %w", tokenID, ErrNotListed)
	}
	if paymentAmount < listing.Price {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("pagamento de %d para preço de %d: %w",
			paymentAmount, listing.Price, ErrInsufficientPayment)
	}

	// O royalty usa a taxa fixada no mint e paga sempre o criador
	// original, independente de quantas vezes o token já foi revendido.
	split, err := s.Fees.ComputeSplit(listing.Price, token.RoyaltyBasisPoints)
	if err != nil {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("falha ao calcular divisão do pagamento: %w", err)
	}

	seller := token.Owner
	refund := paymentAmount - listing.Price

	if err := tx.SetOwner(tokenID, caller); err != nil {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("falha ao transferir propriedade: %w", err)
	}
	if err := tx.SetListing(tokenID, false, 0); err != nil {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("falha ao limpar listagem: %w", err)
	}

	payments := make([]models.Payment, 0, 4)
	if split.PlatformFee > 0 {
		payments = append(payments, models.Payment{To: s.Fees.FeeRecipient(), Amount: split.PlatformFee, Kind: PaymentKindPlatformFee})
	}
	if split.RoyaltyAmount > 0 {
		payments = append(payments, models.Payment{To: token.Creator, Amount: split.RoyaltyAmount, Kind: PaymentKindRoyalty})
	}
	if split.SellerAmount > 0 {
		payments = append(payments, models.Payment{To: seller, Amount: split.SellerAmount, Kind: PaymentKindSellerProceeds})
	}
	if refund > 0 {
		payments = append(payments, models.Payment{To: caller, Amount: refund, Kind: PaymentKindRefund})
	}

	if err := s.Treasury.Disburse(payments); err != nil {
		rollback(tx)
		return models.Receipt{}, fmt.Errorf("desembolso rejeitado, liquidação revertida: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Receipt{}, fmt.Errorf("falha ao confirmar transação de liquidação: %w", err)
	}

	s.Events.Publish(models.Event{
		Type:    models.EventTokenSold,
		TokenID: tokenID,
		Seller:  seller,
		Buyer:   caller,
		Price:   listing.Price,
	})
	s.Events.Publish(models.Event{
		Type:    models.EventRoyaltyPaid,
		TokenID: tokenID,
		Creator: token.Creator,
		Amount:  split.RoyaltyAmount,
	})

	return models.Receipt{
		ReceiptID:     uuid.New().String(),
		TokenID:       tokenID,
		Seller:        seller,
		Buyer:         caller,
		Price:         listing.Price,
		PlatformFee:   split.PlatformFee,
		RoyaltyAmount: split.RoyaltyAmount,
		SellerAmount:  split.SellerAmount,
		Refund:        refund,
		NewOwner:      caller,
		CreatedAt:     time.Now(),
	}, nil
}

func rollback(tx storage.LedgerTx) {
	if err := tx.Rollback(); err != nil {
		log.Printf("ERRO: falha ao reverter transação de liquidação: %v", err)
	}
}
