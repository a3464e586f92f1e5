package services_test

import (
	"testing"

	"github.com/athena3d/athena-backend/events"
	"github.com/athena3d/athena-backend/models"
	"github.com/athena3d/athena-backend/services"
	"github.com/athena3d/athena-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDisburser é uma implementação mock do services.Disburser para
// exercitar a falha de desembolso.
type MockDisburser struct {
	mock.Mock
}

func (m *MockDisburser) Disburse(payments []models.Payment) error {
	args := m.Called(payments)
	return args.Error(0)
}

type settlementFixture struct {
	ledger     *storage.MemoryLedger
	bus        *events.Bus
	feePolicy  *services.FeePolicyService
	treasury   *services.TreasuryService
	minting    *services.MintingService
	listing    *services.ListingService
	settlement *services.SettlementService
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	f := &settlementFixture{
		ledger:   storage.NewMemoryLedger(),
		bus:      events.NewBus(),
		treasury: services.NewTreasuryService(),
	}
	feePolicy, err := services.NewFeePolicyService(250, 1000, "admin", "plataforma")
	require.NoError(t, err)
	f.feePolicy = feePolicy
	f.minting = services.NewMintingService(f.ledger, f.bus)
	f.listing = services.NewListingService(f.ledger, f.bus)
	f.settlement = services.NewSettlementService(f.ledger, f.feePolicy, f.treasury, f.bus)
	return f
}

// mintAndList cria um token de alice com royalty de 10% e o lista por 1_000_000.
func (f *settlementFixture) mintAndList(t *testing.T) models.Token {
	t.Helper()
	token, err := f.minting.Mint("alice", "ipfs://modelo-3d", 1000, "alice")
	require.NoError(t, err)
	_, err = f.listing.List(token.TokenID, 1_000_000, "alice")
	require.NoError(t, err)
	return token
}

// TestPurchase verifica o cenário de referência completo: taxa 2,5%,
// royalty 10%, preço 1_000_000 — divisão exata, novo dono, listagem
// limpa e eventos TokenSold e RoyaltyPaid.
func TestPurchase(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	receipt, err := f.settlement.Purchase(token.TokenID, "bob", 1_000_000)

	require.NoError(t, err)
	assert.Equal(t, uint64(25_000), receipt.PlatformFee)
	assert.Equal(t, uint64(100_000), receipt.RoyaltyAmount)
	assert.Equal(t, uint64(875_000), receipt.SellerAmount)
	assert.Equal(t, uint64(0), receipt.Refund)
	assert.Equal(t, "alice", receipt.Seller)
	assert.Equal(t, "bob", receipt.Buyer)
	assert.Equal(t, "bob", receipt.NewOwner)
	assert.NotEmpty(t, receipt.ReceiptID)

	// Propriedade transferida e listagem limpa.
	stored, found, err := f.ledger.GetToken(token.TokenID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bob", stored.Owner)

	listing, _, err := f.ledger.GetListing(token.TokenID)
	require.NoError(t, err)
	assert.False(t, listing.IsListed)

	// Fundos creditados: plataforma, criador e vendedor.
	assert.Equal(t, uint64(25_000), f.treasury.Balance("plataforma"))
	assert.Equal(t, uint64(975_000), f.treasury.Balance("alice")) // royalty + proventos (alice é criadora e vendedora)
	assert.Equal(t, uint64(0), f.treasury.Balance("bob"))

	// Eventos TokenSold e RoyaltyPaid, nessa ordem, após o commit.
	emitted := f.bus.Since(2) // pula TokenMinted e TokenListed
	require.Len(t, emitted, 2)
	assert.Equal(t, models.EventTokenSold, emitted[0].Type)
	assert.Equal(t, "alice", emitted[0].Seller)
	assert.Equal(t, "bob", emitted[0].Buyer)
	assert.Equal(t, uint64(1_000_000), emitted[0].Price)
	assert.Equal(t, models.EventRoyaltyPaid, emitted[1].Type)
	assert.Equal(t, "alice", emitted[1].Creator)
	assert.Equal(t, uint64(100_000), emitted[1].Amount)
}

// TestPurchaseInsufficientPayment verifica a rejeição antes de qualquer
// mutação: dono e listagem permanecem intactos.
func TestPurchaseInsufficientPayment(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	_, err := f.settlement.Purchase(token.TokenID, "bob", 999_999)

	assert.ErrorIs(t, err, services.ErrInsufficientPayment)

	stored, _, err := f.ledger.GetToken(token.TokenID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner)

	listing, _, err := f.ledger.GetListing(token.TokenID)
	require.NoError(t, err)
	assert.True(t, listing.IsListed)
	assert.Equal(t, uint64(0), f.treasury.Balance("alice"))
}

// TestPurchaseNotListed verifica a rejeição de compra sem listagem ativa.
func TestPurchaseNotListed(t *testing.T) {
	f := newSettlementFixture(t)
	token, err := f.minting.Mint("alice", "ipfs://modelo-3d", 1000, "alice")
	require.NoError(t, err)

	_, err = f.settlement.Purchase(token.TokenID, "bob", 1_000_000)

	assert.ErrorIs(t, err, services.ErrNotListed)
}

// TestPurchaseTokenNotFound verifica a rejeição de token inexistente.
func TestPurchaseTokenNotFound(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.settlement.Purchase(999, "bob", 1_000_000)

	assert.ErrorIs(t, err, services.ErrTokenNotFound)
}

// TestPurchaseOverpaymentRefund verifica a devolução do excedente ao comprador.
func TestPurchaseOverpaymentRefund(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	receipt, err := f.settlement.Purchase(token.TokenID, "bob", 1_250_000)

	require.NoError(t, err)
	assert.Equal(t, uint64(250_000), receipt.Refund)
	assert.Equal(t, uint64(250_000), f.treasury.Balance("bob"))
	// A divisão usa o preço de listagem, não o valor pago.
	assert.Equal(t, uint64(25_000), receipt.PlatformFee)
}

// TestPurchaseResaleRoyaltyToOriginalCreator verifica que a revenda paga
// royalty sempre ao criador original, nunca a dono intermediário.
func TestPurchaseResaleRoyaltyToOriginalCreator(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	// Primeira venda: alice -> bob.
	_, err := f.settlement.Purchase(token.TokenID, "bob", 1_000_000)
	require.NoError(t, err)

	// Bob relista e vende para carol.
	_, err = f.listing.List(token.TokenID, 2_000_000, "bob")
	require.NoError(t, err)

	aliceBefore := f.treasury.Balance("alice")
	receipt, err := f.settlement.Purchase(token.TokenID, "carol", 2_000_000)
	require.NoError(t, err)

	// Royalty de 10% sobre 2_000_000 vai para alice, a criadora.
	assert.Equal(t, uint64(200_000), receipt.RoyaltyAmount)
	assert.Equal(t, aliceBefore+200_000, f.treasury.Balance("alice"))
	// Bob recebe apenas os proventos de vendedor.
	assert.Equal(t, uint64(1_750_000), receipt.SellerAmount)

	stored, _, err := f.ledger.GetToken(token.TokenID)
	require.NoError(t, err)
	assert.Equal(t, "carol", stored.Owner)
}

// TestPurchaseSelfPurchase verifica a escolha de política: o próprio dono
// pode recomprar o token; a divisão completa é aplicada.
func TestPurchaseSelfPurchase(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	receipt, err := f.settlement.Purchase(token.TokenID, "alice", 1_000_000)

	require.NoError(t, err)
	assert.Equal(t, "alice", receipt.Seller)
	assert.Equal(t, "alice", receipt.Buyer)
	assert.Equal(t, uint64(25_000), f.treasury.Balance("plataforma"))
	assert.Equal(t, uint64(975_000), f.treasury.Balance("alice"))

	listing, _, err := f.ledger.GetListing(token.TokenID)
	require.NoError(t, err)
	assert.False(t, listing.IsListed)
}

// TestPurchaseNewFeeRateApplies verifica que a compra usa a taxa vigente
// no momento da liquidação.
func TestPurchaseNewFeeRateApplies(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	require.NoError(t, f.feePolicy.SetFeeRate(500, "admin"))

	receipt, err := f.settlement.Purchase(token.TokenID, "bob", 1_000_000)

	require.NoError(t, err)
	assert.Equal(t, uint64(50_000), receipt.PlatformFee)
	assert.Equal(t, uint64(850_000), receipt.SellerAmount)
}

// TestPurchaseDisburseFailureRollsBack verifica a propriedade central da
// liquidação: se o desembolso falha, a troca de dono e a limpeza da
// listagem são revertidas e nenhum evento é emitido.
func TestPurchaseDisburseFailureRollsBack(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	mockDisburser := new(MockDisburser)
	mockDisburser.On("Disburse", mock.AnythingOfType("[]models.Payment")).
		Return(services.ErrTransferFailed).Once()
	f.settlement.Treasury = mockDisburser

	eventsBefore := len(f.bus.Since(0))

	_, err := f.settlement.Purchase(token.TokenID, "bob", 1_000_000)

	assert.ErrorIs(t, err, services.ErrTransferFailed)

	// Dono e listagem exatamente como antes.
	stored, _, err := f.ledger.GetToken(token.TokenID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner)

	listing, _, err := f.ledger.GetListing(token.TokenID)
	require.NoError(t, err)
	assert.True(t, listing.IsListed)
	assert.Equal(t, uint64(1_000_000), listing.Price)

	assert.Len(t, f.bus.Since(0), eventsBefore)
	mockDisburser.AssertExpectations(t)

	// A listagem revertida continua comprável.
	f.settlement.Treasury = f.treasury
	_, err = f.settlement.Purchase(token.TokenID, "bob", 1_000_000)
	assert.NoError(t, err)
}

// TestPurchaseBlockedRecipientRollsBack verifica o rollback com a
// tesouraria real quando um destinatário não aceita fundos.
func TestPurchaseBlockedRecipientRollsBack(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.mintAndList(t)

	f.treasury.Block("plataforma")

	_, err := f.settlement.Purchase(token.TokenID, "bob", 1_000_000)

	assert.ErrorIs(t, err, services.ErrTransferFailed)

	stored, _, err := f.ledger.GetToken(token.TokenID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner)

	// Nenhum crédito parcial: o lote falha inteiro.
	assert.Equal(t, uint64(0), f.treasury.Balance("alice"))

	// Desbloqueado, a mesma listagem liquida normalmente.
	f.treasury.Unblock("plataforma")
	_, err = f.settlement.Purchase(token.TokenID, "bob", 1_000_000)
	assert.NoError(t, err)
}

// TestPurchaseZeroRoyalty verifica que royalty zero ainda emite
// RoyaltyPaid com valor zero.
func TestPurchaseZeroRoyalty(t *testing.T) {
	f := newSettlementFixture(t)
	token, err := f.minting.Mint("alice", "ipfs://modelo-3d", 0, "alice")
	require.NoError(t, err)
	_, err = f.listing.List(token.TokenID, 1_000_000, "alice")
	require.NoError(t, err)

	receipt, err := f.settlement.Purchase(token.TokenID, "bob", 1_000_000)

	require.NoError(t, err)
	assert.Equal(t, uint64(0), receipt.RoyaltyAmount)
	assert.Equal(t, uint64(975_000), receipt.SellerAmount)

	emitted := f.bus.Since(2)
	require.Len(t, emitted, 2)
	assert.Equal(t, models.EventRoyaltyPaid, emitted[1].Type)
	assert.Equal(t, uint64(0), emitted[1].Amount)
}
