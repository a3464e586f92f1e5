package services_test

import (
	"testing"

	"github.com/athena3d/athena-backend/models"
	"github.com/athena3d/athena-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDisburse verifica o crédito de um lote completo.
func TestDisburse(t *testing.T) {
	treasury := services.NewTreasuryService()

	err := treasury.Disburse([]models.Payment{
		{To: "plataforma", Amount: 25_000, Kind: services.PaymentKindPlatformFee},
		{To: "alice", Amount: 100_000, Kind: services.PaymentKindRoyalty},
		{To: "alice", Amount: 875_000, Kind: services.PaymentKindSellerProceeds},
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(25_000), treasury.Balance("plataforma"))
	assert.Equal(t, uint64(975_000), treasury.Balance("alice"))
}

// TestDisburseBlockedRecipientAtomic verifica que um destinatário
// bloqueado derruba o lote inteiro, sem crédito parcial.
func TestDisburseBlockedRecipientAtomic(t *testing.T) {
	treasury := services.NewTreasuryService()
	treasury.Block("bloqueado")

	err := treasury.Disburse([]models.Payment{
		{To: "alice", Amount: 500, Kind: services.PaymentKindSellerProceeds},
		{To: "bloqueado", Amount: 100, Kind: services.PaymentKindRoyalty},
	})

	assert.ErrorIs(t, err, services.ErrTransferFailed)
	assert.Equal(t, uint64(0), treasury.Balance("alice"))
	assert.Equal(t, uint64(0), treasury.Balance("bloqueado"))

	treasury.Unblock("bloqueado")
	require.NoError(t, treasury.Disburse([]models.Payment{
		{To: "bloqueado", Amount: 100, Kind: services.PaymentKindRoyalty},
	}))
	assert.Equal(t, uint64(100), treasury.Balance("bloqueado"))
}
