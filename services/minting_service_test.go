package services_test

import (
	"testing"

	"github.com/athena3d/athena-backend/events"
	"github.com/athena3d/athena-backend/models"
	"github.com/athena3d/athena-backend/services"
	"github.com/athena3d/athena-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMint verifica a criação de um token com os termos de royalty embutidos.
func TestMint(t *testing.T) {
	ledger := storage.NewMemoryLedger()
	bus := events.NewBus()
	minting := services.NewMintingService(ledger, bus)

	token, err := minting.Mint("alice", "ipfs://QmXyZ...123456", 1000, "alice")

	require.NoError(t, err)
	assert.Equal(t, uint64(1), token.TokenID)
	assert.Equal(t, "alice", token.Owner)
	assert.Equal(t, "alice", token.Creator)
	assert.Equal(t, "ipfs://QmXyZ...123456", token.MetadataURI)
	assert.Equal(t, uint16(1000), token.RoyaltyBasisPoints)

	// O token nasce sem listagem ativa.
	listing, found, err := ledger.GetListing(token.TokenID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, listing.IsListed)

	// Evento TokenMinted emitido com criador, tokenId e URI.
	emitted := bus.Since(0)
	require.Len(t, emitted, 1)
	assert.Equal(t, models.EventTokenMinted, emitted[0].Type)
	assert.Equal(t, "alice", emitted[0].Creator)
	assert.Equal(t, uint64(1), emitted[0].TokenID)
	assert.Equal(t, "ipfs://QmXyZ...123456", emitted[0].MetadataURI)
}

// TestMintRoyaltyAttachesToCaller verifica que o royalty pertence a quem
// mintou, mesmo quando o destinatário é outra identidade.
func TestMintRoyaltyAttachesToCaller(t *testing.T) {
	ledger := storage.NewMemoryLedger()
	minting := services.NewMintingService(ledger, events.NewBus())

	token, err := minting.Mint("bob", "ipfs://modelo-3d", 500, "alice")

	require.NoError(t, err)
	assert.Equal(t, "bob", token.Owner)
	assert.Equal(t, "alice", token.Creator)
}

// TestMintInvalidRoyalty verifica a rejeição de royalty acima de 50%.
func TestMintInvalidRoyalty(t *testing.T) {
	ledger := storage.NewMemoryLedger()
	bus := events.NewBus()
	minting := services.NewMintingService(ledger, bus)

	_, err := minting.Mint("alice", "ipfs://modelo-3d", 5001, "alice")

	assert.ErrorIs(t, err, services.ErrInvalidRoyalty)
	assert.Empty(t, bus.Since(0))

	_, found, err := ledger.GetToken(1)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestMintMonotonicTokenIDs verifica ids atribuídos a partir de 1, em sequência.
func TestMintMonotonicTokenIDs(t *testing.T) {
	ledger := storage.NewMemoryLedger()
	minting := services.NewMintingService(ledger, events.NewBus())

	for i := uint64(1); i <= 3; i++ {
		token, err := minting.Mint("alice", "ipfs://modelo-3d", 0, "alice")
		require.NoError(t, err)
		assert.Equal(t, i, token.TokenID)
	}
}
