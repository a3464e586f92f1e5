package storage

import (
	"errors"

	"github.com/athena3d/athena-backend/models"
)

// ErrUnknownToken é retornado por mutações sobre um tokenId nunca criado.
var ErrUnknownToken = errors.New("token inexistente no ledger")

// Ledger é o contrato do armazenamento de tokens e listagens do
// marketplace. A validação cruzada (propriedade, preço, etc.) é
// responsabilidade dos serviços que o chamam; o ledger apenas garante
// a consistência dos registros e a fronteira transacional.
//
// Duas implementações: *DB (PostgreSQL, via sqlx) para deployments e
// *MemoryLedger para testes e execução sem banco.
type Ledger interface {
	// CreateToken registra um novo token e atribui o próximo tokenId
	// livre (começando em 1, monotônico, nunca reutilizado).
	CreateToken(owner, metadataURI, creator string, royaltyBasisPoints uint16) (models.Token, error)

	// GetToken retorna o token e found=false se ele não existir.
	GetToken(tokenID uint64) (models.Token, bool, error)

	// GetListing retorna a listagem do token; found=false se o token não existir.
	GetListing(tokenID uint64) (models.Listing, bool, error)

	// GetTokensByOwner retorna todos os tokens de uma identidade.
	GetTokensByOwner(owner string) ([]models.Token, error)

	// SetListing grava o estado de listagem de um token existente.
	SetListing(tokenID uint64, isListed bool, price uint64) error

	// Begin abre uma transação de liquidação. Enquanto a transação
	// estiver aberta, mutações concorrentes sobre o ledger ficam
	// serializadas; Rollback desfaz todas as mutações da transação.
	Begin() (LedgerTx, error)
}

// LedgerTx é a unidade transacional usada pela liquidação: ou todas as
// mutações são confirmadas com Commit, ou nenhuma sobrevive ao Rollback.
// As leituras dentro da transação travam os registros do token, de modo
// que duas liquidações concorrentes do mesmo tokenId ficam serializadas
// e a segunda observa a listagem já limpa pela primeira.
type LedgerTx interface {
	GetToken(tokenID uint64) (models.Token, bool, error)
	GetListing(tokenID uint64) (models.Listing, bool, error)
	SetOwner(tokenID uint64, newOwner string) error
	SetListing(tokenID uint64, isListed bool, price uint64) error
	Commit() error
	Rollback() error
}
