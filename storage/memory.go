package storage

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/athena3d/athena-backend/models"
)

// MemoryLedger é a implementação em memória do Ledger. É usada nos
// testes de unidade e quando o backend roda sem DATABASE_URL.
//
// txMu serializa escritores: uma transação aberta por Begin segura o
// lock até Commit/Rollback, então nenhuma outra mutação se intercala
// com uma liquidação em andamento. As mutações da transação são
// aplicadas imediatamente (visíveis para leituras reentrantes) e
// desfeitas pelo undo log em caso de Rollback.
type MemoryLedger struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	nextID   uint64
	tokens   map[uint64]models.Token
	listings map[uint64]models.Listing
}

// NewMemoryLedger cria um ledger vazio; o primeiro token recebe o id 1.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		nextID:   1,
		tokens:   make(map[uint64]models.Token),
		listings: make(map[uint64]models.Listing),
	}
}

func (l *MemoryLedger) CreateToken(owner, metadataURI, creator string, royaltyBasisPoints uint16) (models.Token, error) {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()

	token := models.Token{
		TokenID:            l.nextID,
		Owner:              owner,
		MetadataURI:        metadataURI,
		Creator:            creator,
		RoyaltyBasisPoints: royaltyBasisPoints,
		CreatedAt:          time.Now(),
	}
	l.nextID++
	l.tokens[token.TokenID] = token
	// Todo token nasce sem listagem ativa.
	l.listings[token.TokenID] = models.Listing{TokenID: token.TokenID}
	return token, nil
}

func (l *MemoryLedger) GetToken(tokenID uint64) (models.Token, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	token, found := l.tokens[tokenID]
	return token, found, nil
}

func (l *MemoryLedger) GetListing(tokenID uint64) (models.Listing, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	listing, found := l.listings[tokenID]
	return listing, found, nil
}

func (l *MemoryLedger) GetTokensByOwner(owner string) ([]models.Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var tokens []models.Token
	for _, token := range l.tokens {
		if token.Owner == owner {
			tokens = append(tokens, token)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].TokenID < tokens[j].TokenID })
	return tokens, nil
}

func (l *MemoryLedger) SetListing(tokenID uint64, isListed bool, price uint64) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setListingLocked(tokenID, isListed, price)
}

func (l *MemoryLedger) setListingLocked(tokenID uint64, isListed bool, price uint64) error {
	if _, found := l.tokens[tokenID]; !found {
		return ErrUnknownToken
	}
	l.listings[tokenID] = models.Listing{TokenID: tokenID, IsListed: isListed, Price: price}
	return nil
}

// Begin segura txMu até Commit/Rollback, serializando liquidações.
func (l *MemoryLedger) Begin() (LedgerTx, error) {
	l.txMu.Lock()
	return &memoryTx{ledger: l}, nil
}

type memoryTx struct {
	ledger *MemoryLedger
	undo   []func()
	done   bool
}

func (tx *memoryTx) GetToken(tokenID uint64) (models.Token, bool, error) {
	return tx.ledger.GetToken(tokenID)
}

func (tx *memoryTx) GetListing(tokenID uint64) (models.Listing, bool, error) {
	return tx.ledger.GetListing(tokenID)
}

func (tx *memoryTx) SetOwner(tokenID uint64, newOwner string) error {
	tx.ledger.mu.Lock()
	defer tx.ledger.mu.Unlock()
	token, found := tx.ledger.tokens[tokenID]
	if !found {
		return ErrUnknownToken
	}
	previous := token
	tx.undo = append(tx.undo, func() { tx.ledger.tokens[tokenID] = previous })
	token.Owner = newOwner
	tx.ledger.tokens[tokenID] = token
	return nil
}

func (tx *memoryTx) SetListing(tokenID uint64, isListed bool, price uint64) error {
	tx.ledger.mu.Lock()
	defer tx.ledger.mu.Unlock()
	previous, found := tx.ledger.listings[tokenID]
	if !found {
		return ErrUnknownToken
	}
	tx.undo = append(tx.undo, func() { tx.ledger.listings[tokenID] = previous })
	return tx.ledger.setListingLocked(tokenID, isListed, price)
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return errors.New("transação já finalizada")
	}
	tx.done = true
	tx.undo = nil
	tx.ledger.txMu.Unlock()
	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return errors.New("transação já finalizada")
	}
	tx.done = true
	tx.ledger.mu.Lock()
	// Desfaz na ordem inversa da aplicação.
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.ledger.mu.Unlock()
	tx.ledger.txMu.Unlock()
	return nil
}
