package services

import (
	"fmt"
	"sync"

	"github.com/athena3d/athena-backend/models"
)

// Disburser aplica um lote de pagamentos de forma atômica: ou todos os
// créditos entram, ou nenhum. É a costura injetável da liquidação — os
// testes usam um mock que falha para exercitar o rollback.
type Disburser interface {
	Disburse(payments []models.Payment) error
}

// TreasuryService é o livro de saldos a receber do marketplace: acumula
// os créditos de cada identidade (taxa de plataforma, royalties,
// proventos de venda e reembolsos) em unidades mínimas da moeda.
//
// Uma conta bloqueada modela um destinatário que não consegue aceitar
// fundos; qualquer lote que a inclua falha inteiro com ErrTransferFailed.
type TreasuryService struct {
	mu       sync.Mutex
	balances map[string]uint64
	blocked  map[string]bool
}

func NewTreasuryService() *TreasuryService {
	return &TreasuryService{
		balances: make(map[string]uint64),
		blocked:  make(map[string]bool),
	}
}

// Disburse valida todos os destinatários antes de aplicar qualquer
// crédito, garantindo a atomicidade do lote.
func (t *TreasuryService) Disburse(payments []models.Payment) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range payments {
		if t.blocked[p.To] {
			return fmt.Errorf("destinatário %q recusou o pagamento de %q: %w", p.To, p.Kind, ErrTransferFailed)
		}
	}
	for _, p := range payments {
		t.balances[p.To] += p.Amount
	}
	return nil
}

// Balance retorna o saldo acumulado de uma identidade.
func (t *TreasuryService) Balance(account string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

// Block marca uma conta como incapaz de receber fundos.
func (t *TreasuryService) Block(account string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blocked[account] = true
}

// Unblock volta a permitir créditos para a conta.
func (t *TreasuryService) Unblock(account string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.blocked, account)
}
