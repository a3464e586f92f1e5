package services

import "errors"

// Erros sentinela do marketplace. Cada rejeição deixa o ledger exatamente
// como estava; os handlers traduzem com errors.Is para o status HTTP.
var (
	ErrTokenNotFound       = errors.New("token não encontrado")
	ErrUnauthorized        = errors.New("operação não autorizada")
	ErrInvalidRoyalty      = errors.New("royalty não pode exceder 50%")
	ErrInvalidPrice        = errors.New("preço deve ser maior que zero")
	ErrInvalidRate         = errors.New("taxa de plataforma acima do teto permitido")
	ErrNotListed           = errors.New("token não está listado para venda")
	ErrInsufficientPayment = errors.New("pagamento insuficiente para o preço de listagem")
	ErrTransferFailed      = errors.New("falha ao transferir fundos ao destinatário")
)
