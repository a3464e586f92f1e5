package models

import "time"

// Split é o resultado da divisão do preço de venda em três partes.
// As três parcelas somam exatamente o preço: o arredondamento para baixo
// da taxa e do royalty deixa qualquer resto com o vendedor.
type Split struct {
	PlatformFee   uint64 `json:"platform_fee"`
	RoyaltyAmount uint64 `json:"royalty_amount"`
	SellerAmount  uint64 `json:"seller_amount"`
}

// Payment é um crédito individual a ser aplicado pela tesouraria.
type Payment struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Kind   string `json:"kind"` // "platform_fee", "royalty", "seller_proceeds" ou "refund"
}

// Receipt é o comprovante retornado por uma compra liquidada.
type Receipt struct {
	ReceiptID     string    `json:"receipt_id"`
	TokenID       uint64    `json:"token_id"`
	Seller        string    `json:"seller"`
	Buyer         string    `json:"buyer"`
	Price         uint64    `json:"price"`
	PlatformFee   uint64    `json:"platform_fee"`
	RoyaltyAmount uint64    `json:"royalty_amount"`
	SellerAmount  uint64    `json:"seller_amount"`
	Refund        uint64    `json:"refund"` // Excedente devolvido ao comprador quando o pagamento superou o preço
	NewOwner      string    `json:"new_owner"`
	CreatedAt     time.Time `json:"created_at"`
}
