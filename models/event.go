package models

import "time"

// EventType identifica o tipo de evento de domínio do marketplace.
type EventType string

const (
	EventTokenMinted   EventType = "TokenMinted"
	EventTokenListed   EventType = "TokenListed"
	EventTokenUnlisted EventType = "TokenUnlisted"
	EventTokenSold     EventType = "TokenSold"
	EventRoyaltyPaid   EventType = "RoyaltyPaid"
)

// Event é um evento de domínio emitido pelo núcleo do marketplace e
// consumido por indexadores externos e pela UI. Eventos são ordenados
// pelo campo Seq e imutáveis depois de emitidos; apenas os campos
// relevantes para cada tipo são preenchidos.
type Event struct {
	ID          string    `json:"id" db:"id"`
	Seq         uint64    `json:"seq" db:"seq"`
	Type        EventType `json:"type" db:"type"`
	TokenID     uint64    `json:"token_id" db:"token_id"`
	Creator     string    `json:"creator,omitempty" db:"creator"`
	Seller      string    `json:"seller,omitempty" db:"seller"`
	Buyer       string    `json:"buyer,omitempty" db:"buyer"`
	MetadataURI string    `json:"metadata_uri,omitempty" db:"metadata_uri"`
	Price       uint64    `json:"price,omitempty" db:"price"`
	Amount      uint64    `json:"amount,omitempty" db:"amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
