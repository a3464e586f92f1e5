package models

import "time"

// Token representa um NFT de modelo 3D registrado no ledger.
type Token struct {
	TokenID            uint64    `json:"token_id" db:"token_id"`
	Owner              string    `json:"owner" db:"owner"`                               // Identidade (carteira) que possui o token atualmente
	MetadataURI        string    `json:"metadata_uri" db:"metadata_uri"`                 // URI opaca dos metadados (ex: "ipfs://Qm..."), imutável após o mint
	Creator            string    `json:"creator" db:"creator"`                           // Identidade que mintou o token; beneficiária vitalícia dos royalties
	RoyaltyBasisPoints uint16    `json:"royalty_basis_points" db:"royalty_basis_points"` // Em basis points (10000 = 100%), fixado no mint
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Listing representa a oferta de venda ativa (no máximo uma) de um token.
type Listing struct {
	TokenID  uint64 `json:"token_id" db:"token_id"`
	IsListed bool   `json:"is_listed" db:"is_listed"`
	Price    uint64 `json:"price" db:"price"` // Em unidades mínimas da moeda; só tem significado enquanto IsListed for true
}
