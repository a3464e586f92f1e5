package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/athena3d/athena-backend/models"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaAnchorService ancora os comprovantes de venda na Solana através
// de uma instrução de memo assinada pelo FeePayer. O ledger interno é a
// fonte de verdade da liquidação; a âncora existe para auditoria externa
// e nunca participa da atomicidade da compra.
type SolanaAnchorService struct {
	RPCClient *rpc.Client
	FeePayer  solana.PrivateKey
}

// NewSolanaAnchorService cria o serviço a partir do endpoint RPC e da
// chave privada do Fee Payer em Base58.
func NewSolanaAnchorService(rpcEndpoint, feePayerKeyBase58 string) (*SolanaAnchorService, error) {
	feePayer, err := solana.PrivateKeyFromBase58(feePayerKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar chave privada do Fee Payer: %w", err)
	}
	return &SolanaAnchorService{
		RPCClient: rpc.New(rpcEndpoint),
		FeePayer:  feePayer,
	}, nil
}

// AnchorSale monta, assina e envia a transação de memo com o payload da
// venda. Retorna a assinatura da transação na rede.
func (s *SolanaAnchorService) AnchorSale(ev models.Event) (solana.Signature, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao serializar evento de venda: %w", err)
	}

	resp, err := s.RPCClient.GetRecentBlockhash(context.Background(), rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao obter blockhash: %w", err)
	}
	recentBlockhash := resp.Value.Blockhash

	memoInstruction := solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{
			solana.Meta(s.FeePayer.PublicKey()).SIGNER(),
		},
		payload,
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{memoInstruction},
		recentBlockhash,
		solana.TransactionPayer(s.FeePayer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao criar transação de memo: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.FeePayer.PublicKey()) {
			return &s.FeePayer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao assinar transação pelo FeePayer: %w", err)
	}

	txID, err := s.RPCClient.SendTransactionWithOpts(context.Background(), tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao enviar transação de âncora: %w", err)
	}
	log.Printf("Comprovante da venda do token %d ancorado na Solana: %s", ev.TokenID, txID)
	return txID, nil
}

// Run consome o canal de eventos e ancora cada TokenSold. Falhas são
// registradas e não interrompem o consumo.
func (s *SolanaAnchorService) Run(eventsCh <-chan models.Event) {
	log.Println("Serviço de âncora Solana iniciado.")
	for ev := range eventsCh {
		if ev.Type != models.EventTokenSold {
			continue
		}
		if _, err := s.AnchorSale(ev); err != nil {
			log.Printf("Falha ao ancorar venda do token %d: %v", ev.TokenID, err)
		}
	}
}
