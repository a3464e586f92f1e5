package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config reúne a configuração do backend, lida do ambiente (com suporte
// a arquivo .env em desenvolvimento).
type Config struct {
	HTTPPort                  string
	DatabaseURL               string // Vazio = ledger em memória
	AdminIdentity             string // Única identidade que pode alterar a taxa de plataforma
	PlatformFeeRecipient      string // Identidade que recebe a taxa de plataforma
	DefaultFeeRateBasisPoints uint16
	FeeRateCeilingBasisPoints uint16
	SolanaRPCURL              string // Vazio = ancoragem on-chain desativada
	SolanaFeePayerPrivateKey  string
}

// Load carrega a configuração do ambiente.
func Load() (Config, error) {
	// Em produção as variáveis vêm do ambiente; o .env é conveniência local.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		AdminIdentity:            getEnv("ADMIN_IDENTITY", "athena-admin"),
		PlatformFeeRecipient:     getEnv("PLATFORM_FEE_RECIPIENT", "athena-platform"),
		SolanaRPCURL:             os.Getenv("SOLANA_RPC_URL"),
		SolanaFeePayerPrivateKey: os.Getenv("SOLANA_FEE_PAYER_PRIVATE_KEY"),
	}

	defaultRate, err := getEnvBasisPoints("PLATFORM_FEE_BASIS_POINTS", 250)
	if err != nil {
		return Config{}, err
	}
	ceiling, err := getEnvBasisPoints("PLATFORM_FEE_CEILING_BASIS_POINTS", 1000)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultFeeRateBasisPoints = defaultRate
	cfg.FeeRateCeilingBasisPoints = ceiling

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBasisPoints(key string, fallback uint16) (uint16, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("valor inválido para %s: %w", key, err)
	}
	return uint16(value), nil
}
