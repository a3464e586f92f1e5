package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/athena3d/athena-backend/config"
	"github.com/athena3d/athena-backend/events"
	"github.com/athena3d/athena-backend/handlers"
	"github.com/athena3d/athena-backend/services"
	"github.com/athena3d/athena-backend/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha fatal ao carregar configuração: %v", err)
	}

	var ledger storage.Ledger
	if cfg.DatabaseURL != "" {
		db, err := storage.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Falha fatal ao conectar ao banco de dados e aplicar migrações: %v", err)
		}
		defer db.Close()
		ledger = db
	} else {
		log.Println("DATABASE_URL não definido; usando ledger em memória.")
		ledger = storage.NewMemoryLedger()
	}

	bus := events.NewBus()

	// Com PostgreSQL, o histórico de eventos também é persistido.
	if db, ok := ledger.(*storage.DB); ok {
		ch, _ := bus.Subscribe(256)
		go func() {
			for ev := range ch {
				if err := db.AppendEvent(ev); err != nil {
					log.Printf("ERRO: falha ao persistir evento %d: %v", ev.Seq, err)
				}
			}
		}()
	}

	feePolicy, err := services.NewFeePolicyService(
		cfg.DefaultFeeRateBasisPoints, cfg.FeeRateCeilingBasisPoints,
		cfg.AdminIdentity, cfg.PlatformFeeRecipient,
	)
	if err != nil {
		log.Fatalf("Falha fatal na política de taxas: %v", err)
	}

	treasury := services.NewTreasuryService()
	minting := services.NewMintingService(ledger, bus)
	listing := services.NewListingService(ledger, bus)
	settlement := services.NewSettlementService(ledger, feePolicy, treasury, bus)

	// Ancoragem de comprovantes na Solana, quando configurada.
	if cfg.SolanaRPCURL != "" && cfg.SolanaFeePayerPrivateKey != "" {
		anchor, err := services.NewSolanaAnchorService(cfg.SolanaRPCURL, cfg.SolanaFeePayerPrivateKey)
		if err != nil {
			log.Fatalf("Falha ao inicializar serviço de âncora Solana: %v", err)
		}
		ch, _ := bus.Subscribe(64)
		go anchor.Run(ch)
	}

	marketplaceHandler := handlers.NewMarketplaceHandler(minting, listing, settlement, ledger)
	adminHandler := handlers.NewAdminHandler(feePolicy)
	accountHandler := handlers.NewAccountHandler(treasury)
	eventsHandler := handlers.NewEventsHandler(bus)
	feed := events.NewFeed(bus)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/nfts", func(r chi.Router) {
		r.Post("/", marketplaceHandler.Mint)
		r.Get("/{id}", marketplaceHandler.GetTokenByID)
		r.Get("/{id}/listing", marketplaceHandler.GetListing)
		r.Get("/{id}/royalty", marketplaceHandler.GetRoyaltyInfo)
		r.Post("/{id}/list", marketplaceHandler.List)
		r.Post("/{id}/unlist", marketplaceHandler.Unlist)
		r.Post("/{id}/purchase", marketplaceHandler.Purchase)
		r.Get("/by-owner/{owner}", marketplaceHandler.GetTokensByOwner)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/fee-rate", adminHandler.SetFeeRate)
		r.Get("/fee-rate", adminHandler.GetFeeRate)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventsHandler.GetEvents)
		r.Get("/ws", feed.HandleConnection)
	})

	r.Get("/accounts/{id}/balance", accountHandler.GetBalance)

	port := ":" + cfg.HTTPPort
	fmt.Printf("Servidor backend rodando na porta %s...\n", port)
	log.Fatal(http.ListenAndServe(port, r))
}
