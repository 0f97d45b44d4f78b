package main

import (
	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	"auction-house/internal/config"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := repository.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		utils.Fatal("failed to open database", map[string]any{"driver": cfg.DBDriver, "error": err.Error()})
	}

	ledger, err := repository.NewGormLedger(db)
	if err != nil {
		utils.Fatal("failed to initialize ledger", map[string]any{"error": err.Error()})
	}

	auctionSvc := auction.NewAuctionService(ledger)
	authSvc := auth.NewAuthService(ledger, cfg.JWTSecret, cfg.TokenTTL)

	router := server.SetupRouter(auctionSvc, authSvc, authSvc)

	utils.Info("starting auction server", map[string]any{"port": cfg.Port, "driver": cfg.DBDriver})
	if err := router.Run(cfg.Port); err != nil {
		utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
	}
}
