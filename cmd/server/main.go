package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/clearledger/server/internal/command"
	"github.com/clearledger/server/internal/config"
	"github.com/clearledger/server/internal/events"
	"github.com/clearledger/server/internal/handler"
	"github.com/clearledger/server/internal/middleware"
	"github.com/clearledger/server/internal/query"
	redisclient "github.com/clearledger/server/internal/redis"
	"github.com/clearledger/server/internal/repository"
	"github.com/clearledger/server/internal/scheduler"
	"github.com/clearledger/server/internal/serial"
)

func main() {
	cfg := config.Load()

	// Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Redis connection
	redis, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis.Client)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db, redis.Client)
	txWriteRepo := repository.NewTransactionWriteRepository(db)
	txReadRepo := repository.NewTransactionReadRepository(db)

	// Transaction ids come from the daily serial counter.
	serialSvc := serial.NewService(redis.Client)
	idGen := serial.NewIDGenerator(serialSvc, serial.TransactionTag)

	// Command + Query services
	userCmd := command.NewUserCommandService(userRepo, publisher)
	ledgerCmd := command.NewLedgerCommandService(ledgerRepo, publisher)
	txCmd := command.NewTransactionCommandService(txWriteRepo, ledgerRepo, idGen, publisher, cfg.TxDateFormat)
	authQry := query.NewAuthQueryService(userRepo)
	ledgerQry := query.NewLedgerQueryService(ledgerRepo, txReadRepo)
	txQry := query.NewTransactionQueryService(txReadRepo, ledgerRepo, cfg.OpenListing)

	authHandler := handler.NewAuthHandler(userCmd, authQry)
	ledgerHandler := handler.NewLedgerHandler(ledgerCmd, ledgerQry)
	transactionHandler := handler.NewTransactionHandler(txCmd, txQry)

	// Daily serial reset at midnight, decoupled from request handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resetJob := scheduler.Job{Name: "serial-reset", Run: serial.ResetJob(serialSvc, serial.TransactionTag)}
	go scheduler.NewDaily(resetJob).Start(ctx)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := router.Group("/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	v1 := router.Group("/v1", middleware.AuthMiddleware())
	{
		v1.POST("/ledgers", ledgerHandler.CreateLedger)
		v1.GET("/ledgers", ledgerHandler.ListLedgers)
		v1.POST("/ledgers/:ledgerId/join", ledgerHandler.JoinLedger)
		v1.GET("/ledgers/:ledgerId/stats", ledgerHandler.GetLedgerStats)
		v1.GET("/ledgers/:ledgerId/transactions", transactionHandler.ListTransactions)

		v1.POST("/transactions", transactionHandler.CreateTransaction)
		v1.PUT("/transactions/:transactionId", transactionHandler.UpdateTransaction)
		v1.DELETE("/transactions/:transactionId", transactionHandler.DeleteTransaction)
	}

	log.Printf("Clear Ledger server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
