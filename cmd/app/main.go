package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram_casino/internal/bot"
	"telegram_casino/internal/config"
	httpServer "telegram_casino/internal/http"
	"telegram_casino/internal/http/handlers"
	"telegram_casino/internal/http/middleware"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/service"
	"telegram_casino/internal/store"
	"telegram_casino/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	// Инициализация структурированного логгера
	if err := logger.InitWithFile(cfg.Log.Level, cfg.Log.JSON(), cfg.Log.File); err != nil {
		logger.Fatal("failed to open log file", "path", cfg.Log.File, "error", err)
	}
	defer logger.Close()
	log := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// redis нужен драйверу хранилища redis и общему лимитеру запросов
	var rdb *redis.Client
	if cfg.Store.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		defer rdb.Close()
	}

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		SQLitePath:  cfg.Store.SQLitePath,
		DatabaseURL: cfg.Store.DatabaseURL,
		Redis:       rdb,
	})
	if err != nil {
		logger.Fatal("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer st.Close()
	log.Info("store opened", "driver", cfg.Store.Driver)

	ledger := service.NewLedger(st, cfg.Game.StartingBalance)
	audit := service.NewAuditService(st)
	promos := service.NewPromoService(st, ledger, audit)
	shop := service.NewShopService(st, ledger, audit)
	transfers := service.NewTransferService(st, ledger, audit)
	games := service.NewGameService(ledger, nil)
	mines := service.NewMinesService(ledger, nil, cfg.Game.MinesSessionTTL, cfg.Game.MinesSweepInterval)
	admin := service.NewAdminService(cfg.AdminTelegramIDs, ledger, promos, shop, mines, audit)

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		mines.Run(ctx)
	}()

	var srv *http.Server
	if cfg.HTTPEnabled {
		gin.SetMode(gin.ReleaseMode)
		tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
		if cfg.BotToken == "" {
			log.Warn("BOT_TOKEN not set - telegram login will reject all requests")
		}

		router := httpServer.NewRouter(httpServer.Deps{
			Handler: &handlers.Handler{
				Ledger:    ledger,
				Games:     games,
				Mines:     mines,
				Promos:    promos,
				Shop:      shop,
				Transfers: transfers,
				Admin:     admin,
				Tokens:    tokens,
				Auth:      service.NewTelegramAuth(cfg.BotToken),
			},
			WS:      ws.NewWSHandler(&ws.Session{Mines: mines, Ledger: ledger}, tokens, cfg.AllowedOrigin),
			Limiter: middleware.NewRateLimiter(rdb, cfg.Rate.Requests, cfg.Rate.Window),
			Version: Version,
		})

		srv = &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info("server started", "port", cfg.AppPort, "version", Version)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("listen failed", "error", err)
			}
		}()
	}

	var tgBot *bot.Bot
	if cfg.BotActive() {
		dispatcher := bot.NewDispatcher(bot.Services{
			Ledger:    ledger,
			Games:     games,
			Mines:     mines,
			Promos:    promos,
			Shop:      shop,
			Transfers: transfers,
			Admin:     admin,
		})
		tgBot, err = bot.New(cfg.BotToken, dispatcher)
		if err != nil {
			log.Error("failed to start bot", "error", err)
		} else {
			go tgBot.Start()
			log.Info("bot started", "admin_ids", cfg.AdminTelegramIDs)
		}
	} else {
		log.Warn("bot disabled: BOT_TOKEN not set or BOT_ENABLED=false")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	// Плавная остановка бота
	if tgBot != nil {
		tgBot.Stop()
	}

	cancel()
	<-sweeperDone

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
	}

	log.Info("server exited")
}
