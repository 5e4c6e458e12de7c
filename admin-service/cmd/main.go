package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinemarket/admin-service/internal/app/admin/config"
	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/gateway"
	"pinemarket/admin-service/internal/app/admin/handler"
	"pinemarket/admin-service/internal/app/admin/service"
	"pinemarket/admin-service/internal/app/admin/util"
	"pinemarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("admin-service", cfg.LogLevel)

	// Redis хранит сессии редактирования и счетчики поколений
	sessionStore, err := util.NewRedisSessionStore(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer sessionStore.Close()
	logger.Info().Msg("connected to Redis")

	uploader, err := util.NewCloudinaryUploader(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
		cfg.Cloudinary.UploadPreset,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure Cloudinary")
	}

	productGateway := gateway.NewHTTPGateway[entity.Product](cfg.Catalog.BaseURL, "products", cfg.Catalog.Timeout)
	categoryGateway := gateway.NewHTTPGateway[entity.Category](cfg.Catalog.BaseURL, "categories", cfg.Catalog.Timeout)

	// Оба экрана удаляют только с подтверждением
	productController := service.NewListController(productGateway, service.ControllerOptions{
		PageSize:      cfg.PageSize,
		ConfirmDelete: true,
	})
	categoryController := service.NewListController(categoryGateway, service.ControllerOptions{
		PageSize:      cfg.PageSize,
		ConfirmDelete: true,
	})

	productSessions := service.NewEditSessionManager[entity.Product, entity.ProductDraft](
		sessionStore, "products", cfg.SessionTTL,
		func() entity.ProductDraft { return entity.ProductDraft{Status: entity.StatusActive} },
		entity.ProductDraftFrom,
	)
	categorySessions := service.NewEditSessionManager[entity.Category, entity.CategoryDraft](
		sessionStore, "categories", cfg.SessionTTL,
		func() entity.CategoryDraft { return entity.CategoryDraft{Status: entity.StatusActive} },
		entity.CategoryDraftFrom,
	)

	productHandler := handler.NewResourceHandler(
		productController, productSessions,
		entity.ProductDraft.ToRecord,
		func(d entity.ProductDraft, imageURL string) entity.ProductDraft {
			d.Image = imageURL
			return d
		},
	)
	categoryHandler := handler.NewResourceHandler(
		categoryController, categorySessions,
		entity.CategoryDraft.ToRecord,
		nil, // у категорий нет изображений
	)
	uploadHandler := handler.NewUploadHandler(productSessions, uploader)

	// Первичная загрузка коллекций не блокирует старт: если каталог
	// еще не поднялся, контроллер дозагрузится при первом запросе
	warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), 5*time.Second)
	if err := productController.Load(warmupCtx); err != nil {
		logger.Warn().Err(err).Msg("initial products load failed, will retry on first request")
	}
	if err := categoryController.Load(warmupCtx); err != nil {
		logger.Warn().Err(err).Msg("initial categories load failed, will retry on first request")
	}
	cancelWarmup()

	router := handler.SetupRoutes(productHandler, categoryHandler, uploadHandler, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // загрузка изображений может быть долгой
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("starting Admin Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down Admin Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("Admin Service stopped")
}
