package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/shopease/backend/internal/config"
	"github.com/zhouzirui/shopease/backend/internal/handler"
	"github.com/zhouzirui/shopease/backend/internal/model/catalog"
	"github.com/zhouzirui/shopease/backend/internal/service/ai"
	"github.com/zhouzirui/shopease/backend/internal/service/assistant"
	"github.com/zhouzirui/shopease/backend/internal/service/session"
	"github.com/zhouzirui/shopease/backend/internal/service/transcript"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 缺少数据文件不会阻止启动，错误会通过 /api/status 暴露
	docs := catalog.Load(cfg.Catalog.ProductsPath, cfg.Catalog.OrdersPath)

	store, err := transcript.NewStore(cfg.Storage.TranscriptDir)
	if err != nil {
		log.Fatalf("failed to open transcript directory: %v", err)
	}

	chatModel, err := cfg.Completion.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize completion client: %v", err)
	}
	log.Printf("completion client ready provider=%s model=%s", cfg.Completion.Provider, cfg.Completion.Model)

	builder, err := ai.NewBuilder(ctx, docs, cfg.Completion.HistoryWindow)
	if err != nil {
		log.Fatalf("failed to render system prompt: %v", err)
	}
	completion, err := ai.NewService(chatModel)
	if err != nil {
		log.Fatalf("failed to initialize completion service: %v", err)
	}

	assistantSvc, err := assistant.NewService(session.NewController(store), builder, completion)
	if err != nil {
		log.Fatalf("failed to initialize assistant: %v", err)
	}

	router := handler.NewRouter(handler.Dependencies{
		Assistant:   assistantSvc,
		Transcripts: store,
		Catalog:     docs,
		Provider:    cfg.Completion.Provider,
		Model:       cfg.Completion.Model,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ShopEase support backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
