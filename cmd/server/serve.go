package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"study-assistant-go/internal/config"
	"study-assistant-go/internal/generator"
	"study-assistant-go/internal/handler"
	"study-assistant-go/internal/pipeline"
	"study-assistant-go/internal/repository"
	"study-assistant-go/internal/retrieval"
	"study-assistant-go/internal/service"
	"study-assistant-go/pkg/database"
	"study-assistant-go/pkg/embedding"
	"study-assistant-go/pkg/extractor"
	"study-assistant-go/pkg/kafka"
	"study-assistant-go/pkg/llm"
	"study-assistant-go/pkg/log"
	"study-assistant-go/pkg/storage"
	"study-assistant-go/pkg/tika"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Conf
	log.Info("Starting study assistant server...")

	// 初始化基础设施
	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)
	storage.InitMinIO(cfg.MinIO)

	// 初始化 Repository
	docRepo := repository.NewDocumentRepository(database.DB)
	questionRepo := repository.NewQuestionRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.DB)
	chatHistoryRepo := repository.NewChatHistoryRepository(database.RDB)

	// 初始化外部客户端
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return err
	}
	embeddingClient := embedding.NewClient(cfg.Embedding)
	engine := retrieval.NewEngine(embeddingClient, cfg.Embedding.Model, cfg.Embedding.FallbackModel, retrieval.NewCache())
	ext := extractor.New(tika.NewClient(cfg.Tika))

	// 向量预热：配置了 Kafka 时异步消费，否则在上传请求内同步执行
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	processor := pipeline.NewProcessor(docRepo, engine)
	var dispatcher service.TaskDispatcher = pipeline.NewInlineDispatcher(processor)
	if kafka.Enabled(cfg.Kafka) {
		kafka.InitProducer(cfg.Kafka)
		defer kafka.CloseProducer()
		go kafka.StartConsumer(ctx, cfg.Kafka, processor)
		dispatcher = pipeline.KafkaDispatcher{}
	}

	// 初始化 Service
	loop := generator.NewLoop(llmClient, questionRepo, generator.Options{
		MaxRetries:     cfg.Generation.MaxRetries,
		RetryDelay:     time.Duration(cfg.Generation.RetryDelayMS) * time.Millisecond,
		SuccessDelay:   time.Duration(cfg.Generation.SuccessDelayMS) * time.Millisecond,
		PreviousWindow: cfg.Generation.PreviousWindow,
		CallTimeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	docService := service.NewDocumentService(docRepo, ext, storage.NewObjectStore(), dispatcher)
	quizService := service.NewQuizService(docRepo, questionRepo, sessionRepo, loop)
	chatService := service.NewChatService(docRepo, chatHistoryRepo, engine, llmClient, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)

	// 初始化 Handler 与路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.SetupRouter(handler.Handlers{
		Document: handler.NewDocumentHandler(docService),
		Question: handler.NewQuestionHandler(quizService),
		Session:  handler.NewSessionHandler(quizService),
		Chat:     handler.NewChatHandler(chatService),
	}, handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadMB:    cfg.Server.MaxUploadMB,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server is running on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", err)
	}

	log.Info("Server exiting")
	return nil
}
