package main

import (
	"net/http"
	"os"

	"github.com/launchpilot/campaignchat/internal/api"
	"github.com/launchpilot/campaignchat/internal/chat"
	"github.com/launchpilot/campaignchat/internal/db"
	"github.com/launchpilot/campaignchat/internal/export"
	"github.com/launchpilot/campaignchat/internal/llm"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	dbPath := envOr("CAMPAIGNCHAT_DB", "campaignchat.db")
	exportDir := envOr("CAMPAIGNCHAT_EXPORT_DIR", ".")
	addr := envOr("CAMPAIGNCHAT_ADDR", ":8000")
	baseURL := envOr("OPENAI_BASE_URL", "https://api.openai.com/v1")
	model := envOr("OPENAI_MODEL", "gpt-4o-mini")
	token := os.Getenv("OPENAI_API_KEY")

	database, err := db.New(dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", dbPath))
	}

	// Classifier gateway
	classifier, err := llm.New(baseURL, token, model)
	if err != nil {
		logger.Fatal("failed to initialize classifier", zap.Error(err))
	}

	// Script expansion shares the same provider
	expanderModel, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		logger.Fatal("failed to initialize expander", zap.Error(err))
	}
	expander := llm.NewExpander(expanderModel)

	exporter := export.NewFileExporter(exportDir)
	chatService := chat.NewService(database, database, classifier, exporter)

	handler := api.NewHandler(chatService, expander, exporter, database, logger)

	http.HandleFunc("/api/workflowchat/trigger", handler.TriggerChat)
	http.HandleFunc("/api/workflowchat/continue", handler.ContinueChat)
	http.HandleFunc("/api/workflowchat/process", handler.ProcessWorkflow)
	http.HandleFunc("/api/workflows", handler.PutWorkflow)

	logger.Info("Starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
