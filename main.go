package main

import (
	"context"
	"fmt"
	"os"

	"github.com/launchpilot/campaignchat/internal/llm"
	"go.uber.org/zap"
)

// Quick smoke test for the classifier gateway against a live endpoint.
func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()
	gateway, err := llm.New("https://api.openai.com/v1", os.Getenv("OPENAI_API_KEY"), "gpt-4o-mini")
	if err != nil {
		logger.Fatal("failed to initialize classifier", zap.Error(err))
	}

	verdict, err := gateway.Classify(ctx, []llm.Turn{
		{Role: llm.RoleAssistant, Text: "What type of campaign would you like to create?"},
		{Role: llm.RoleUser, Text: "welcome emails for new customers"},
	})
	if err != nil {
		logger.Fatal("failed to classify", zap.Error(err))
	}
	fmt.Printf("%+v\n", verdict)
}
