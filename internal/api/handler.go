package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/launchpilot/campaignchat/internal/chat"
	"github.com/launchpilot/campaignchat/internal/db"
	"github.com/launchpilot/campaignchat/internal/export"
	"github.com/launchpilot/campaignchat/internal/llm"
	"github.com/launchpilot/campaignchat/internal/models"
	"go.uber.org/zap"
)

type Handler struct {
	chats    *chat.Service
	expander *llm.Expander
	exporter *export.FileExporter
	db       *db.Database
	logger   *zap.Logger
}

func NewHandler(chats *chat.Service, expander *llm.Expander, exporter *export.FileExporter, database *db.Database, logger *zap.Logger) *Handler {
	return &Handler{
		chats:    chats,
		expander: expander,
		exporter: exporter,
		db:       database,
		logger:   logger,
	}
}

type ContinueRequest struct {
	ChatID       string `json:"chat_id"`
	UserResponse string `json:"user_response"`
}

type ContinueResponse struct {
	ChatID   string `json:"chat_id"`
	Question string `json:"question"`
}

type ProcessResponse struct {
	Message        string          `json:"message"`
	FilledWorkflow json.RawMessage `json:"filled_workflow"`
}

// TriggerChat starts a conversation for the workflow named in the query
// string and returns the opening question.
func (h *Handler) TriggerChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workflowID := r.URL.Query().Get("workflow_id")

	result, err := h.chats.Start(r.Context(), workflowID)
	if errors.Is(err, chat.ErrWorkflowIDRequired) {
		http.Error(w, "Query parameter 'workflow_id' is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("Failed to start conversation",
			zap.Error(err),
			zap.String("workflowID", workflowID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// ContinueChat applies one user turn. The response is the next question, or
// the full workflow definition once the conversation completes.
func (h *Handler) ContinueChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ContinueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChatID == "" {
		http.Error(w, "chat_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.chats.Continue(r.Context(), req.ChatID, req.UserResponse)
	if err != nil {
		h.writeChatError(w, req.ChatID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Finished {
		if err := json.NewEncoder(w).Encode(result.Workflow.Definition); err != nil {
			h.logger.Error("Failed to encode workflow", zap.Error(err))
		}
		return
	}
	if err := json.NewEncoder(w).Encode(ContinueResponse{
		ChatID:   result.ConversationID,
		Question: result.NextQuestion,
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// ProcessWorkflow expands a completed conversation's exported parameters into
// the filled action script and saves it.
func (h *Handler) ProcessWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chatID := r.URL.Query().Get("chat_id")
	if chatID == "" {
		http.Error(w, "Query parameter 'chat_id' is required", http.StatusBadRequest)
		return
	}

	params, err := h.exporter.ReadArtifact(chatID)
	if err != nil {
		h.logger.Error("Failed to read campaign info", zap.Error(err), zap.String("chatID", chatID))
		http.Error(w, "Campaign info not found", http.StatusNotFound)
		return
	}

	filled, err := h.expander.Expand(r.Context(), params)
	if err != nil {
		h.logger.Error("Failed to expand workflow", zap.Error(err), zap.String("chatID", chatID))
		http.Error(w, "Failed to generate workflow", http.StatusBadGateway)
		return
	}

	if _, err := h.exporter.SaveFilledWorkflow(chatID, filled); err != nil {
		h.logger.Error("Failed to save filled workflow", zap.Error(err), zap.String("chatID", chatID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ProcessResponse{
		Message:        "Workflow processed and saved successfully",
		FilledWorkflow: filled,
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// PutWorkflow registers an external workflow definition for later lookup.
func (h *Handler) PutWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var wf models.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if wf.ID == "" || len(wf.Definition) == 0 {
		http.Error(w, "id and definition are required", http.StatusBadRequest)
		return
	}

	if err := h.db.PutWorkflow(&wf); err != nil {
		h.logger.Error("Failed to save workflow", zap.Error(err), zap.String("workflowID", wf.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeChatError(w http.ResponseWriter, chatID string, err error) {
	var validationErr *chat.ValidationError
	var gatewayErr *llm.GatewayError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Message, http.StatusBadRequest)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Workflow chat not found", http.StatusNotFound)
	case errors.Is(err, db.ErrStaleVersion):
		http.Error(w, "Conversation was updated concurrently, please retry", http.StatusConflict)
	case errors.As(err, &gatewayErr):
		h.logger.Error("Classifier call failed", zap.Error(err), zap.String("chatID", chatID))
		http.Error(w, "Assistant is unavailable, please retry", http.StatusBadGateway)
	default:
		h.logger.Error("Failed to continue conversation", zap.Error(err), zap.String("chatID", chatID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
