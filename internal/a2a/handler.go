package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/icp-profiler/internal/logging"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
	"github.com/BerylCAtieno/icp-profiler/internal/profiler"
)

const missingDescription = "Please describe your product to generate Ideal Customer Profiles."

type Analyzer interface {
	Analyze(ctx context.Context, productDescription string) (*models.AnalysisResult, error)
}

type A2AHandler struct {
	analyzer Analyzer
	card     AgentCard
}

func NewA2AHandler(analyzer Analyzer, card AgentCard) *A2AHandler {
	return &A2AHandler{
		analyzer: analyzer,
		card:     card,
	}
}

// RegisterRoutes mounts the JSON-RPC endpoint and the agent card.
func (h *A2AHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/a2a/profiler", h.HandleProfiler)
	r.GET("/.well-known/agent.json", h.ServeAgentCard)
}

// HandleProfiler processes A2A messages
func (h *A2AHandler) HandleProfiler(c *gin.Context) {
	log := logging.FromContext(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.WithError(err).Error("failed to read a2a request body")
		h.sendErrorResponse(c, nil, "Failed to read request body", CodeParseError)
		return
	}
	log.WithField("bytes", len(body)).Debug("a2a request received")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		log.WithError(err).Warn("a2a body is not a JSON object")
		h.sendErrorResponse(c, nil, "Parse error", CodeParseError)
		return
	}
	_, hasVersion := fields["jsonrpc"]
	_, hasMethod := fields["method"]
	if !hasVersion && !hasMethod {
		// Some clients post the message params without the JSON-RPC envelope.
		h.handleDirectMessage(c, body)
		return
	}

	var rpcReq JSONRPCRequest
	if err := json.Unmarshal(body, &rpcReq); err != nil {
		log.WithError(err).Warn("malformed JSON-RPC envelope")
		h.sendErrorResponse(c, fields["id"], "Invalid request", CodeInvalidRequest)
		return
	}

	if rpcReq.JSONRPC != jsonRPCVersion {
		log.WithField("jsonrpc", rpcReq.JSONRPC).Warn("invalid JSON-RPC version")
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "agent/task", "message/send":
		h.handleTask(c, rpcReq)
	default:
		log.WithField("method", rpcReq.Method).Warn("unknown JSON-RPC method")
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

// handleDirectMessage handles a message without the JSON-RPC wrapper.
func (h *A2AHandler) handleDirectMessage(c *gin.Context, body []byte) {
	var params MessageParams
	if err := json.Unmarshal(body, &params); err != nil {
		logging.FromContext(c).WithError(err).Warn("a2a body is neither JSON-RPC nor message params")
		h.sendErrorResponse(c, nil, "Invalid request format", CodeParseError)
		return
	}

	const taskID = "direct-message"
	h.sendSuccessResponse(c, json.RawMessage(`"`+taskID+`"`), h.runAnalysis(c, taskID, params.Message))
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	var params MessageParams
	if len(rpcReq.Params) == 0 {
		h.sendErrorResponse(c, rpcReq.ID, "Missing parameters", CodeInvalidParams)
		return
	}
	if err := json.Unmarshal(rpcReq.Params, &params); err != nil {
		logging.FromContext(c).WithError(err).Warn("invalid a2a params")
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}

	h.sendSuccessResponse(c, rpcReq.ID, h.runAnalysis(c, taskIDFor(rpcReq.ID), params.Message))
}

// taskIDFor renders a request id as a task id: strings unquoted, numbers as written.
func taskIDFor(id json.RawMessage) string {
	if len(id) == 0 || string(id) == "null" {
		return uuid.NewString()
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}

func (h *A2AHandler) runAnalysis(c *gin.Context, taskID string, msg Message) TaskResult {
	log := logging.FromContext(c).WithField("task_id", taskID)

	description := extractProductDescription(msg)
	if description == "" {
		log.Warn("no product description found in a2a message")
		return createErrorTaskResult(taskID, missingDescription)
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), description)
	if err != nil {
		log.WithError(err).Error("a2a analysis failed")
		return createErrorTaskResult(taskID, profiler.FailureMessage)
	}

	log.WithField("personas", len(result.Personas)).Info("a2a analysis completed")
	return createSuccessTaskResult(taskID, description, result)
}

// ServeAgentCard serves the agent card using Gin
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, h.card)
}

// extractProductDescription joins the text parts of msg. Data parts carry
// conversation history; only the most recent user-looking entry is used.
func extractProductDescription(msg Message) string {
	var texts []string

	for _, part := range msg.Parts {
		switch part.Kind {
		case "text":
			if t := strings.TrimSpace(part.Text); t != "" {
				texts = append(texts, t)
			}
		case "data":
			if t := latestHistoryText(part.Data); t != "" {
				texts = append(texts, t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(texts, " "))
}

func latestHistoryText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var history []MessagePart
	if err := json.Unmarshal(data, &history); err != nil {
		return ""
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Kind != "text" {
			continue
		}
		text := strings.NewReplacer("<p>", "", "</p>", "").Replace(history[i].Text)
		text = strings.TrimSpace(text)
		if text == "" || isProgressNoise(text) {
			continue
		}
		return text
	}
	return ""
}

// isProgressNoise reports agent status chatter echoed back in history.
func isProgressNoise(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "generating") || strings.Contains(lower, "analyzing") {
		return true
	}
	return strings.Trim(text, ".") == ""
}

func createSuccessTaskResult(taskID, description string, result *models.AnalysisResult) TaskResult {
	text := formatAnalysis(description, result)

	return TaskResult{
		ID:   taskID,
		Kind: "task",
		Status: TaskStatus{
			State:     StateCompleted,
			Timestamp: Timestamp(),
			Message: &Message{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    &taskID,
				Parts:     []MessagePart{TextPart(text)},
			},
		},
		Artifacts: []Artifact{
			{
				ArtifactID: uuid.NewString(),
				Name:       "Ideal Customer Profiles",
				Parts:      []MessagePart{TextPart(text), DataPart(result)},
			},
		},
	}
}

func createErrorTaskResult(taskID, errorMsg string) TaskResult {
	return TaskResult{
		ID:   taskID,
		Kind: "task",
		Status: TaskStatus{
			State:     StateFailed,
			Timestamp: Timestamp(),
			Message: &Message{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    &taskID,
				Parts:     []MessagePart{TextPart(errorMsg)},
			},
		},
	}
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id json.RawMessage, result TaskResult) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  result,
	})
}

// JSON-RPC errors are sent with 200 OK.
func (h *A2AHandler) sendErrorResponse(c *gin.Context, id json.RawMessage, message string, code int) {
	logging.FromContext(c).WithFields(logrus.Fields{"code": code, "rpc_id": string(id)}).Info(message)
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	})
}
