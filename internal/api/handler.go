package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BerylCAtieno/icp-profiler/internal/chat"
	"github.com/BerylCAtieno/icp-profiler/internal/models"
	"github.com/BerylCAtieno/icp-profiler/internal/profiler"
)

type Analyzer interface {
	Analyze(ctx context.Context, productDescription string) (*models.AnalysisResult, error)
}

type Handler struct {
	analyzer Analyzer
	chats    *chat.Registry
}

func NewHandler(analyzer Analyzer, chats *chat.Registry) *Handler {
	return &Handler{
		analyzer: analyzer,
		chats:    chats,
	}
}

type analyzeRequest struct {
	ProductDescription string `json:"productDescription"`
}

type openChatRequest struct {
	Persona        models.Persona `json:"persona"`
	ProductContext string         `json:"productContext"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Reply   *models.ChatMessage    `json:"reply"`
	Session models.SessionSnapshot `json:"session"`
}

func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("INVALID_REQUEST", err.Error()))
		return
	}
	if strings.TrimSpace(req.ProductDescription) == "" {
		_ = c.Error(profiler.ErrEmptyDescription)
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.ProductDescription)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Insights(c *gin.Context) {
	var result models.AnalysisResult
	if err := c.ShouldBindJSON(&result); err != nil {
		_ = c.Error(badRequest("INVALID_REQUEST", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": profiler.Insights(&result)})
}

func (h *Handler) Examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": profiler.ExamplePitches})
}

func (h *Handler) OpenChat(c *gin.Context) {
	var req openChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("INVALID_REQUEST", err.Error()))
		return
	}

	session, err := h.chats.Open(c.Request.Context(), req.Persona, req.ProductContext)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, session.Snapshot())
}

func (h *Handler) GetChat(c *gin.Context) {
	session, err := h.chats.Get(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *Handler) SendMessage(c *gin.Context) {
	session, err := h.chats.Get(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("INVALID_REQUEST", err.Error()))
		return
	}

	// A client that hangs up does not abort the turn; the reply still lands in
	// the transcript.
	reply, err := session.Send(context.WithoutCancel(c.Request.Context()), req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sendMessageResponse{Reply: reply, Session: session.Snapshot()})
}

func (h *Handler) ResetChat(c *gin.Context) {
	session, err := h.chats.Get(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := session.Reset(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *Handler) CloseChat(c *gin.Context) {
	if err := h.chats.Close(c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts the REST API under /api.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api", ErrorHandler())

	api.GET("/examples", h.Examples)
	api.POST("/analyze", h.Analyze)
	api.POST("/insights", h.Insights)

	api.POST("/chats", h.OpenChat)
	api.GET("/chats/:id", h.GetChat)
	api.POST("/chats/:id/messages", h.SendMessage)
	api.POST("/chats/:id/reset", h.ResetChat)
	api.DELETE("/chats/:id", h.CloseChat)
}
