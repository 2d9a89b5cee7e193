package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/telegram"
)

// GetStats returns the aggregate counters. A storage fault degrades to
// zeroed counters so dashboards keep rendering.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Store.GetStats()
	if err != nil {
		log.Printf("ERROR: Failed to collect stats: %v", err)
		stats = &models.Stats{}
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.Store.GetAllUsers()
	if err != nil {
		log.Printf("ERROR: Failed to list users: %v", err)
		users = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *Handler) GetChats(c *gin.Context) {
	chats, err := h.Store.GetAllChats()
	if err != nil {
		log.Printf("ERROR: Failed to list chats: %v", err)
		chats = []models.ChatSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats, "count": len(chats)})
}

// PostCleanup triggers a retention sweep. Body: {"days": N}, defaulting to
// the standard retention window.
func (h *Handler) PostCleanup(c *gin.Context) {
	var req struct {
		Days int `json:"days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	retention := config.DefaultRetention
	if req.Days > 0 {
		retention = time.Duration(req.Days) * 24 * time.Hour
	}

	report, err := h.Store.CleanupOldData(retention)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// PostBroadcast fans a message out to every user on behalf of the API
// operator (recorded with admin ID 0 unless given).
func (h *Handler) PostBroadcast(c *gin.Context) {
	var req struct {
		Text    string `json:"text" binding:"required"`
		AdminID int64  `json:"admin_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	entry, err := telegram.Broadcast(c.Request.Context(), h.Sender, h.Store, h.Loc, req.AdminID, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "broadcast failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": entry.Sent, "failed": entry.Failed, "failed_ids": entry.FailedIDs})
}
