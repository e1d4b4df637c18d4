package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService *service.AdminService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/queries", h.ListQueries)
	r.GET("/books", h.ListBooks)
	r.GET("/books/:isbn", h.GetBook)
	r.GET("/books/:isbn/similar", h.SimilarBooks)
}

// ListQueries returns recent assistant telemetry
func (h *Handler) ListQueries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	queries, err := h.adminService.RecentQueries(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": queries})
}

// ListBooks returns a page of the catalog
func (h *Handler) ListBooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	books, err := h.adminService.ListBooks(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook returns full detail for one book
func (h *Handler) GetBook(c *gin.Context) {
	detail, err := h.adminService.GetBook(c.Param("isbn"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": detail})
}

// SimilarBooks returns books similar to the given one
func (h *Handler) SimilarBooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	books, err := h.adminService.SimilarBooks(c.Param("isbn"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}
