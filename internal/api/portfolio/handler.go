package portfolioapi

import (
	"net/http"
	"strconv"
	"strings"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/portfolio"

	"github.com/gin-gonic/gin"
)

// GET /api/portfolio
func ListItems(c *gin.Context) {
	items := []portfolio.Item{}
	if err := database.DB.Order("created_at DESC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load portfolio"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// POST /api/portfolio
func CreateItem(c *gin.Context) {
	var in portfolio.Item
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := portfolio.Item{
		Title:       strings.TrimSpace(in.Title),
		Category:    strings.TrimSpace(in.Category),
		URL:         strings.TrimSpace(in.URL),
		Description: strings.TrimSpace(in.Description),
	}
	if err := item.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := database.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save portfolio item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DELETE /api/portfolio/:id
func DeleteItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	res := database.DB.Delete(&portfolio.Item{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete portfolio item"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
