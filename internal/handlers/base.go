package handlers

import (
	"github.com/gin-gonic/gin"
)

// OK JSON success helper, merges extra fields into {"success": true}
func OK(c *gin.Context, code int, obj gin.H) {
	body := gin.H{"success": true}
	for k, v := range obj {
		body[k] = v
	}
	c.JSON(code, body)
}

// Fail JSON error helper
func Fail(c *gin.Context, code int, errCode string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   errCode,
	})
}
