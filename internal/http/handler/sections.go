package handler

import (
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/reveal"
	"github.com/gin-gonic/gin"
)

// GET /api/sections
func Sections(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, reveal.Sections())
}
