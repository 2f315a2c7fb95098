package handler

import (
	"errors"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/validation"
	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into req. On failure it writes a 400 and
// returns false.
func bindJSON(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errValidation, "fields": validation.TranslateErrors(err)})
		return false
	}
	return true
}

// writeValidation writes a 400 with field messages when err is a
// *domain.ValidationError.
func writeValidation(ctx *gin.Context, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"error": errValidation, "fields": ve.Fields})
	return true
}
