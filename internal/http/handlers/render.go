package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"simplecrud/internal/domain"
	"simplecrud/internal/services"
)

const mimePDF = "application/pdf"

func wantsPDF(c *gin.Context) bool {
	if strings.EqualFold(c.Query("_format"), "pdf") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), mimePDF)
}

// renderList writes a list page as JSON, or as a PDF table when asked for.
func renderList(c *gin.Context, export services.ExportService, resource string, res domain.PaginationResult) {
	if !wantsPDF(c) {
		c.JSON(http.StatusOK, res)
		return
	}
	pdf, filename, err := export.ListPDF(resource, res)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, mimePDF, pdf)
}
