package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simplecrud/internal/domain"
	"simplecrud/internal/services"
)

// ResourceHandler exposes one resource type over HTTP.
type ResourceHandler[T domain.Resource] struct {
	Service services.ResourceService[T]
	Export  services.ExportService
	// PublicURL overrides the request origin in form actions.
	PublicURL string

	basePath string
}

// Mount registers the CRUD routes on g, whose base path is the collection.
func (h *ResourceHandler[T]) Mount(g *gin.RouterGroup) {
	h.basePath = g.BasePath()
	g.GET("", h.List)
	g.GET("/new", h.New)
	g.GET("/:id/edit", h.Edit)
	g.GET("/:id", h.Show)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T]) collectionURL(c *gin.Context) string {
	return baseURL(c, h.PublicURL) + h.basePath
}

// GET /
func (h *ResourceHandler[T]) List(c *gin.Context) {
	filter, err := bindFilter(c, h.Service.Def.NewFilter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.Service.List(c.Request.Context(), listQuery(c), filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	renderList(c, h.Export, h.Service.Def.Name, res)
}

// GET /new
func (h *ResourceHandler[T]) New(c *gin.Context) {
	filter, err := bindFilter(c, h.Service.Def.NewFilter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Service.NewForm(filter, h.collectionURL(c)))
}

// GET /:id/edit
func (h *ResourceHandler[T]) Edit(c *gin.Context) {
	id := c.Param("id")
	view, err := h.Service.EditForm(c.Request.Context(), id, h.collectionURL(c)+"/"+id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /:id
func (h *ResourceHandler[T]) Show(c *gin.Context) {
	res, err := h.Service.Locate(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.Service.Create(c.Request.Context(), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Location", h.collectionURL(c)+"/"+res.ResourceID())
	c.JSON(http.StatusCreated, res)
}

// PUT /:id
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.Service.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /:id
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
