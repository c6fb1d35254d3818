package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "simplecrud/internal/config"
)

// SystemHandler serves liveness and introspection endpoints.
type SystemHandler struct {
	DB     *sql.DB
	Router *gin.Engine
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "simplecrud berjalan"})
}

func (h *SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database belum terhubung", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := intconfig.EnsureDB(ctx, h.DB); err != nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database tidak merespons: "+err.Error(), nil)
		return
	}
	var count int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "gagal query ke database: "+err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK", "users_in_db": count})
}

func (h *SystemHandler) Routes(c *gin.Context) {
	if h.Router == nil {
		respondError(c, http.StatusServiceUnavailable, "not_ready", "router belum siap", nil)
		return
	}
	routes := h.Router.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
