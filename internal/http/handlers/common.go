package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"simplecrud/internal/domain"
)

const maxBodyBytes = 1 << 20

// readBody returns the raw request body, capped at maxBodyBytes.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.ValidationError{Msg: "body tidak dapat dibaca", Err: err}
	}
	return body, nil
}

// listQuery reads the sort and page parameters. Unparsable numbers read as 0
// and are clamped by the paginator.
func listQuery(c *gin.Context) domain.ListQuery {
	return domain.ListQuery{
		OrderBy: strings.TrimSpace(c.Query("orderBy")),
		Order:   strings.TrimSpace(c.Query("order")),
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
	}
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}

// bindFilter binds the query string onto a fresh filter. A nil factory binds
// nothing.
func bindFilter(c *gin.Context, newFilter func() any) (any, error) {
	if newFilter == nil {
		return nil, nil
	}
	f := newFilter()
	if err := c.ShouldBindQuery(f); err != nil {
		return nil, domain.ValidationError{Msg: "filter tidak valid: " + err.Error(), Err: err}
	}
	return f, nil
}

// baseURL is the absolute origin used in form actions.
func baseURL(c *gin.Context, public string) string {
	if public != "" {
		return public
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request.Host
}
