package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/milesync/milesync-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps service errors to their apierr status/code, or
// falls back to a 500 store error.
func RespondServiceError(c *gin.Context, err error) {
	status := apierr.StatusOf(err, http.StatusInternalServerError)
	code := apierr.CodeOf(err)
	if code == "" {
		code = apierr.CodeStore
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// paging reads page/limit query params with the original API's defaults.
func paging(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}

func makePagination(total int64, page, limit int) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}
