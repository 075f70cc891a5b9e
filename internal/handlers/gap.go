package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/requestdata"
	"github.com/milesync/milesync-backend/internal/services"
)

type GapHandler struct {
	gapService services.GapService
}

func NewGapHandler(gapService services.GapService) *GapHandler {
	return &GapHandler{gapService: gapService}
}

func (gh *GapHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	page, limit, offset := paging(c)
	filter := repos.GapListFilter{
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
		GapType:  c.Query("gap_type"),
		Limit:    limit,
		Offset:   offset,
	}
	gaps, total, err := gh.gapService.ListGaps(c.Request.Context(), rd.UserID, filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"gaps": gaps, "pagination": makePagination(total, page, limit)})
}

func (gh *GapHandler) Detect(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	result, err := gh.gapService.DetectGaps(c.Request.Context(), rd.UserID, parseDateQuery(c, "start_date"), parseDateQuery(c, "end_date"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (gh *GapHandler) Resolve(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	gapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gap id"})
		return
	}
	var req struct {
		ResolutionNotes string `json:"resolution_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	gap, err := gh.gapService.ResolveGap(c.Request.Context(), rd.UserID, gapID, req.ResolutionNotes, rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"gap": gap})
}
