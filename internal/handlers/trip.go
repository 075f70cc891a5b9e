package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/services"
)

type TripHandler struct {
	tripService services.TripService
}

func NewTripHandler(tripService services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

func (th *TripHandler) List(c *gin.Context) {
	page, limit, offset := paging(c)
	filter := repos.TripListFilter{
		StartDate: parseDateQuery(c, "start_date"),
		EndDate:   parseDateQuery(c, "end_date"),
		Purpose:   c.Query("purpose"),
		SortBy:    c.DefaultQuery("sort_by", "start_date"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Limit:     limit,
		Offset:    offset,
	}
	trips, total, err := th.tripService.ListTrips(c.Request.Context(), filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"trips": trips, "pagination": makePagination(total, page, limit)})
}

func (th *TripHandler) Create(c *gin.Context) {
	var input services.TripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	trip, err := th.tripService.CreateTrip(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"trip": trip})
}

func (th *TripHandler) Update(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	var input services.TripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	trip, err := th.tripService.UpdateTrip(c.Request.Context(), tripID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"trip": trip})
}

func (th *TripHandler) Delete(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	if err := th.tripService.DeleteTrip(c.Request.Context(), tripID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "trip deleted"})
}

func (th *TripHandler) Summary(c *gin.Context) {
	summary, err := th.tripService.GetSummary(c.Request.Context(), parseDateQuery(c, "start_date"), parseDateQuery(c, "end_date"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

// parseDateQuery accepts YYYY-MM-DD or RFC3339; anything else is ignored.
func parseDateQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	for _, format := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(format, raw); err == nil {
			return &parsed
		}
	}
	return nil
}
