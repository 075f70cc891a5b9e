package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/milesync/milesync-backend/internal/apierr"
)

func testContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestPagingDefaults(t *testing.T) {
	c := testContext(t, "/api/mileage/trips")
	page, limit, offset := paging(c)
	if page != 1 || limit != 50 || offset != 0 {
		t.Errorf("paging defaults = %d/%d/%d", page, limit, offset)
	}
}

func TestPagingBounds(t *testing.T) {
	c := testContext(t, "/api/mileage/trips?page=3&limit=20")
	page, limit, offset := paging(c)
	if page != 3 || limit != 20 || offset != 40 {
		t.Errorf("paging = %d/%d/%d", page, limit, offset)
	}

	c = testContext(t, "/api/mileage/trips?page=-1&limit=9999")
	page, limit, _ = paging(c)
	if page != 1 || limit != 50 {
		t.Errorf("out-of-range paging = %d/%d, want clamped defaults", page, limit)
	}
}

func TestMakePagination(t *testing.T) {
	p := makePagination(101, 2, 50)
	if p.Pages != 3 {
		t.Errorf("pages = %d, want 3", p.Pages)
	}
	if p.Total != 101 || p.Page != 2 || p.Limit != 50 {
		t.Errorf("pagination = %+v", p)
	}
}

func TestParseDateQuery(t *testing.T) {
	c := testContext(t, "/api/mileage/summary?start_date=2025-01-05")
	date := parseDateQuery(c, "start_date")
	if date == nil || date.Year() != 2025 || date.Month() != 1 || date.Day() != 5 {
		t.Errorf("parsed date = %v", date)
	}
	if got := parseDateQuery(c, "end_date"); got != nil {
		t.Errorf("absent param parsed to %v", got)
	}

	c = testContext(t, "/api/mileage/summary?start_date=yesterday")
	if got := parseDateQuery(c, "start_date"); got != nil {
		t.Errorf("invalid date parsed to %v", got)
	}
}

func TestRespondServiceErrorMapsStatus(t *testing.T) {
	recorder := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(recorder)
	RespondServiceError(c, apierr.NotFound("gap not found"))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `"not_found"`) || !strings.Contains(body, `"gap not found"`) {
		t.Errorf("body = %s", body)
	}
}
