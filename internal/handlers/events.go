package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// errBadTime is returned by parseQueryTime for input matching none of queryTimeLayouts.
var errBadTime = errors.New("expected RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'")

// queryTimeLayouts are tried in order; dateOnly marks layouts without a clock part.
var queryTimeLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339, false},
	{time.DateTime, false},
	{time.DateOnly, true},
}

// eventsQuery is the query string accepted by getEvents.
type eventsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Type string `form:"type"`
}

// filter turns the raw query into a service.LogFilter. A date-only To covers the whole day.
// On failure the returned string names the offending parameter.
func (q eventsQuery) filter() (service.LogFilter, string, error) {
	f := service.LogFilter{Type: strings.ToUpper(strings.TrimSpace(q.Type))}

	if q.From != "" {
		from, _, err := parseQueryTime(q.From)
		if err != nil {
			return f, "from", err
		}
		f.From = from
	}
	if q.To != "" {
		to, dateOnly, err := parseQueryTime(q.To)
		if err != nil {
			return f, "to", err
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = to
	}
	return f, "", nil
}

// @Summary      List auth events
// @Description  Audit log of registrations and logins. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' is end of day inclusive.
// @Tags         events
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range"    example(2025-08-31)
// @Param        type  query   string  false  "Event type"      Enums(REGISTER,REGISTER_FAILED,LOGIN,LOGIN_FAILED)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/protected/events [get]
// @Security     BearerAuth
func (h *Handler) getEvents(c *gin.Context) {
	var q eventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	f, param, err := q.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid '" + param + "' time: " + err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, "events_list_failed", err, "from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
}

// parseQueryTime parses s in UTC and reports whether it carried a date only.
func parseQueryTime(s string) (t time.Time, dateOnly bool, err error) {
	for _, l := range queryTimeLayouts {
		if t, err = time.Parse(l.layout, s); err == nil {
			return t.UTC(), l.dateOnly, nil
		}
	}
	return time.Time{}, false, errBadTime
}
