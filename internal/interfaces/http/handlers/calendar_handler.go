package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/application/collab"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// CalendarHandler serves calendar event endpoints.
type CalendarHandler struct {
	calendar *collab.CalendarService
}

func NewCalendarHandler(calendar *collab.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

func (h *CalendarHandler) Register(r gin.IRoutes) {
	r.POST("/events", h.create)
	r.GET("/events", h.list)
	r.GET("/events/:id", h.get)
	r.PATCH("/events/:id", h.update)
	r.DELETE("/events/:id", h.delete)
}

type createEventRequest struct {
	ProjectID       common.ID       `json:"project_id" binding:"required"`
	Title           string          `json:"title" binding:"required"`
	Description     string          `json:"description"`
	Location        string          `json:"location"`
	StartsAt        time.Time       `json:"starts_at" binding:"required"`
	EndsAt          time.Time       `json:"ends_at" binding:"required"`
	ReminderMinutes int             `json:"reminder_minutes"`
	Attendees       []common.UserID `json:"attendees"`
}

type updateEventRequest struct {
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	Location        *string         `json:"location"`
	StartsAt        *time.Time      `json:"starts_at"`
	EndsAt          *time.Time      `json:"ends_at"`
	ReminderMinutes *int            `json:"reminder_minutes"`
	Attendees       []common.UserID `json:"attendees"`
}

func (h *CalendarHandler) create(c *gin.Context) {
	var req createEventRequest
	if !bindJSON(c, &req) {
		return
	}

	ev, err := h.calendar.Create(c.Request.Context(), middleware.Principal(c), collab.CreateEventInput{
		ProjectID:       req.ProjectID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		ReminderMinutes: req.ReminderMinutes,
		Attendees:       req.Attendees,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, ev)
}

func (h *CalendarHandler) list(c *gin.Context) {
	projectID := strings.TrimSpace(c.Query("project_id"))
	if projectID == "" {
		respondError(c, errors.InvalidParam("project_id is required"))
		return
	}
	page := parsePagination(c)

	var rng common.DateRange
	if from := timeQuery(c, "from"); from != nil {
		rng.From = *from
	}
	if to := timeQuery(c, "to"); to != nil {
		rng.To = *to
	}

	events, total, err := h.calendar.List(c.Request.Context(), middleware.Principal(c), common.ID(projectID), rng, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, events, page, total)
}

func (h *CalendarHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ev, err := h.calendar.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ev)
}

func (h *CalendarHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	ev, err := h.calendar.Update(c.Request.Context(), middleware.Principal(c), id, collab.UpdateEventInput{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		ReminderMinutes: req.ReminderMinutes,
		Attendees:       req.Attendees,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ev)
}

func (h *CalendarHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.calendar.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
