package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/evently/internal/api/dto"
	"github.com/martijn/evently/internal/api/middleware"
	"github.com/martijn/evently/internal/api/util"
	"github.com/martijn/evently/internal/core/repository"
	"github.com/martijn/evently/internal/core/service"
)

// Allowed fields for event queries
var eventQueryFields = []string{"location", "organizer_id", "date"}

type EventHandler struct {
	eventService    *service.EventService
	defaultPageSize int
	maxPageSize     int
}

func NewEventHandler(eventService *service.EventService, defaultPageSize, maxPageSize int) *EventHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &EventHandler{
		eventService:    eventService,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// ListEvents handles GET /api/events
//
//	@Summary	List events ordered by date
//	@Tags		events
//	@Produce	json
//	@Param		page	query		int		false	"Page number, from 1"
//	@Param		limit	query		int		false	"Page size"
//	@Param		search	query		string	false	"Substring of title, description or location"
//	@Param		query	query		string	false	"Filters, e.g. location|Room A or date|gte|2025-01-01"
//	@Success	200		{object}	dto.EventListResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Router		/api/events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	page, limit := util.PageParams(c.Query("page"), c.Query("limit"), h.defaultPageSize, h.maxPageSize)

	filter := repository.EventFilter{
		ListFilter: util.ListFilter{
			Page:    page,
			PerPage: limit,
		},
		Search: strings.TrimSpace(c.Query("search")),
	}

	if queryStr := c.Query("query"); queryStr != "" {
		filters, err := util.ParseQueryString(queryStr)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := util.ValidateFilterFields(filters, eventQueryFields); err != nil {
			badRequest(c, err.Error())
			return
		}

		filter.Filters = filters
	}

	result, err := h.eventService.ListEvents(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	response := dto.EventListResponse{
		Events:      make([]dto.EventResponse, len(result.Events)),
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
		TotalEvents: result.Total,
	}
	for i, event := range result.Events {
		response.Events[i] = dto.NewEventResponse(event)
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent handles GET /api/events/:id
//
//	@Summary	Get one event
//	@Tags		events
//	@Produce	json
//	@Param		id	path		string	true	"Event ID"
//	@Success	200	{object}	dto.EventResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/api/events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventResponse(event))
}

// CreateEvent handles POST /api/events
//
//	@Summary	Create an event owned by the caller
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		dto.EventRequest	true	"Event"
//	@Success	201		{object}	dto.EventResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	401		{object}	dto.ErrorResponse
//	@Router		/api/events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body must be a JSON object")
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), middleware.GetPrincipalID(c), req.ToInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewEventResponse(event))
}

// UpdateEvent handles PUT /api/events/:id
//
//	@Summary	Update an event; only its organizer may
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Event ID"
//	@Param		body	body		dto.EventRequest	true	"Event"
//	@Success	200		{object}	dto.EventResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	401		{object}	dto.ErrorResponse
//	@Failure	403		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Router		/api/events/{id} [put]
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body must be a JSON object")
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), middleware.GetPrincipalID(c), c.Param("id"), req.ToInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventResponse(event))
}

// DeleteEvent handles DELETE /api/events/:id
//
//	@Summary	Delete an event; only its organizer may
//	@Tags		events
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Event ID"
//	@Success	200	{object}	dto.DeleteResponse
//	@Failure	401	{object}	dto.ErrorResponse
//	@Failure	403	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/api/events/{id} [delete]
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id := c.Param("id")

	if err := h.eventService.DeleteEvent(c.Request.Context(), middleware.GetPrincipalID(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteResponse{
		Message: "Event deleted",
		ID:      id,
	})
}
