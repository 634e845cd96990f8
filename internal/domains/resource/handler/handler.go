package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmap-backend/internal/domains/resource"
	"blogmap-backend/internal/shared/response"
	"blogmap-backend/internal/store"
)

// ResourceHandler adapts a resource service to HTTP. One instance serves
// one resource; author and paper mount the same four routes.
type ResourceHandler struct {
	service     *resource.Service
	exposeDebug bool
}

func NewResourceHandler(svc *resource.Service, exposeDebug bool) *ResourceHandler {
	return &ResourceHandler{
		service:     svc,
		exposeDebug: exposeDebug,
	}
}

// listRequest is the optional GET body carrying a filter.
type listRequest struct {
	Query store.Document `json:"query"`
}

// List - GET /<resource>
// Body may carry {"query": {...}} to filter; empty body returns all.
func (h *ResourceHandler) List(c *gin.Context) {
	var req listRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Err(c, http.StatusBadRequest, "Invalid Query Structure", h.debug(err.Error()))
			return
		}
	}

	docs, length, err := h.service.List(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, resource.ErrMalformedFilter) {
			response.Err(c, http.StatusBadRequest, "Invalid Query Structure", h.debug(err.Error()))
			return
		}
		response.Err(c, http.StatusInternalServerError,
			fmt.Sprintf("Could not query %ss", h.service.Kind()), h.debug(err.Error()))
		return
	}

	response.List(c, docs, length)
}

// Create - POST /<resource>
func (h *ResourceHandler) Create(c *gin.Context) {
	var payload store.Document
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Err(c, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s Entry", h.service.Kind()), h.debug(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Data(c, created)
}

// Update - PATCH /<resource>/:id
// Full-replace semantics: the submitted payload becomes the stored record
// and is echoed back as data.
func (h *ResourceHandler) Update(c *gin.Context) {
	var payload store.Document
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Err(c, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s Entry", h.service.Kind()), h.debug(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Data(c, updated)
}

// Delete - DELETE /<resource>/:id
// Responds with the pre-deletion record snapshot.
func (h *ResourceHandler) Delete(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Data(c, deleted)
}

// writeError converts the service error taxonomy to HTTP. Nothing
// propagates past this boundary as anything but a JSON error envelope.
func (h *ResourceHandler) writeError(c *gin.Context, err error) {
	var verr *resource.ValidationError
	var cerr *resource.ConflictError

	switch {
	case errors.As(err, &verr):
		response.Err(c, http.StatusBadRequest, verr.Error(), h.debug(verr.Fields))
	case errors.As(err, &cerr):
		response.Conflict(c, cerr.Existing, cerr.Message)
	case errors.Is(err, resource.ErrNotFound):
		response.Err(c, http.StatusNotFound,
			fmt.Sprintf("%s not found", h.service.Kind()), nil)
	case errors.Is(err, resource.ErrMalformedFilter):
		response.Err(c, http.StatusBadRequest, "Invalid Query Structure", h.debug(err.Error()))
	default:
		response.Err(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

// debug gates the `_debug` payload behind configuration; detail never
// leaks when the flag is off.
func (h *ResourceHandler) debug(detail interface{}) interface{} {
	if !h.exposeDebug {
		return nil
	}
	return detail
}
