package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/media-ranker/backend/internal/middleware"
	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/respond"
	"github.com/emilythestrangee/media-ranker/backend/internal/works"
)

const (
	msgLoginRequired = "You must log in to do that"
	msgNotAuthorized = "You are not authorized to perform this action"
	msgNotFound      = "Work not found"
	msgServerError   = "Something went wrong"
)

// WorkHandler serves the work pages: rankings, CRUD and upvotes.
type WorkHandler struct {
	service *works.Service
	log     logrus.FieldLogger
}

func NewWorkHandler(service *works.Service, log logrus.FieldLogger) *WorkHandler {
	return &WorkHandler{service: service, log: log}
}

type workForm struct {
	Work       *models.Work      `json:"work"`
	Categories []models.Category `json:"categories"`
}

func formData(work *models.Work) workForm {
	return workForm{Work: work, Categories: models.Categories}
}

func workPath(id int) string {
	return fmt.Sprintf("/works/%d", id)
}

func label(category models.Category) string {
	if category.Valid() {
		return string(category)
	}
	return "work"
}

// Root returns the top works of each category and the best work overall
func (h *WorkHandler) Root(c *gin.Context) {
	view, err := h.service.Root(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	respond.Render(c, http.StatusOK, nil, view)
}

// Index returns every work grouped by category
func (h *WorkHandler) Index(c *gin.Context) {
	grouped, err := h.service.Index(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	respond.Render(c, http.StatusOK, nil, gin.H{"works_by_category": grouped})
}

// New returns an empty draft for the new-work form
func (h *WorkHandler) New(c *gin.Context) {
	draft, err := h.service.Draft(middleware.ViewerFrom(c))
	if err != nil {
		h.deny(c, err)
		return
	}
	respond.Render(c, http.StatusOK, nil, formData(draft))
}

// Create stores a new work owned by the signed-in user
func (h *WorkHandler) Create(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer == nil {
		h.deny(c, works.ErrUnauthenticated)
		return
	}

	var cmd works.WorkCommand
	if err := c.ShouldBind(&cmd); err != nil {
		respond.Render(c, http.StatusBadRequest,
			respond.Failure("Could not create "+cmd.CategoryLabel(), bindingErrors(c, err)),
			formData(&models.Work{}))
		return
	}

	work, err := h.service.Create(c.Request.Context(), viewer, cmd)
	if fields := works.FieldErrors(err); fields != nil {
		respond.Render(c, http.StatusBadRequest,
			respond.Failure("Could not create "+label(work.Category), fields),
			formData(work))
		return
	}
	if err != nil {
		h.deny(c, err)
		return
	}

	respond.Redirect(c, workPath(work.ID),
		respond.Success(fmt.Sprintf("Successfully created %s %d", work.Category, work.ID)))
}

// Show returns a work with its votes, newest first
func (h *WorkHandler) Show(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer == nil {
		h.deny(c, works.ErrUnauthenticated)
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.deny(c, works.ErrNotFound)
		return
	}

	detail, err := h.service.Show(c.Request.Context(), viewer, id)
	if err != nil {
		h.deny(c, err)
		return
	}
	respond.Render(c, http.StatusOK, nil, detail)
}

// Edit returns the work for its owner's edit form
func (h *WorkHandler) Edit(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer == nil {
		h.deny(c, works.ErrUnauthenticated)
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.deny(c, works.ErrNotFound)
		return
	}

	work, err := h.service.Edit(c.Request.Context(), viewer, id)
	if err != nil {
		h.deny(c, err)
		return
	}
	respond.Render(c, http.StatusOK, nil, formData(work))
}

// Update applies the submitted fields to a work (owner only)
func (h *WorkHandler) Update(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer == nil {
		h.deny(c, works.ErrUnauthenticated)
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.deny(c, works.ErrNotFound)
		return
	}

	// Ownership is checked before the body is read.
	current, err := h.service.Edit(c.Request.Context(), viewer, id)
	if err != nil {
		h.deny(c, err)
		return
	}

	var patch works.WorkPatch
	if err := c.ShouldBind(&patch); err != nil {
		respond.Render(c, http.StatusBadRequest,
			respond.Failure("Could not update "+label(current.Category), bindingErrors(c, err)),
			formData(current))
		return
	}

	work, err := h.service.Update(c.Request.Context(), viewer, id, patch)
	if fields := works.FieldErrors(err); fields != nil {
		respond.Render(c, http.StatusBadRequest,
			respond.Failure("Could not update "+label(current.Category), fields),
			formData(work))
		return
	}
	if err != nil {
		h.deny(c, err)
		return
	}

	respond.Redirect(c, workPath(work.ID),
		respond.Success(fmt.Sprintf("Successfully updated %s %d", work.Category, work.ID)))
}

// Destroy deletes a work and its votes (owner only)
func (h *WorkHandler) Destroy(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	if viewer == nil {
		h.deny(c, works.ErrUnauthenticated)
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.deny(c, works.ErrNotFound)
		return
	}

	work, err := h.service.Destroy(c.Request.Context(), viewer, id)
	if err != nil {
		h.deny(c, err)
		return
	}

	respond.Redirect(c, "/",
		respond.Success(fmt.Sprintf("Successfully destroyed %s %d", work.Category, work.ID)))
}

// Upvote records a vote for the signed-in user. Apart from an unknown work,
// every outcome redirects back to the referring page or the work itself.
func (h *WorkHandler) Upvote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.deny(c, works.ErrNotFound)
		return
	}

	_, err := h.service.Upvote(c.Request.Context(), middleware.ViewerFrom(c), id)
	if errors.Is(err, works.ErrNotFound) {
		h.deny(c, err)
		return
	}

	back := respond.Back(c.Request, workPath(id))
	switch fields := works.FieldErrors(err); {
	case err == nil:
		respond.Redirect(c, back, respond.Success("Successfully upvoted!"))
	case errors.Is(err, works.ErrUnauthenticated):
		respond.Redirect(c, back, respond.Failure(msgLoginRequired, nil))
	case fields != nil:
		respond.Redirect(c, back, respond.Failure("Could not upvote", fields))
	default:
		h.log.WithError(err).WithField("work_id", id).Error("upvote failed")
		respond.Redirect(c, back, respond.Failure("Could not upvote", nil))
	}
}

// deny maps service errors onto responses: the session and ownership gates
// redirect to the root page, a missing work is a 404.
func (h *WorkHandler) deny(c *gin.Context, err error) {
	switch {
	case errors.Is(err, works.ErrUnauthenticated):
		respond.Redirect(c, "/", respond.Failure(msgLoginRequired, nil))
	case errors.Is(err, works.ErrForbidden):
		respond.Redirect(c, "/", respond.Failure(msgNotAuthorized, nil))
	case errors.Is(err, works.ErrNotFound):
		respond.Fail(c, http.StatusNotFound, msgNotFound)
	default:
		h.serverError(c, err)
	}
}

func (h *WorkHandler) serverError(c *gin.Context, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	respond.Fail(c, http.StatusInternalServerError, msgServerError)
}
