package note

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/shelf-api/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Fixed messages for id-scoped failures. The cause is logged, never returned.
const (
	msgNotFound     = "Note not found"
	msgCannotUpdate = "Cannot update note"
	msgCannotDelete = "Cannot delete note"
	msgDeleted      = "Note deleted"
)

// Handler exposes note HTTP endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/notes", func(r chi.Router) {
		r.Post("/", h.createNote)
		r.Get("/", h.listNotes)
		r.Get("/{id}", h.getNote)
		r.Put("/{id}", h.updateNote)
		r.Delete("/{id}", h.deleteNote)
	})
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("decode note", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	n, err := h.service.CreateNote(r.Context(), req)
	if err != nil {
		h.logger.Error("create note", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotes(r.Context())
	if err != nil {
		h.logger.Error("list notes", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notes == nil {
		notes = []*Note{}
	}
	httpx.JSON(w, http.StatusOK, notes)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.service.GetNote(r.Context(), id)
	if err != nil {
		h.logFailure("get note", id, err)
		httpx.Error(w, http.StatusNotFound, msgNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logFailure("decode note update", id, err)
		httpx.Error(w, http.StatusNotFound, msgCannotUpdate)
		return
	}
	n, err := h.service.UpdateNote(r.Context(), id, req)
	if err != nil {
		h.logFailure("update note", id, err)
		httpx.Error(w, http.StatusNotFound, msgCannotUpdate)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteNote(r.Context(), id); err != nil {
		h.logFailure("delete note", id, err)
		httpx.Error(w, http.StatusNotFound, msgCannotDelete)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.MessageResponse{Message: msgDeleted})
}

// logFailure keeps not-found at debug level so store failures stand out.
func (h *Handler) logFailure(op, id string, err error) {
	if errors.Is(err, ErrNotFound) {
		h.logger.Debug(op, zap.String("id", id), zap.Error(err))
		return
	}
	h.logger.Error(op, zap.String("id", id), zap.Error(err))
}
