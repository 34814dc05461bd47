package entry

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/painel-financeiro/painel/internal/rest"
	"github.com/painel-financeiro/painel/pkg/auth"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// OpenDraft godoc
// @Summary Open a draft for a new entry, or for editing an existing one
// @Tags Entry
// @Produce json
// @Param kind path string true "despesas or dividas"
// @Param id path int false "Record ID when editing"
// @Success 201 {object} State
// @Failure 404 {object} rest.ErrorResponse "Unknown kind or record"
// @Router /api/{kind}/drafts [post]
// @Router /api/{kind}/{id}/drafts [post]
func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	recordId := 0
	if idString, ok := vars["id"]; ok {
		id, err := strconv.Atoi(idString)
		if err != nil || id <= 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid record id")
			return
		}
		recordId = id
	}
	log.Debugf("Opening %s draft (record %d)", kind, recordId)

	state, err := h.service.Open(r.Context(), kind, recordId)
	if err != nil {
		WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, state)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.service.Get(r.Context(), vars["kind"], vars["draftId"])
	if err != nil {
		WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, state)
}

// ChangeDraft godoc
// @Summary Apply user edits to a draft
// @Description Body is an object of field name to raw value. Each field is one change and
// @Description a failing change rolls the whole body back. Amounts may be sent as
// @Description {"masked": "<keystrokes>"} to read the digits as cents.
// @Tags Entry
// @Accept json
// @Produce json
// @Success 200 {object} State
// @Failure 400 {object} rest.ErrorResponse "Unknown, computed or disabled field, or invalid value"
// @Router /api/{kind}/drafts/{draftId} [patch]
func (h *Handler) ChangeDraft(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var changes map[string]any
	if err := rest.DecodeJSON(r, &changes); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	log.Tracef("Changing %s draft %s: %v", vars["kind"], vars["draftId"], changes)

	state, err := h.service.Change(r.Context(), vars["kind"], vars["draftId"], changes)
	if err != nil {
		WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, state)
}

// SubmitDraft godoc
// @Summary Save the draft upstream
// @Tags Entry
// @Produce json
// @Success 200 {object} Submission "Updated"
// @Success 201 {object} Submission "Created"
// @Failure 422 {object} State "Draft is invalid, fields are marked as touched"
// @Router /api/{kind}/drafts/{draftId}/submit [post]
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	log.Debugf("Submitting %s draft %s", vars["kind"], vars["draftId"])

	submission, err := h.service.Submit(r.Context(), vars["kind"], vars["draftId"])
	if err != nil {
		var invalid *InvalidDraftError
		if errors.As(err, &invalid) {
			rest.WriteJSON(w, http.StatusUnprocessableEntity, invalid.State)
			return
		}
		WriteError(w, err)
		return
	}
	status := http.StatusOK
	if submission.Created {
		status = http.StatusCreated
	}
	rest.WriteJSON(w, status, submission)
}

func (h *Handler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.Cancel(r.Context(), vars["kind"], vars["draftId"]); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WriteError answers with the status matching err. Upstream client errors pass through.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrUnauthenticated):
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrDraftNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, form.ErrInvalidValue),
		errors.Is(err, ErrReadOnlyField), errors.Is(err, ErrFieldDisabled):
		rest.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		if status, message, ok := upstream.StatusOf(err); ok {
			rest.WriteError(w, status, message)
			return
		}
		log.Errorf("entry request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
