package expense

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/painel-financeiro/painel/internal/rest"
	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/painel-financeiro/painel/pkg/report"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// List godoc
// @Summary List expenses
// @Tags Expense
// @Produce json
// @Param id query int false "Expense ID"
// @Param descricao query string false "Description"
// @Param tipoDespesa query string false "Expense type"
// @Param cartaoId query int false "Card ID"
// @Param parcelado query bool false "Split in installments"
// @Success 200 {array} Despesa
// @Router /api/despesas [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing expenses")
	items, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		entry.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, items)
}

// Get godoc
// @Summary Get an expense
// @Tags Expense
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} Despesa
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/despesas/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		entry.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete an expense
// @Tags Expense
// @Param id path int true "Expense ID"
// @Success 204
// @Router /api/despesas/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	log.Debugf("Deleting expense %d", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		entry.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export godoc
// @Summary Download the filtered expenses as a spreadsheet
// @Tags Expense
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/despesas/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.service.Export(r.Context(), r.URL.Query())
	if err != nil {
		entry.WriteError(w, err)
		return
	}
	if err := report.Serve(w, sheet, Kind, h.clock.Now()); err != nil {
		log.Errorf("failed to write expense export: %v", err)
	}
}

func pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid expense id")
		return 0, false
	}
	return id, true
}
