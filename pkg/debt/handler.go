package debt

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
// @Summary List debts
// @Tags Debt
// @Produce json
// @Param id query int false "Debt ID"
// @Param descricao query string false "Description"
// @Param tipoDivida query string false "Debt type"
// @Param cartaoId query int false "Card ID"
// @Param parcelado query bool false "Split in installments"
// @Success 200 {array} Divida
// @Router /api/dividas [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing debts")
	items, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		entry.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, items)
}

// Get godoc
// @Summary Get an debt
// @Tags Debt
// @Produce json
// @Param id path int true "Debt ID"
// @Success 200 {object} Divida
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/dividas/{id} [get]
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
// @Summary Delete an debt
// @Tags Debt
// @Param id path int true "Debt ID"
// @Success 204
// @Router /api/dividas/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	log.Debugf("Deleting debt %d", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		entry.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export godoc
// @Summary Download the filtered debts as a spreadsheet
// @Tags Debt
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/dividas/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.service.Export(r.Context(), r.URL.Query())
	if err != nil {
		entry.WriteError(w, err)
		return
	}
	if err := report.Serve(w, sheet, Kind, h.clock.Now()); err != nil {
		log.Errorf("failed to write debt export: %v", err)
	}
}

func pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid debt id")
		return 0, false
	}
	return id, true
}
