package catalog

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/painel-financeiro/painel/internal/rest"
	"github.com/painel-financeiro/painel/pkg/auth"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

const maxUpload = 5 << 20

type validationResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

func writeError(w http.ResponseWriter, err error) {
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		rest.WriteJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "Please fill in all required fields correctly",
			Fields: invalid.Fields,
		})
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrUnauthenticated):
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
	default:
		if status, message, ok := upstream.StatusOf(err); ok {
			rest.WriteError(w, status, message)
			return
		}
		log.Errorf("catalog request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// parseForm reads multipart and url-encoded bodies alike.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid form data")
		return false
	}
	return true
}

// formFile returns the first uploaded file among fields, or nil.
func formFile(r *http.Request, fields ...string) (*upstream.File, error) {
	for _, field := range fields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			return nil, err
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxUpload {
			return nil, fmt.Errorf("%s is larger than %d bytes", header.Filename, maxUpload)
		}
		return &upstream.File{
			Field:       field,
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}
	return nil, nil
}

type CardHandler struct {
	cards *Cards
}

func NewCardHandler(cards *Cards) *CardHandler {
	return &CardHandler{cards: cards}
}

// List godoc
// @Summary List cards
// @Tags Card
// @Produce json
// @Param id query int false "Card ID"
// @Param descricao query string false "Description"
// @Param tipoCartao query string false "debito or credito"
// @Param bandeira query string false "Mastercard, Visa or Elo"
// @Success 200 {array} Cartao
// @Router /api/cartoes [get]
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, card)
}

func (h *CardHandler) input(w http.ResponseWriter, r *http.Request) (CardInput, bool) {
	if !parseForm(w, r) {
		return CardInput{}, false
	}
	image, err := formFile(r, "imagem_cartao_file", "imagem_cartao")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return CardInput{}, false
	}
	return CardInput{
		Descricao:  r.FormValue("descricao"),
		Bandeira:   r.FormValue("bandeira"),
		TipoCartao: r.FormValue("tipo_cartao"),
		Status:     r.FormValue("status"),
		Image:      image,
	}, true
}

// Create godoc
// @Summary Create a card
// @Tags Card
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} Cartao
// @Failure 400 {object} validationResponse
// @Router /api/cartoes [post]
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	log.Debugf("Creating card %s", in.Descricao)
	card, err := h.cards.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	card, err := h.cards.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, card)
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	if err := h.cards.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type BankHandler struct {
	banks *Banks
}

func NewBankHandler(banks *Banks) *BankHandler {
	return &BankHandler{banks: banks}
}

// List godoc
// @Summary List banks
// @Tags Bank
// @Produce json
// @Param id query string false "Part of the bank ID"
// @Param descricao query string false "Part of the name"
// @Param tipo_banco query string false "Account type"
// @Success 200 {array} Banco
// @Router /api/banco [get]
func (h *BankHandler) List(w http.ResponseWriter, r *http.Request) {
	banks, err := h.banks.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, banks)
}

func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	bank, err := h.banks.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, bank)
}

func (h *BankHandler) input(w http.ResponseWriter, r *http.Request) (BankInput, bool) {
	if !parseForm(w, r) {
		return BankInput{}, false
	}
	image, err := formFile(r, "imagem_banco", "imagem")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return BankInput{}, false
	}
	in := BankInput{
		Nome:      r.FormValue("nome"),
		TipoConta: r.FormValue("tipo_conta"),
		Status:    r.FormValue("status"),
		Image:     image,
	}
	if in.TipoConta == "" {
		in.TipoConta = r.FormValue("tipo_banco")
	}
	if raw := r.FormValue("ativo"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid ativo value")
			return BankInput{}, false
		}
		in.Ativo = &active
	}
	return in, true
}

func (h *BankHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	bank, err := h.banks.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, bank)
}

func (h *BankHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	bank, err := h.banks.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, bank)
}

func (h *BankHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	if err := h.banks.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordsHandler serves a JSON collection (suppliers, sub-categories).
type RecordsHandler[T any] struct {
	records *Records[T]
}

func NewRecordsHandler[T any](records *Records[T]) *RecordsHandler[T] {
	return &RecordsHandler[T]{records: records}
}

func (h *RecordsHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.records.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, items)
}

func (h *RecordsHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	item, err := h.records.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, item)
}

func (h *RecordsHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := rest.DecodeJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	item, err := h.records.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, item)
}

func (h *RecordsHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var input map[string]any
	if err := rest.DecodeJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	item, err := h.records.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, item)
}

func (h *RecordsHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	if err := h.records.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
