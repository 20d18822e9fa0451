package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// Error codes carried in every error response body.
const (
	CodeCharacterNotFound = "character_not_found"
	CodeSpellNotFound     = "spell_not_found"
	CodeItemNotFound      = "item_not_found"
	CodeInvalid           = "invalid_request"
	CodeInsufficientAP    = "insufficient_ap"
	CodeInsufficientMP    = "insufficient_mp"
	CodePersistence       = "persistence_failure"
	codeInternal          = "internal"
)

// errBadRequest marks malformed input that no domain sentinel covers.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, sheet.ErrCharacterNotFound):
		return http.StatusNotFound, CodeCharacterNotFound
	case errors.Is(err, sheet.ErrSpellNotFound):
		return http.StatusNotFound, CodeSpellNotFound
	case errors.Is(err, sheet.ErrItemNotFound):
		return http.StatusNotFound, CodeItemNotFound
	case errors.Is(err, spell.ErrInsufficientAP):
		return http.StatusUnprocessableEntity, CodeInsufficientAP
	case errors.Is(err, spell.ErrInsufficientMP):
		return http.StatusUnprocessableEntity, CodeInsufficientMP
	case errors.Is(err, sheet.ErrPersistence):
		return http.StatusBadGateway, CodePersistence
	case errors.Is(err, errBadRequest),
		errors.Is(err, character.ErrInvalidCharacter),
		errors.Is(err, character.ErrUnknownMax),
		errors.Is(err, spell.ErrInvalidSpell),
		errors.Is(err, inventory.ErrInvalidItem),
		errors.Is(err, resource.ErrUnknownField),
		errors.Is(err, resource.ErrInvalidPool),
		errors.Is(err, rest.ErrUnknownRestType):
		return http.StatusBadRequest, CodeInvalid
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	return nil
}

// decodeFields decodes keys already split out of a request body into v,
// rejecting any key v does not know.
func decodeFields(fields map[string]json.RawMessage, v any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}
