package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// rawValue parses a JSON number or string into an int. Anything that is not a
// whole number, including null and booleans, is 0.
func rawValue(msg json.RawMessage) int {
	var str string
	if err := json.Unmarshal(msg, &str); err == nil {
		v, _ := resource.ParseValue(str)
		return v
	}
	v, _ := resource.ParseValue(string(msg))
	return v
}

// takeResourceUpdate removes the pool keys from body and returns them as a
// ResourceUpdate. Keys it does not recognise stay in body.
func takeResourceUpdate(body map[string]json.RawMessage) sheet.ResourceUpdate {
	var u sheet.ResourceUpdate
	targets := map[string]**int{
		"current_ap":  &u.CurrentAP,
		"max_ap":      &u.MaxAP,
		"current_mp":  &u.CurrentMP,
		"max_mp":      &u.MaxMP,
		"current_hex": &u.CurrentHEX,
		"max_hex":     &u.MaxHEX,
	}
	for k, dst := range targets {
		msg, ok := body[k]
		if !ok {
			continue
		}
		v := rawValue(msg)
		*dst = &v
		delete(body, k)
	}
	return u
}

// parseResourceUpdate converts a PATCH body such as {"current_ap": 12,
// "max_mp": "130"} into a ResourceUpdate.
func parseResourceUpdate(body map[string]json.RawMessage) (sheet.ResourceUpdate, error) {
	u := takeResourceUpdate(body)
	if len(body) > 0 {
		unknown := make([]string, 0, len(body))
		for k := range body {
			unknown = append(unknown, k)
		}
		sort.Strings(unknown)
		return u, fmt.Errorf("%w: %s", resource.ErrUnknownField, strings.Join(unknown, ", "))
	}
	if u.Empty() {
		return u, fmt.Errorf("%w: no resource fields given", errBadRequest)
	}
	return u, nil
}

func (s *Server) patchResources(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body map[string]json.RawMessage
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := parseResourceUpdate(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.UpdateResources(r.Context(), id, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// setResource handles PUT /api/characters/{id}/resources/{field} with body
// {"value": ...}. The value may be a number or free text.
func (s *Server) setResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := resource.ParseField(r.PathValue("field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	raw := string(body.Value)
	var str string
	if err := json.Unmarshal(body.Value, &str); err == nil {
		raw = str
	}
	c, err := s.svc.SetResource(r.Context(), id, f, raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) adjustResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := resource.ParseField(r.PathValue("field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.AdjustResource(r.Context(), id, f, body.Delta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// restRequest accepts the rest type under either key; web clients send
// restType.
type restRequest struct {
	RestType      string `json:"rest_type"`
	RestTypeCamel string `json:"restType"`
}

func (b restRequest) restType() string {
	if b.RestType != "" {
		return b.RestType
	}
	return b.RestTypeCamel
}

func (s *Server) rest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body restRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := rest.ParseType(body.restType())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Rest(r.Context(), id, t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"character": c})
}
