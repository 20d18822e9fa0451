package httpapi

import (
	"net/http"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/dice"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
)

// castResponse is the body of POST /api/spells/{id}/cast. Error and Code are
// set only when the cast was rejected.
type castResponse struct {
	Success     bool                 `json:"success"`
	Character   *character.Character `json:"character"`
	SpellResult spell.CastResult     `json:"spell_result"`
	Damage      *dice.Result         `json:"damage,omitempty"`
	Error       string               `json:"error,omitempty"`
	Code        string               `json:"code,omitempty"`
}

func (s *Server) createSpell(w http.ResponseWriter, r *http.Request) {
	characterID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var sp spell.Spell
	if err := decode(w, r, &sp); err != nil {
		s.writeError(w, r, err)
		return
	}
	sp.ID = 0
	sp.CharacterID = characterID
	sp.ApplyDefaults()
	if err := sp.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.repo.CreateSpell(r.Context(), &sp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getSpell(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sp, err := s.repo.GetSpell(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) updateSpell(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.repo.GetSpell(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sp := *cur
	if err := decode(w, r, &sp); err != nil {
		s.writeError(w, r, err)
		return
	}
	sp.ID, sp.CharacterID = cur.ID, cur.CharacterID
	sp.ApplyDefaults()
	if err := sp.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.repo.UpdateSpell(r.Context(), &sp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteSpell(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.DeleteSpell(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// castSpell answers 200 with the post-cast character, or 422 with the unchanged
// character when the pool cannot pay.
func (s *Server) castSpell(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.svc.CastSpell(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := castResponse{
		Success:     out.Result.Success,
		Character:   out.Character,
		SpellResult: out.Result,
		Damage:      out.Damage,
	}
	if !out.Result.Success {
		status, code := classify(out.Result.Reason)
		resp.Error = out.Result.Reason.Error()
		resp.Code = code
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
