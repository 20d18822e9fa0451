package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
)

func (s *Server) listCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := s.repo.ListCharacters(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chars)
}

// createCharacter accepts any subset of the character fields; unset abilities
// and maxima take their defaults and the pool starts full.
func (s *Server) createCharacter(w http.ResponseWriter, r *http.Request) {
	var c character.Character
	if err := decode(w, r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	fresh := c.CurrentAP == 0 && c.CurrentMP == 0 && c.CurrentHEX == 0
	c.ID = 0
	c.Normalize()
	if fresh {
		c.CurrentAP, c.CurrentMP = c.MaxAP, c.MaxMP
	}
	if err := c.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.repo.CreateCharacter(r.Context(), &c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("character created",
		zap.Int64("character_id", created.ID),
		zap.String("name", created.Name),
	)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sh, err := s.svc.Sheet(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// updateCharacter decodes the body over the stored character, so omitted fields
// keep their values. Pool keys in the body are split out and applied through
// the resource service after the descriptive fields are saved.
func (s *Server) updateCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sh, err := s.repo.GetCharacter(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body map[string]json.RawMessage
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	u := takeResourceUpdate(body)
	c := *sh.Character
	if err := decodeFields(body, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = id
	c.Pool = sh.Character.Pool
	if err := c.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.repo.UpdateCharacter(r.Context(), &c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !u.Empty() {
		updated, err = s.svc.UpdateResources(r.Context(), id, u)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.DeleteCharacter(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("character deleted", zap.Int64("character_id", id))
	w.WriteHeader(http.StatusNoContent)
}
