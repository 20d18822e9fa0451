package httpapi

import (
	"net/http"

	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
)

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	characterID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var it inventory.Item
	if err := decode(w, r, &it); err != nil {
		s.writeError(w, r, err)
		return
	}
	it.ID = 0
	it.CharacterID = characterID
	it.Normalize()
	if err := it.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.repo.CreateItem(r.Context(), &it)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.repo.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.repo.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it := *cur
	if err := decode(w, r, &it); err != nil {
		s.writeError(w, r, err)
		return
	}
	it.ID, it.CharacterID = cur.ID, cur.CharacterID
	it.Normalize()
	if err := it.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.repo.UpdateItem(r.Context(), &it)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.repo.DeleteItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleEquip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.svc.ToggleEquip(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": it})
}
