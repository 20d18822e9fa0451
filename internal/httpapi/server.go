// Package httpapi exposes the character sheet over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// Repository is the storage surface the API needs beyond the sheet.Store
// contract. The memory, postgres and redis stores all satisfy it.
type Repository interface {
	sheet.Store

	CreateCharacter(ctx context.Context, c *character.Character) (*character.Character, error)
	ListCharacters(ctx context.Context) ([]*character.Character, error)
	UpdateCharacter(ctx context.Context, c *character.Character) (*character.Character, error)
	DeleteCharacter(ctx context.Context, id int64) error

	CreateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error)
	UpdateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error)
	DeleteSpell(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error)
	UpdateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// Server routes API requests to the sheet service and the repository.
type Server struct {
	svc    *sheet.Service
	repo   Repository
	logger *zap.Logger
	health HealthFunc
}

// New creates a Server. health may be nil when the store has nothing to ping.
//
// Precondition: svc, repo and logger must be non-nil; svc must be built over repo.
func New(svc *sheet.Service, repo Repository, logger *zap.Logger, health HealthFunc) *Server {
	return &Server{svc: svc, repo: repo, logger: logger, health: health}
}

// Handler returns the routed handler wrapped in request-ID, access-log and
// panic-recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/characters", s.listCharacters)
	mux.HandleFunc("POST /api/characters", s.createCharacter)
	mux.HandleFunc("GET /api/characters/{id}", s.getCharacter)
	mux.HandleFunc("PUT /api/characters/{id}", s.updateCharacter)
	mux.HandleFunc("DELETE /api/characters/{id}", s.deleteCharacter)

	mux.HandleFunc("PATCH /api/characters/{id}/resources", s.patchResources)
	mux.HandleFunc("PUT /api/characters/{id}/resources/{field}", s.setResource)
	mux.HandleFunc("POST /api/characters/{id}/resources/{field}/adjust", s.adjustResource)
	mux.HandleFunc("POST /api/characters/{id}/rest", s.rest)

	mux.HandleFunc("POST /api/characters/{id}/spells", s.createSpell)
	mux.HandleFunc("GET /api/spells/{id}", s.getSpell)
	mux.HandleFunc("PUT /api/spells/{id}", s.updateSpell)
	mux.HandleFunc("DELETE /api/spells/{id}", s.deleteSpell)
	mux.HandleFunc("POST /api/spells/{id}/cast", s.castSpell)

	mux.HandleFunc("POST /api/characters/{id}/items", s.createItem)
	mux.HandleFunc("GET /api/items/{id}", s.getItem)
	mux.HandleFunc("PUT /api/items/{id}", s.updateItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.deleteItem)
	mux.HandleFunc("POST /api/items/{id}/toggle-equip", s.toggleEquip)

	return s.recoverPanics(s.accessLog(requestID(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
