package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/hexsheet/internal/client"
	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/httpapi"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
	"github.com/cory-johannsen/hexsheet/internal/storage/memory"
)

var (
	_ sheet.Store        = (*client.Client)(nil)
	_ httpapi.Repository = (*client.Client)(nil)
)

// newAPI serves the API over a fresh memory store. wrap, when non-nil, sits in
// front of the API handler.
func newAPI(t *testing.T, wrap func(http.Handler) http.Handler) (*client.Client, *memory.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	svc := sheet.NewService(store, rest.DefaultRules(), logger)
	h := httpapi.New(svc, store, logger, nil).Handler()
	if wrap != nil {
		h = wrap(h)
	}
	mux := http.NewServeMux()
	mux.Handle("/", h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api/", 5*time.Second, logger), store
}

func seed(t *testing.T, c *client.Client, p resource.Pool) (*character.Character, *spell.Spell) {
	t.Helper()
	ctx := context.Background()
	ch, err := c.CreateCharacter(ctx, &character.Character{Name: "Oren", Class: "Hexblade"})
	require.NoError(t, err)
	ch, err = c.UpdateResources(ctx, ch.ID, p)
	require.NoError(t, err)
	sp, err := c.CreateSpell(ctx, &spell.Spell{CharacterID: ch.ID, Name: "Firebolt", APCost: 3, MPCost: 10, HexIncrement: 2})
	require.NoError(t, err)
	return ch, sp
}

func TestClient_NotFoundMapsToSentinel(t *testing.T) {
	c, _ := newAPI(t, nil)
	ctx := context.Background()

	_, err := c.GetCharacter(ctx, 404)
	assert.ErrorIs(t, err, sheet.ErrCharacterNotFound)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = c.GetSpell(ctx, 404)
	assert.ErrorIs(t, err, sheet.ErrSpellNotFound)
	_, err = c.GetItem(ctx, 404)
	assert.ErrorIs(t, err, sheet.ErrItemNotFound)
}

func TestClient_InvalidRequest(t *testing.T) {
	c, _ := newAPI(t, nil)
	_, err := c.CreateCharacter(context.Background(), &character.Character{Name: ""})
	assert.ErrorIs(t, err, client.ErrInvalidRequest)
}

func TestClient_RoundTrip(t *testing.T) {
	c, _ := newAPI(t, nil)
	ctx := context.Background()
	p := resource.Pool{CurrentAP: 5, MaxAP: 30, CurrentMP: 6, MaxMP: 60, CurrentHEX: 7, MaxHEX: 10}
	ch, sp := seed(t, c, p)
	assert.Equal(t, p, ch.Pool)

	sh, err := c.GetCharacter(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, p, sh.Character.Pool)
	require.Len(t, sh.Spells, 1)
	assert.Equal(t, sp.ID, sh.Spells[0].ID)

	it, err := c.CreateItem(ctx, &inventory.Item{CharacterID: ch.ID, Name: "Lute", Type: inventory.TypeTool})
	require.NoError(t, err)
	it, err = c.SetEquipped(ctx, it.ID, true)
	require.NoError(t, err)
	assert.True(t, it.Equipped)

	all, err := c.ListCharacters(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, c.DeleteItem(ctx, it.ID))
	require.NoError(t, c.DeleteSpell(ctx, sp.ID))
	require.NoError(t, c.DeleteCharacter(ctx, ch.ID))
	assert.ErrorIs(t, c.DeleteCharacter(ctx, ch.ID), sheet.ErrCharacterNotFound)
}

func TestClient_UpdateCharacterKeepsRemotePool(t *testing.T) {
	c, _ := newAPI(t, nil)
	ctx := context.Background()
	stale, _ := seed(t, c, resource.NewPool())

	spent := resource.Pool{CurrentAP: 2, MaxAP: 45, CurrentMP: 9, MaxMP: 121, CurrentHEX: 4, MaxHEX: 20}
	_, err := c.UpdateResources(ctx, stale.ID, spent)
	require.NoError(t, err)

	stale.Notes = "owes the ferryman"
	updated, err := c.UpdateCharacter(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, "owes the ferryman", updated.Notes)
	assert.Equal(t, spent, updated.Pool)
}

func TestClient_LocalServiceOverRemoteStore(t *testing.T) {
	c, store := newAPI(t, nil)
	ctx := context.Background()
	ch, sp := seed(t, c, resource.Pool{CurrentAP: 45, MaxAP: 45, CurrentMP: 121, MaxMP: 121, CurrentHEX: 19, MaxHEX: 20})

	svc := sheet.NewService(c, rest.DefaultRules(), zaptest.NewLogger(t))
	out, err := svc.CastSpell(ctx, sp.ID)
	require.NoError(t, err)
	assert.True(t, out.Result.Success)
	assert.True(t, out.Result.HexOverflow)

	stored, err := store.GetCharacter(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, resource.Pool{CurrentAP: 42, MaxAP: 45, CurrentMP: 111, MaxMP: 121, CurrentHEX: 0, MaxHEX: 20}, stored.Character.Pool)
}

func TestClient_RemoteWriteFailureIsPersistenceError(t *testing.T) {
	failPatch := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPatch {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"error":"disk on fire","code":"persistence_failure"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	c, store := newAPI(t, failPatch)
	ctx := context.Background()

	ch, err := store.CreateCharacter(ctx, &character.Character{Name: "Oren", Pool: resource.NewPool()})
	require.NoError(t, err)
	sp, err := store.CreateSpell(ctx, &spell.Spell{CharacterID: ch.ID, Name: "Firebolt", APCost: 3})
	require.NoError(t, err)

	svc := sheet.NewService(c, rest.DefaultRules(), zaptest.NewLogger(t))
	_, err = svc.CastSpell(ctx, sp.ID)
	assert.ErrorIs(t, err, sheet.ErrPersistence)

	stored, err := store.GetCharacter(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, resource.NewPool(), stored.Character.Pool)
}

func TestClient_RemoteCastAndRest(t *testing.T) {
	c, _ := newAPI(t, nil)
	ctx := context.Background()
	ch, sp := seed(t, c, resource.Pool{CurrentAP: 2, MaxAP: 45, CurrentMP: 121, MaxMP: 121, MaxHEX: 20})

	out, err := c.CastSpell(ctx, sp.ID)
	require.NoError(t, err)
	assert.False(t, out.Result.Success)
	assert.True(t, errors.Is(out.Result.Reason, spell.ErrInsufficientAP))
	assert.Equal(t, 2, out.Character.CurrentAP)

	rested, err := c.Rest(ctx, ch.ID, rest.Long)
	require.NoError(t, err)
	assert.Equal(t, 45, rested.CurrentAP)

	out, err = c.CastSpell(ctx, sp.ID)
	require.NoError(t, err)
	assert.True(t, out.Result.Success)
	assert.Equal(t, 42, out.Character.CurrentAP)
}

func TestClient_TransportError(t *testing.T) {
	c := client.New("http://127.0.0.1:1/api", time.Second, zaptest.NewLogger(t))
	_, err := c.GetCharacter(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, sheet.ErrCharacterNotFound)
}

func TestClient_RemoteSetAndAdjust(t *testing.T) {
	c, _ := newAPI(t, nil)
	ctx := context.Background()
	ch, _ := seed(t, c, resource.Pool{CurrentAP: 10, MaxAP: 45, CurrentMP: 50, MaxMP: 121, CurrentHEX: 0, MaxHEX: 20})

	got, err := c.SetResource(ctx, ch.ID, resource.CurrentAP, "99")
	require.NoError(t, err)
	assert.Equal(t, 45, got.CurrentAP)

	got, err = c.SetResource(ctx, ch.ID, resource.CurrentMP, "lots")
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentMP)

	got, err = c.AdjustResource(ctx, ch.ID, resource.CurrentHEX, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got.CurrentHEX)

	_, err = c.AdjustResource(ctx, 404, resource.CurrentHEX, 1)
	assert.ErrorIs(t, err, sheet.ErrCharacterNotFound)
}
