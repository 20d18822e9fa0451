// Package client talks to the sheet HTTP API. Client satisfies sheet.Store, so a
// local sheet.Service can evaluate the rules against a remote store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/config"
	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/dice"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/httpapi"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// ErrInvalidRequest is the sentinel behind a 400 response.
var ErrInvalidRequest = errors.New("invalid request")

// APIError is a non-2xx response. It unwraps to the sentinel matching its code,
// so callers can test it with errors.Is against the sheet and spell errors.
type APIError struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

var codeErrors = map[string]error{
	httpapi.CodeCharacterNotFound: sheet.ErrCharacterNotFound,
	httpapi.CodeSpellNotFound:     sheet.ErrSpellNotFound,
	httpapi.CodeItemNotFound:      sheet.ErrItemNotFound,
	httpapi.CodeInvalid:           ErrInvalidRequest,
	httpapi.CodeInsufficientAP:    spell.ErrInsufficientAP,
	httpapi.CodeInsufficientMP:    spell.ErrInsufficientMP,
	httpapi.CodePersistence:       sheet.ErrPersistence,
}

// Client is an HTTP client for the sheet API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client for the API rooted at baseURL, e.g. "http://host:3001/api".
//
// Precondition: baseURL must be non-empty; timeout must be positive.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FromConfig creates a Client from the client configuration section.
func FromConfig(cfg config.ClientConfig, logger *zap.Logger) *Client {
	return New(cfg.BaseURL, cfg.Timeout, logger)
}

// do sends a JSON request and decodes a 2xx body into out (unless out is nil).
// Statuses listed in accept are decoded like 2xx.
func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", resp.Header.Get(httpapi.RequestIDHeader)),
		zap.Duration("elapsed", time.Since(start)),
	)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, s := range accept {
		ok = ok || resp.StatusCode == s
	}
	if !ok {
		return resp.StatusCode, decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code, apiErr.Message = body.Code, body.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	apiErr.cause = codeErrors[apiErr.Code]
	return apiErr
}

// GetCharacter fetches the character with its spells and items.
func (c *Client) GetCharacter(ctx context.Context, id int64) (*sheet.Sheet, error) {
	var sh sheet.Sheet
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/characters/%d", id), nil, &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

// UpdateResources writes all six pool fields. The server applies maxima before
// currents, so a valid pool is stored exactly.
func (c *Client) UpdateResources(ctx context.Context, id int64, p resource.Pool) (*character.Character, error) {
	var out character.Character
	if _, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/characters/%d/resources", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSpell fetches a spell.
func (c *Client) GetSpell(ctx context.Context, id int64) (*spell.Spell, error) {
	var sp spell.Spell
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/spells/%d", id), nil, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// GetItem fetches an item.
func (c *Client) GetItem(ctx context.Context, id int64) (*inventory.Item, error) {
	var it inventory.Item
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/items/%d", id), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// SetEquipped sets the equipped flag of an item.
func (c *Client) SetEquipped(ctx context.Context, id int64, equipped bool) (*inventory.Item, error) {
	var it inventory.Item
	body := map[string]bool{"is_equipped": equipped}
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/items/%d", id), body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListCharacters returns every character.
func (c *Client) ListCharacters(ctx context.Context) ([]*character.Character, error) {
	var out []*character.Character
	if _, err := c.do(ctx, http.MethodGet, "/characters", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCharacter creates a character; unset fields take server defaults.
func (c *Client) CreateCharacter(ctx context.Context, ch *character.Character) (*character.Character, error) {
	var out character.Character
	if _, err := c.do(ctx, http.MethodPost, "/characters", ch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCharacter replaces the descriptive fields of ch.
func (c *Client) UpdateCharacter(ctx context.Context, ch *character.Character) (*character.Character, error) {
	body, err := withoutPool(ch)
	if err != nil {
		return nil, err
	}
	var out character.Character
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/characters/%d", ch.ID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// withoutPool encodes ch with its pool keys removed. The server applies pool
// keys on PUT, and a stale copy must not undo a concurrent cast.
func withoutPool(ch *character.Character) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(ch)
	if err != nil {
		return nil, fmt.Errorf("encoding character %d: %w", ch.ID, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encoding character %d: %w", ch.ID, err)
	}
	for _, k := range []string{"current_ap", "max_ap", "current_mp", "max_mp", "current_hex", "max_hex"} {
		delete(fields, k)
	}
	return fields, nil
}

// DeleteCharacter removes a character with its spells and items.
func (c *Client) DeleteCharacter(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/characters/%d", id), nil, nil)
	return err
}

// CreateSpell adds a spell to sp.CharacterID.
func (c *Client) CreateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error) {
	var out spell.Spell
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/characters/%d/spells", sp.CharacterID), sp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSpell replaces the editable fields of sp.
func (c *Client) UpdateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error) {
	var out spell.Spell
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/spells/%d", sp.ID), sp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSpell removes a spell.
func (c *Client) DeleteSpell(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/spells/%d", id), nil, nil)
	return err
}

// CreateItem adds an item to it.CharacterID.
func (c *Client) CreateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	var out inventory.Item
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/characters/%d/items", it.CharacterID), it, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem replaces the editable fields of it.
func (c *Client) UpdateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	var out inventory.Item
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/items/%d", it.ID), it, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil, nil)
	return err
}

// CastSpell asks the server to cast. A rejected cast is not an error: the
// outcome carries Success false and the reason.
func (c *Client) CastSpell(ctx context.Context, spellID int64) (*sheet.CastOutcome, error) {
	var body struct {
		Character   *character.Character `json:"character"`
		SpellResult spell.CastResult     `json:"spell_result"`
		Damage      *dice.Result         `json:"damage"`
		Error       string               `json:"error"`
		Code        string               `json:"code"`
	}
	status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/spells/%d/cast", spellID), nil, &body, http.StatusUnprocessableEntity)
	if err != nil {
		return nil, err
	}
	res := body.SpellResult
	if status == http.StatusUnprocessableEntity {
		res.Success = false
		res.Reason = &APIError{Status: status, Code: body.Code, Message: body.Error, cause: codeErrors[body.Code]}
	}
	return &sheet.CastOutcome{Character: body.Character, Result: res, Damage: body.Damage}, nil
}

// Rest asks the server to apply a rest.
func (c *Client) Rest(ctx context.Context, id int64, t rest.Type) (*character.Character, error) {
	var body struct {
		Character *character.Character `json:"character"`
	}
	in := map[string]string{"rest_type": t.String()}
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/characters/%d/rest", id), in, &body); err != nil {
		return nil, err
	}
	return body.Character, nil
}

// ToggleEquip asks the server to flip an item's equipped flag.
func (c *Client) ToggleEquip(ctx context.Context, itemID int64) (*inventory.Item, error) {
	var body struct {
		Item *inventory.Item `json:"item"`
	}
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/items/%d/toggle-equip", itemID), nil, &body); err != nil {
		return nil, err
	}
	return body.Item, nil
}

// SetResource asks the server to set field f from free text.
func (c *Client) SetResource(ctx context.Context, id int64, f resource.Field, raw string) (*character.Character, error) {
	var out character.Character
	in := map[string]string{"value": raw}
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/characters/%d/resources/%s", id, f), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdjustResource asks the server to add delta to field f.
func (c *Client) AdjustResource(ctx context.Context, id int64, f resource.Field, delta int) (*character.Character, error) {
	var out character.Character
	in := map[string]int{"delta": delta}
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/characters/%d/resources/%s/adjust", id, f), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
