package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/platform/secrets"
)

// ErrKeyNotConfigured is returned by APIKey when the owner stored no key for the provider.
var ErrKeyNotConfigured = errors.New("api key not configured")

// Wildcard subscribes to every key.
const Wildcard = "*"

// Change is delivered to subscribers after a committed write. API key changes
// carry {"configured": bool} and never the key itself.
type Change struct {
	Owner uuid.UUID       `json:"owner"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type Listener func(Change)

type KeyStatus struct {
	Provider   string     `json:"provider"`
	Configured bool       `json:"configured"`
	Hint       string     `json:"hint,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

type Service interface {
	Get(ctx context.Context, owner uuid.UUID, key string) (json.RawMessage, error)
	Set(ctx context.Context, owner uuid.UUID, key string, value json.RawMessage) error
	All(ctx context.Context, owner uuid.UUID) (map[string]json.RawMessage, error)
	Subscribe(key string, fn Listener) (unsubscribe func())

	SetAPIKey(ctx context.Context, owner uuid.UUID, provider, key string) (*KeyStatus, error)
	APIKey(ctx context.Context, owner uuid.UUID, provider string) (string, error)
	APIKeyStatus(ctx context.Context, owner uuid.UUID) ([]KeyStatus, error)
	DeleteAPIKey(ctx context.Context, owner uuid.UUID, provider string) error
}

type subscription struct {
	id  uint64
	key string
	fn  Listener
}

type service struct {
	db       *gorm.DB
	log      *logger.Logger
	settings repos.UserSettingRepo
	keys     repos.APIKeyRepo
	sealer   secrets.Sealer

	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewService(db *gorm.DB, baseLog *logger.Logger, settingRepo repos.UserSettingRepo, keyRepo repos.APIKeyRepo, sealer secrets.Sealer) Service {
	return &service{
		db:       db,
		log:      baseLog.With("service", "SettingsService"),
		settings: settingRepo,
		keys:     keyRepo,
		sealer:   sealer,
	}
}

func (s *service) Get(ctx context.Context, owner uuid.UUID, key string) (json.RawMessage, error) {
	def, known := Default(key)
	if !known {
		return nil, apierr.BadRequest("unknown_setting", "unknown setting %q", key)
	}
	row, err := s.settings.Get(dbctx.Of(ctx), owner, key)
	if err != nil {
		return nil, fmt.Errorf("load setting %s: %w", key, err)
	}
	if row == nil || len(row.Value) == 0 {
		return def, nil
	}
	return json.RawMessage(row.Value), nil
}

func (s *service) Set(ctx context.Context, owner uuid.UUID, key string, value json.RawMessage) error {
	if owner == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", apierr.ErrUnauthorized)
	}
	if err := validateValue(key, value); err != nil {
		return err
	}
	row := &types.UserSetting{
		OwnerUserID: owner,
		Key:         key,
		Value:       types.SettingValue(value),
		UpdatedAt:   time.Now(),
	}
	if err := s.settings.Upsert(dbctx.Of(ctx), row); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	s.notify(Change{Owner: owner, Key: key, Value: value})
	return nil
}

func (s *service) All(ctx context.Context, owner uuid.UUID) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	rows, err := s.settings.List(dbctx.Of(ctx), owner)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	for _, row := range rows {
		if _, known := defaults[row.Key]; !known || len(row.Value) == 0 {
			continue
		}
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}

// Subscribe registers fn for key (or Wildcard). Listeners run synchronously on
// the writer's goroutine and must not block.
func (s *service) Subscribe(key string, fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = Wildcard
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, key: key, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *service) notify(ch Change) {
	s.mu.RLock()
	matched := make([]Listener, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.key == Wildcard || sub.key == ch.Key {
			matched = append(matched, sub.fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range matched {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("settings listener panic", "key", ch.Key, "panic", r)
				}
			}()
			fn(ch)
		}()
	}
}

func (s *service) SetAPIKey(ctx context.Context, owner uuid.UUID, provider, key string) (*KeyStatus, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !knownProvider(provider) {
		return nil, apierr.BadRequest("unknown_provider", "unknown provider %q", provider)
	}
	key = strings.TrimSpace(key)
	if err := ValidateAPIKey(provider, key); err != nil {
		return nil, err
	}
	if s.sealer == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "key_storage_disabled", errors.New("api key storage is not configured"))
	}
	sealed, err := s.sealer.Seal(key)
	if err != nil {
		return nil, fmt.Errorf("seal api key: %w", err)
	}
	now := time.Now()
	row := &types.APIKey{
		Base:        types.Base{CreatedAt: now, UpdatedAt: now},
		OwnerUserID: owner,
		Provider:    provider,
		SealedKey:   sealed,
		Hint:        secrets.Hint(key),
	}
	if err := s.keys.Upsert(dbctx.Of(ctx), row); err != nil {
		return nil, fmt.Errorf("save api key: %w", err)
	}
	s.log.Info("API key stored", "provider", provider, "user_id", owner)
	s.notify(Change{Owner: owner, Key: APIKeyChangeKey(provider), Value: json.RawMessage(`{"configured":true}`)})
	return &KeyStatus{Provider: provider, Configured: true, Hint: row.Hint, UpdatedAt: &now}, nil
}

func (s *service) APIKey(ctx context.Context, owner uuid.UUID, provider string) (string, error) {
	row, err := s.keys.Get(dbctx.Of(ctx), owner, provider)
	if err != nil {
		return "", fmt.Errorf("load api key: %w", err)
	}
	if row == nil || len(row.SealedKey) == 0 {
		return "", ErrKeyNotConfigured
	}
	if s.sealer == nil {
		return "", ErrKeyNotConfigured
	}
	key, err := s.sealer.Open(row.SealedKey)
	if err != nil {
		// Sealed with a different SETTINGS_ENCRYPTION_KEY; the user must re-enter it.
		s.log.Warn("stored API key could not be opened", "provider", provider, "user_id", owner)
		return "", ErrKeyNotConfigured
	}
	return key, nil
}

func (s *service) APIKeyStatus(ctx context.Context, owner uuid.UUID) ([]KeyStatus, error) {
	rows, err := s.keys.List(dbctx.Of(ctx), owner)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	byProvider := make(map[string]*types.APIKey, len(rows))
	for _, r := range rows {
		byProvider[r.Provider] = r
	}
	out := make([]KeyStatus, 0, len(Providers))
	for _, p := range Providers {
		st := KeyStatus{Provider: p}
		if r, ok := byProvider[p]; ok {
			t := r.UpdatedAt
			st.Configured = true
			st.Hint = r.Hint
			st.UpdatedAt = &t
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (s *service) DeleteAPIKey(ctx context.Context, owner uuid.UUID, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !knownProvider(provider) {
		return apierr.BadRequest("unknown_provider", "unknown provider %q", provider)
	}
	removed, err := s.keys.Delete(dbctx.Of(ctx), owner, provider)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if removed {
		s.notify(Change{Owner: owner, Key: APIKeyChangeKey(provider), Value: json.RawMessage(`{"configured":false}`)})
	}
	return nil
}
