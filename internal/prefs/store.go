package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	md2watch "github.com/alnah/go-md2watch"
)

// Store loads and saves preferences by Telegram user id.
// Load returns Defaults for unknown users.
type Store interface {
	Load(ctx context.Context, userID int64) (Preferences, error)
	Save(ctx context.Context, userID int64, p Preferences) error
}

// Compile-time interface checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// MemoryStore keeps preferences in process memory. Preferences are lost
// on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]Preferences
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]Preferences)}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, userID int64) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.users[userID]; ok {
		return p, nil
	}
	return Defaults(), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, userID int64, p Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = p
	return nil
}

// KeyPrefix namespaces preference hashes in Redis.
const KeyPrefix = "md2watch:prefs:"

// Hash fields.
const (
	fieldDevice     = "device"
	fieldTheme      = "theme"
	fieldFontScale  = "font_scale"
	fieldPadding    = "padding"
	fieldLayout     = "layout"
	fieldTemplate   = "template"
	fieldFontBody   = "font_body"
	fieldFontHeader = "font_header"
	fieldFontCode   = "font_code"
)

// RedisStore keeps one hash per user, refreshed to ttl on every save.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisStore returns a store on rdb. A zero ttl keeps preferences forever.
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(userID int64) string {
	return KeyPrefix + strconv.FormatInt(userID, 10)
}

// Load implements Store. Fields that are missing or unreadable keep their
// default value.
func (s *RedisStore) Load(ctx context.Context, userID int64) (Preferences, error) {
	fields, err := s.rdb.HGetAll(ctx, key(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Preferences{}, fmt.Errorf("%w: load %d: %w", ErrStore, userID, err)
	}
	return decode(fields), nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, userID int64, p Preferences) error {
	k := key(userID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, encode(p))
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save %d: %w", ErrStore, userID, err)
	}
	return nil
}

func encode(p Preferences) map[string]any {
	return map[string]any{
		fieldDevice:     p.Device,
		fieldTheme:      string(p.Theme),
		fieldFontScale:  strconv.FormatFloat(p.FontScale, 'f', -1, 64),
		fieldPadding:    strconv.Itoa(p.Padding),
		fieldLayout:     string(p.Layout),
		fieldTemplate:   string(p.Template),
		fieldFontBody:   p.Fonts.Body,
		fieldFontHeader: p.Fonts.Header,
		fieldFontCode:   p.Fonts.Code,
	}
}

func decode(fields map[string]string) Preferences {
	p := Defaults()
	if v, ok := fields[fieldDevice]; ok {
		if _, err := md2watch.LookupDevice(v); err == nil {
			p.Device = v
		}
	}
	if t, err := md2watch.ParseTheme(fields[fieldTheme]); err == nil {
		p.Theme = t
	}
	if v, err := strconv.ParseFloat(fields[fieldFontScale], 64); err == nil && v > 0 && v <= md2watch.MaxFontScale {
		p.FontScale = v
	}
	if v, err := strconv.Atoi(fields[fieldPadding]); err == nil && ValidatePadding(v) == nil {
		p.Padding = v
	}
	if l, err := md2watch.ParseLayout(fields[fieldLayout]); err == nil {
		p.Layout = l
	}
	if t, err := md2watch.ParseTemplate(fields[fieldTemplate]); err == nil {
		p.Template = t
	}
	fonts := md2watch.Fonts{
		Body:   fields[fieldFontBody],
		Header: fields[fieldFontHeader],
		Code:   fields[fieldFontCode],
	}
	if fonts.Validate() == nil {
		p.Fonts = fonts
	}
	return p
}
