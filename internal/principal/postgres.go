package principal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// KeyStore abstracts DB queries for testability.
type KeyStore interface {
	LookupByPrefix(ctx context.Context, prefix string) (*keyRow, error)
}

type keyRow struct {
	PrincipalID  string
	APIKeyHash   string
	Super        bool
	Capabilities string // JSONB array as string
}

// sqlKeyStore is the real implementation using *sql.DB.
type sqlKeyStore struct {
	db *sql.DB
}

func (s *sqlKeyStore) LookupByPrefix(ctx context.Context, prefix string) (*keyRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT principal_id, api_key_hash, super, capabilities
		FROM api_keys
		WHERE api_key_prefix = $1
	`, prefix)

	var r keyRow
	if err := row.Scan(&r.PrincipalID, &r.APIKeyHash, &r.Super, &r.Capabilities); err != nil {
		return nil, err
	}
	return &r, nil
}

// PostgresResolver validates API keys against the api_keys table.
type PostgresResolver struct {
	store  KeyStore
	cache  *Cache
	logger *zap.Logger
}

// PostgresResolverConfig configures the PostgresResolver.
type PostgresResolverConfig struct {
	DB       *sql.DB
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewPostgresResolver creates a new PostgresResolver.
func NewPostgresResolver(cfg PostgresResolverConfig) *PostgresResolver {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	return &PostgresResolver{
		store:  &sqlKeyStore{db: cfg.DB},
		cache:  NewCache(ttl),
		logger: cfg.Logger,
	}
}

// NewPostgresResolverWithStore creates a resolver with a custom store (for testing).
func NewPostgresResolverWithStore(store KeyStore, cacheTTL time.Duration, logger *zap.Logger) *PostgresResolver {
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Second
	}
	return &PostgresResolver{
		store:  store,
		cache:  NewCache(cacheTTL),
		logger: logger,
	}
}

func (r *PostgresResolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	cacheResult := r.cache.Get(token)
	if cacheResult.Hit {
		if cacheResult.NeedsRefresh {
			go r.refreshInBackground(token)
		}
		return cacheResult.Principal, nil
	}

	// Cache miss — resolve synchronously
	p, err := r.resolveFromDB(ctx, token)
	if err != nil {
		return nil, err
	}

	r.cache.Set(token, p)
	return p, nil
}

func (r *PostgresResolver) resolveFromDB(ctx context.Context, token string) (*Principal, error) {
	if len(token) < 8 {
		return nil, ErrUnauthenticated
	}
	prefix := token[:8]

	row, err := r.store.LookupByPrefix(ctx, prefix)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolveFromDB: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.APIKeyHash), []byte(token)); err != nil {
		return nil, ErrUnauthenticated
	}

	p := &Principal{
		ID:    row.PrincipalID,
		Super: row.Super,
	}
	if row.Capabilities != "" && row.Capabilities != "[]" {
		if err := json.Unmarshal([]byte(row.Capabilities), &p.Capabilities); err != nil {
			return nil, fmt.Errorf("resolveFromDB: capabilities: %w", err)
		}
	}
	return p, nil
}

func (r *PostgresResolver) refreshInBackground(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := r.resolveFromDB(ctx, token)
	if err != nil {
		r.logger.Warn("background principal refresh failed", zap.Error(err))
		return
	}
	r.cache.Set(token, p)
}
