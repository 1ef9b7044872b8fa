package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	_ "github.com/lib/pq"

	"github.com/warriorguo/reteflow/store"
)

var (
	_ store.Store = &pgStore{}
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // disable, require, verify-ca, verify-full
}

func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "reteflow",
		SSLMode:  "disable",
	}
}

/**
 * pgStore persists blobs in a single reteflow_store table keyed by
 * prefix and key. The server's run archive lives here when history
 * must survive restarts.
 */
type pgStore struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS reteflow_store (
		prefix VARCHAR(255) NOT NULL,
		key VARCHAR(255) NOT NULL,
		value BYTEA,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (prefix, key)
	);

	CREATE INDEX IF NOT EXISTS idx_reteflow_store_prefix ON reteflow_store(prefix);
`

// connectTimeout bounds the first ping so a wrong host fails fast
// instead of hanging server startup.
const connectTimeout = 5 * time.Second

func NewPostgresStore(config *Config) (store.Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, errors.Annotatef(err, "open postgres %s:%d", config.Host, config.Port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Annotatef(err, "ping postgres %s:%d", config.Host, config.Port)
	}

	s := &pgStore{db: db}
	if err := s.initTable(ctx); err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}
	return s, nil
}

// NewPostgresStoreWithDB wraps an existing connection, for callers
// that manage pooling themselves.
func NewPostgresStoreWithDB(db *sql.DB) (store.Store, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	s := &pgStore{db: db}
	if err := s.initTable(context.Background()); err != nil {
		return nil, errors.Trace(err)
	}
	return s, nil
}

func (p *pgStore) initTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return errors.Annotatef(err, "create reteflow_store table")
}

// Get returns the stored value, or nil without error when the key was
// never written.
func (p *pgStore) Get(ctx context.Context, prefix, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM reteflow_store WHERE prefix = $1 AND key = $2`,
		prefix, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "get %s%s", prefix, key)
	}
	return value, nil
}

// Set writes or replaces one document.
func (p *pgStore) Set(ctx context.Context, prefix, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO reteflow_store (prefix, key, value, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (prefix, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`,
		prefix, key, value)
	return errors.Annotatef(err, "set %s%s", prefix, key)
}

func (p *pgStore) Remove(ctx context.Context, prefix, key string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM reteflow_store WHERE prefix = $1 AND key = $2`,
		prefix, key)
	return errors.Annotatef(err, "remove %s%s", prefix, key)
}

/**
 * List walks every key under prefix in lexical order. The iterator
 * returning false stops the walk early, rows opened for it are
 * released before returning.
 */
func (p *pgStore) List(ctx context.Context, prefix string, iterator func(key string) bool) error {
	rows, err := p.db.QueryContext(ctx,
		`SELECT key FROM reteflow_store WHERE prefix = $1 ORDER BY key`, prefix)
	if err != nil {
		return errors.Annotatef(err, "list %s", prefix)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return errors.Trace(err)
		}
		if !iterator(key) {
			return nil
		}
	}
	return errors.Trace(rows.Err())
}

func (p *pgStore) Close() error {
	if p.db != nil {
		return errors.Trace(p.db.Close())
	}
	return nil
}

// DSN renders the config in lib/pq keyword form.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Validate checks the settings a connection attempt would trip over.
// An empty SSLMode is filled in as disable.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.User == "" {
		return errors.New("user cannot be empty")
	}
	if c.Database == "" {
		return errors.New("database cannot be empty")
	}
	switch c.SSLMode {
	case "":
		c.SSLMode = "disable"
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return errors.Errorf("invalid sslmode: %s", c.SSLMode)
	}
	return nil
}

/**
 * ParseDSN reads a lib/pq keyword string back into a Config. Keywords
 * this Config does not model are skipped so connection strings
 * carrying extra options still parse.
 */
func ParseDSN(dsn string) (*Config, error) {
	config := DefaultConfig()
	for _, part := range strings.Fields(dsn) {
		name, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch name {
		case "host":
			config.Host = value
		case "port":
			if port, err := strconv.Atoi(value); err == nil {
				config.Port = port
			}
		case "user":
			config.User = value
		case "password":
			config.Password = value
		case "dbname":
			config.Database = value
		case "sslmode":
			config.SSLMode = value
		}
	}
	return config, errors.Trace(config.Validate())
}
