package keyvault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/enotes/enotes/pkg/keyvault/migrations"

	_ "modernc.org/sqlite"
)

// ErrEntryNotFound reports a missing alias or meta row in the container.
var ErrEntryNotFound = errors.New("keyvault: entry not found")

// container is the on-disk store backing the vault: a SQLite file with a
// meta table (KDF salt, password check value) and an entries table of
// sealed key material keyed by alias.
type container struct {
	db *sql.DB
}

func openContainer(path string) (*container, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("keyvault: failed to open container: %w", err)
	}

	c := &container{db: db}
	if err := c.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keyvault: failed to prepare container schema: %w", err)
	}
	return c, nil
}

func (c *container) Close() error { return c.db.Close() }

// applyMigrations brings the container schema up to date using the embedded
// migration files, so the binary carries everything it needs.
func (c *container) applyMigrations() error {
	driver, err := migratesqlite.WithInstance(c.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (c *container) meta(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM vault_meta WHERE name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: meta %q", ErrEntryNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (c *container) setMeta(ctx context.Context, name string, value []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO vault_meta (name, value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
		name, value,
	)
	return err
}

func (c *container) entry(ctx context.Context, alias string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM vault_entries WHERE alias = ?`, alias,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: alias %q", ErrEntryNotFound, alias)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *container) putEntry(ctx context.Context, alias string, data []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO vault_entries (alias, data) VALUES (?, ?)
		 ON CONFLICT (alias) DO UPDATE SET data = excluded.data`,
		alias, data,
	)
	return err
}
