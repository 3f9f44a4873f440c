package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/target/golinks/internal/core"
	"github.com/target/golinks/internal/data/pgxutil"
	"github.com/target/golinks/internal/domain/model"
)

var (
	// ErrLinkNotFound is returned when no link is registered under a name.
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkNameExists is returned when an insert collides with an existing name.
	ErrLinkNameExists = errors.New("link name already exists")
)

// LinkRepo provides database operations for links and prefix grants.
// It implements core.LinkStore on PostgreSQL via pgx.
type LinkRepo struct {
	DB *sql.DB
}

// NewLinkRepo creates a LinkRepo with the given database connection.
func NewLinkRepo(db *sql.DB) *LinkRepo {
	return &LinkRepo{DB: db}
}

// SQL query constants for static queries.
const (
	linkExistsQuery    = `SELECT EXISTS(SELECT 1 FROM links WHERE name = $1)`
	linkByNameQuery    = `SELECT name, target_url FROM links WHERE name = $1`
	linkByTargetQuery  = `SELECT name, target_url FROM links WHERE target_url = $1 LIMIT 1`
	linkInsertQuery    = `INSERT INTO links (name, target_url) VALUES ($1, $2)`
	linkUpdateQuery    = `UPDATE links SET target_url = $2 WHERE name = $1`
	grantsForUserQuery = `SELECT user_id, prefix FROM prefix_grants WHERE user_id = $1`
)

// WithTx runs fn against a transaction-scoped view of the store. The
// registration engine's existence checks and the eventual write share one
// transaction so concurrent registrations of the same name serialize on the
// links primary key.
func (r *LinkRepo) WithTx(ctx context.Context, fn func(core.LinkTx) error) error {
	return pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(&linkTx{tx: tx})
	})
}

// GetByName returns the link registered under name, or ErrLinkNotFound.
func (r *LinkRepo) GetByName(ctx context.Context, name string) (*model.Link, error) {
	var link model.Link
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, linkByNameQuery, name)
		if err != nil {
			return err
		}
		defer rows.Close()
		link, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Link])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get link by name: %w", err)
	}
	return &link, nil
}

// GrantsFor returns every prefix grant held by the user, outside any
// transaction. Used by read-only surfaces like the admin landing page.
func (r *LinkRepo) GrantsFor(ctx context.Context, userID string) ([]model.PrefixGrant, error) {
	var grants []model.PrefixGrant
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, grantsForUserQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		grants, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.PrefixGrant])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("grants for user: %w", err)
	}
	return grants, nil
}

// linkTx is the transaction-scoped implementation of core.LinkTx.
type linkTx struct {
	tx pgx.Tx
}

func (t *linkTx) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, linkExistsQuery, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("link exists: %w", err)
	}
	return exists, nil
}

func (t *linkTx) FindByTarget(ctx context.Context, url string) (*model.Link, error) {
	rows, err := t.tx.Query(ctx, linkByTargetQuery, url)
	if err != nil {
		return nil, fmt.Errorf("find link by target: %w", err)
	}
	defer rows.Close()
	link, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Link])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find link by target: %w", err)
	}
	return &link, nil
}

func (t *linkTx) Insert(ctx context.Context, link model.Link) error {
	if _, err := t.tx.Exec(ctx, linkInsertQuery, link.Name, link.TargetURL); err != nil {
		return fmt.Errorf("insert link: %w", mapUniqueViolation(err))
	}
	return nil
}

func (t *linkTx) Update(ctx context.Context, link model.Link) error {
	ct, err := t.tx.Exec(ctx, linkUpdateQuery, link.Name, link.TargetURL)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update link: %w", ErrLinkNotFound)
	}
	return nil
}

func (t *linkTx) GrantsFor(ctx context.Context, userID string) ([]model.PrefixGrant, error) {
	rows, err := t.tx.Query(ctx, grantsForUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("grants for user: %w", err)
	}
	defer rows.Close()
	grants, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.PrefixGrant])
	if err != nil {
		return nil, fmt.Errorf("grants for user: %w", err)
	}
	return grants, nil
}

// mapUniqueViolation converts a primary-key collision into ErrLinkNameExists
// so a concurrent writer losing the insert race observes the same conflict
// as one that lost the pre-write existence check.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrLinkNameExists
	}
	return err
}
