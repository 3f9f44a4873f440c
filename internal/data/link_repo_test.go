package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/golinks/internal/core"
	"github.com/target/golinks/internal/domain/model"
	"github.com/target/golinks/internal/testutil"
)

func insertGrant(t *testing.T, db *sql.DB, userID, prefix string) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO prefix_grants (user_id, prefix) VALUES ($1, $2)", userID, prefix)
	require.NoError(t, err)
}

func TestLinkRepo_InsertAndGetByName(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(tx core.LinkTx) error {
			return tx.Insert(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/docs"})
		})
		require.NoError(t, err)

		link, err := repo.GetByName(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, "docs", link.Name)
		assert.Equal(t, "https://example.com/docs", link.TargetURL)
	})
}

func TestLinkRepo_GetByName_NotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)

		_, err := repo.GetByName(context.Background(), "missing")
		require.ErrorIs(t, err, ErrLinkNotFound)
	})
}

func TestLinkRepo_InsertDuplicateMapsToNameExists(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(tx core.LinkTx) error {
			return tx.Insert(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/docs"})
		})
		require.NoError(t, err)

		err = repo.WithTx(ctx, func(tx core.LinkTx) error {
			return tx.Insert(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/other"})
		})
		require.ErrorIs(t, err, ErrLinkNameExists)
	})
}

func TestLinkRepo_TxExistsAndFindByTarget(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(tx core.LinkTx) error {
			if insertErr := tx.Insert(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/docs"}); insertErr != nil {
				return insertErr
			}

			exists, existsErr := tx.Exists(ctx, "docs")
			require.NoError(t, existsErr)
			assert.True(t, exists)

			exists, existsErr = tx.Exists(ctx, "missing")
			require.NoError(t, existsErr)
			assert.False(t, exists)

			link, findErr := tx.FindByTarget(ctx, "https://example.com/docs")
			require.NoError(t, findErr)
			require.NotNil(t, link)
			assert.Equal(t, "docs", link.Name)

			// Exact equality only; a trailing slash is a different URL.
			link, findErr = tx.FindByTarget(ctx, "https://example.com/docs/")
			require.NoError(t, findErr)
			assert.Nil(t, link)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestLinkRepo_TxUpdate(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(tx core.LinkTx) error {
			return tx.Insert(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/old"})
		})
		require.NoError(t, err)

		err = repo.WithTx(ctx, func(tx core.LinkTx) error {
			return tx.Update(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/new"})
		})
		require.NoError(t, err)

		link, err := repo.GetByName(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/new", link.TargetURL)
	})
}

func TestLinkRepo_TxUpdate_MissingName(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(tx core.LinkTx) error {
			return tx.Update(ctx, model.Link{Name: "missing", TargetURL: "https://example.com"})
		})
		require.ErrorIs(t, err, ErrLinkNotFound)
	})
}

func TestLinkRepo_RollbackOnError(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(tx core.LinkTx) error {
			if insertErr := tx.Insert(ctx, model.Link{Name: "docs", TargetURL: "https://example.com/docs"}); insertErr != nil {
				return insertErr
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		_, err = repo.GetByName(ctx, "docs")
		require.ErrorIs(t, err, ErrLinkNotFound, "failed transaction must leave no rows behind")
	})
}

func TestLinkRepo_GrantsFor(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewLinkRepo(db)
		ctx := context.Background()

		insertGrant(t, db, "user-1", "team-")
		insertGrant(t, db, "user-1", "docs-")
		insertGrant(t, db, "user-2", "")

		grants, err := repo.GrantsFor(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, grants, 2)

		grants, err = repo.GrantsFor(ctx, "user-2")
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Empty(t, grants[0].Prefix)

		grants, err = repo.GrantsFor(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, grants)

		err = repo.WithTx(ctx, func(tx core.LinkTx) error {
			txGrants, txErr := tx.GrantsFor(ctx, "user-1")
			require.NoError(t, txErr)
			assert.Len(t, txGrants, 2)
			return nil
		})
		require.NoError(t, err)
	})
}
