package dbutil

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DuplicateKeyErrorCode = "23505"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// WrapError maps pgx errors onto the package sentinels, keeping the original in the chain.
func WrapError(err error) error {
	var pgErr *pgconn.PgError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == DuplicateKeyErrorCode:
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// ExpectRows returns ErrNotFound when an UPDATE/DELETE touched nothing.
func ExpectRows(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return WrapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE wildcards so s matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern is an ILIKE pattern matching s anywhere, or "" for an empty s.
func ContainsPattern(s string) string {
	if s == "" {
		return ""
	}
	return "%" + EscapeLike(s) + "%"
}

// Connect opens a pool and checks it can reach the server.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
