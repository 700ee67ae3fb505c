package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrReferenced is returned when a delete or insert violates a foreign key.
var ErrReferenced = errors.New("repository: row is referenced by other rows")

// translateError maps driver foreign key violations to ErrReferenced.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isForeignKeyViolation(err) {
		return ErrReferenced
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1451: cannot delete parent row, 1452: cannot add child row
		return myErr.Number == 1451 || myErr.Number == 1452
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}

	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
