package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting find-or-create run standalone or inside a ticket transaction.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Postgres error classes we act on. Uniqueness and dependency rules live in
// the schema; the repositories translate violations into domain codes so the
// check happens at write time instead of a racy read-then-write.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
