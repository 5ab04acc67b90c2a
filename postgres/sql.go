// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/cloudfoam/go-occi/occi"
)

// PostgreSQL error codes this package reacts to.
const (
	serializationFailure = "40001"
	uniqueViolation      = "23505"
)

// withTx calls some function with a database/sql transaction object.
// If f panics or returns a non-nil error, rolls the transaction back;
// otherwise commits it before returning.  Returns the error value
// from f, or some other error related to transaction management.
// Serialization failures roll back and retry.
func withTx(b *pgBackend, readOnly bool, f func(*sql.Tx) error) (err error) {
	var (
		tx   *sql.Tx
		done bool
	)
	defer func() {
		if tx != nil && !done {
			err2 := tx.Rollback()
			if err == nil && err2 != nil {
				err = occi.ErrBackendFailure{Err: err2}
			}
		}
	}()

	for {
		tx, err = b.db.Begin()
		if err != nil {
			return occi.ErrBackendFailure{Err: err}
		}

		level := "REPEATABLE READ"
		if readOnly {
			level += " READ ONLY"
		}
		_, err = tx.Exec("SET TRANSACTION ISOLATION LEVEL " + level)
		if err != nil {
			return occi.ErrBackendFailure{Err: err}
		}

		err = f(tx)

		if err == nil {
			err = tx.Commit()
			if err != nil {
				err = occi.ErrBackendFailure{Err: err}
			}
			done = true
		}

		if pqerr, isPQ := rootCause(err).(*pq.Error); isPQ && pqerr.Code == serializationFailure {
			err = tx.Rollback()
			if err == sql.ErrTxDone {
				// Wanted to roll back, already rolled
				// back; not an error.
				err = nil
			} else if err != nil {
				return occi.ErrBackendFailure{Err: err}
			}
			tx = nil
			done = false
			continue
		}

		break
	}
	return
}

// rootCause unwraps a backend failure to the database error inside.
func rootCause(err error) error {
	if failure, wrapped := err.(occi.ErrBackendFailure); wrapped {
		return failure.Err
	}
	return err
}

// scanRows runs over an SQL result set and calls a function for each
// row.  The callback function should only call the Scan() method on
// the provided Rows object; this function takes care of advancing
// through the rows and closing the iterator.
func scanRows(rows *sql.Rows, f func() error) (err error) {
	var done bool
	defer func() {
		if !done {
			err2 := rows.Close()
			if err == nil && err2 != nil {
				err = occi.ErrBackendFailure{Err: err2}
			}
		}
	}()

	for rows.Next() {
		err = f()
		if err != nil {
			return
		}
	}
	done = true
	err = rows.Err()
	if err != nil {
		err = occi.ErrBackendFailure{Err: err}
	}
	return
}
