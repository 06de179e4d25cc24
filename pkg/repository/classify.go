package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"os"
	"syscall"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Classifier reports whether a native storage error means the store could
// not be reached, as opposed to the statement itself failing.
type Classifier func(error) bool

// IsConnectivityError is the default Classifier. It recognises closed or
// broken connections, network errors, filesystem level failures and the
// SQLite result codes that mean the database file is unusable.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return true
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_NOTADB,
			sqlite3.SQLITE_BUSY,
			sqlite3.SQLITE_LOCKED,
			sqlite3.SQLITE_FULL,
			sqlite3.SQLITE_PERM:
			return true
		}
	}
	return false
}
