//go:build cgo_sqlite

package store

import (
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

func dataSourceName(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeout.Milliseconds())
}
