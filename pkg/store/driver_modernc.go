//go:build !cgo_sqlite

package store

import (
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

func dataSourceName(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
}
