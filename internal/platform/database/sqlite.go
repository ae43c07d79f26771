// File: internal/platform/database/sqlite.go
package database

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is a go-sqlite3 driver with the math functions used by
// the great-circle distance predicate registered on every connection.
const SQLiteDriverName = "sqlite3_geo"

var registerSQLiteOnce sync.Once

func registerSQLiteDriver() {
	registerSQLiteOnce.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				unary := map[string]func(float64) float64{
					"radians": func(v float64) float64 { return v * math.Pi / 180 },
					"sin":     math.Sin,
					"cos":     math.Cos,
					"asin":    math.Asin,
					"sqrt":    math.Sqrt,
				}
				for name, fn := range unary {
					fn := fn
					if err := conn.RegisterFunc(name, func(v interface{}) float64 { return fn(toFloat(v)) }, true); err != nil {
						return fmt.Errorf("register sqlite function %s: %w", name, err)
					}
				}
				return conn.RegisterFunc("power", func(base, exp interface{}) float64 {
					return math.Pow(toFloat(base), toFloat(exp))
				}, true)
			},
		})
	})
}

// toFloat accepts whatever SQLite hands a generic callback argument.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(n), 64)
		return f
	default:
		return 0
	}
}

// OpenSQLite opens a SQLite database through the geo-enabled driver.
// SQLite allows a single writer, so the pool is capped at one connection.
func OpenSQLite(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	registerSQLiteDriver()
	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
