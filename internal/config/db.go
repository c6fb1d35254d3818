package config

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"simplecrud/internal/utils"
)

const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var (
	DB   *sql.DB
	dbMu sync.Mutex
)

func defaultDSN(driver string) string {
	switch driver {
	case DriverSQLite:
		return "file:simplecrud.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	case DriverPostgres:
		return "postgres://postgres@127.0.0.1:5432/simplecrud?sslmode=disable"
	default:
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
			"root",
			"",
			"127.0.0.1:3306",
			"simplecrud",
		)
	}
}

// OpenDB opens and pings a pool for driver. An empty dsn selects the local default.
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = defaultDSN(driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// single writer; also keeps :memory: databases on one connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(ctx context.Context, env Env) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB, nil
	}
	db, err := OpenDB(ctx, env.DBDriver, env.DBDSN)
	if err != nil {
		return nil, err
	}
	DB = db
	utils.LogEvent("", "db", "connect", "database connected: "+env.DBDriver)
	return DB, nil
}

// EnsureDB pings db, or the shared connection when db is nil.
func EnsureDB(ctx context.Context, db *sql.DB) error {
	if db == nil {
		dbMu.Lock()
		db = DB
		dbMu.Unlock()
	}

	if db == nil {
		return fmt.Errorf("database not connected")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(pingCtx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
