package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"datascout/internal/logging"
)

// InitStore opens the annotation store described by cfg, creating the database
// first when cfg.CreateDatabase is set. The store structure is not migrated here.
func InitStore(ctx context.Context, cfg StoreConfig, log *zap.Logger, logLevel string) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.CreateDatabase {
		if err := EnsureDatabase(ctx, cfg); err != nil {
			return nil, err
		}
	}

	dialector, err := storeDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormLogger(log, logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Dialect == DialectSQLite {
		// one writer at a time; the busy timeout covers readers
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	log.Info("annotation store connection established",
		zap.String("dialect", cfg.Dialect),
		zap.String("database", storeName(cfg)))
	return db, nil
}

func storeDialector(cfg StoreConfig) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case DialectPostgres:
		return postgres.Open(postgresDSN(cfg, cfg.Database)), nil
	case DialectMySQL:
		return mysql.Open(mysqlDSN(cfg, cfg.Database)), nil
	case DialectSQLite:
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	default:
		return nil, fmt.Errorf("unsupported store dialect %q", cfg.Dialect)
	}
}

func postgresDSN(cfg StoreConfig, database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/" + database,
	}
	q := url.Values{}
	ssl := cfg.SSL
	if ssl == "" || ssl == "false" {
		ssl = "disable"
	}
	q.Set("sslmode", ssl)
	u.RawQuery = q.Encode()
	return u.String()
}

func mysqlDSN(cfg StoreConfig, database string) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func storeName(cfg StoreConfig) string {
	if cfg.Dialect == DialectSQLite {
		return cfg.Path
	}
	return cfg.Database
}
