package traditional

import (
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"datascout/internal/database/drivers"
	"datascout/internal/model"
)

// MySQLDriver implements Driver for MySQL/MariaDB
type MySQLDriver struct {
	base *drivers.DriverBase
}

// NewMySQLDriver creates a new MySQL driver instance
func NewMySQLDriver() *MySQLDriver {
	return &MySQLDriver{
		base: drivers.NewDriverBase(model.EngineMySQL, drivers.CategoryRelational),
	}
}

func (d *MySQLDriver) Kind() model.EngineKind {
	return d.base.Kind()
}

func (d *MySQLDriver) GetDatabaseTypeName() string {
	return d.base.GetDatabaseTypeName()
}

func (d *MySQLDriver) GetCategory() drivers.DriverCategory {
	return d.base.GetCategory()
}

func (d *MySQLDriver) GetDefaultPort() int {
	return 3306
}

func (d *MySQLDriver) Validate(params *model.ConnectionParams) error {
	return validateNetworkParams(d.Kind(), params)
}

// BuildDSN builds a go-sql-driver DSN: user:password@tcp(host:port)/database?params
func (d *MySQLDriver) BuildDSN(params *model.ConnectionParams, timeout time.Duration) string {
	port := params.Port
	if port == 0 {
		port = d.GetDefaultPort()
	}

	timeout = time.Duration(drivers.TimeoutSeconds(timeout)) * time.Second

	cfg := gomysql.NewConfig()
	cfg.User = params.Username
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(params.Host, strconv.Itoa(port))
	cfg.DBName = params.Database
	cfg.Timeout = timeout
	cfg.ReadTimeout = timeout
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Dialector skips the server version probe so opening stays bounded by the DSN timeouts
func (d *MySQLDriver) Dialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                       dsn,
		SkipInitializeWithVersion: true,
	})
}
