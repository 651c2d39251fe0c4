package traditional

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"datascout/internal/database/drivers"
	"datascout/internal/model"
)

// PostgreSQLDriver implements Driver for PostgreSQL
type PostgreSQLDriver struct {
	base *drivers.DriverBase
}

// NewPostgreSQLDriver creates a new PostgreSQL driver instance
func NewPostgreSQLDriver() *PostgreSQLDriver {
	return &PostgreSQLDriver{
		base: drivers.NewDriverBase(model.EnginePostgreSQL, drivers.CategoryRelational),
	}
}

func (d *PostgreSQLDriver) Kind() model.EngineKind {
	return d.base.Kind()
}

func (d *PostgreSQLDriver) GetDatabaseTypeName() string {
	return d.base.GetDatabaseTypeName()
}

func (d *PostgreSQLDriver) GetCategory() drivers.DriverCategory {
	return d.base.GetCategory()
}

func (d *PostgreSQLDriver) GetDefaultPort() int {
	return 5432
}

func (d *PostgreSQLDriver) Validate(params *model.ConnectionParams) error {
	return validateNetworkParams(d.Kind(), params)
}

// BuildDSN builds a postgres:// URL with connect_timeout set
func (d *PostgreSQLDriver) BuildDSN(params *model.ConnectionParams, timeout time.Duration) string {
	port := params.Port
	if port == 0 {
		port = d.GetDefaultPort()
	}

	query := url.Values{}
	query.Set("sslmode", "disable")
	query.Set("connect_timeout", strconv.Itoa(drivers.TimeoutSeconds(timeout)))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(params.Username, params.Password),
		Host:     net.JoinHostPort(params.Host, strconv.Itoa(port)),
		Path:     "/" + params.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (d *PostgreSQLDriver) Dialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}
