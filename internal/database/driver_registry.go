package database

import (
	"sort"
	"sync"

	"datascout/internal/database/drivers"
	"datascout/internal/database/drivers/file_system"
	"datascout/internal/database/drivers/traditional"
	"datascout/internal/model"
	"datascout/internal/utils"
)

// DriverRegistry maps each supported engine kind to its driver factory.
// The set is closed: a new engine is a new Driver implementation registered here.
type DriverRegistry struct {
	drivers map[model.EngineKind]func() drivers.Driver
	mutex   sync.RWMutex
}

// NewDriverRegistry creates a registry holding the four supported engines
func NewDriverRegistry() *DriverRegistry {
	registry := &DriverRegistry{
		drivers: make(map[model.EngineKind]func() drivers.Driver),
	}

	registry.registerDrivers()

	return registry
}

func (dr *DriverRegistry) registerDrivers() {
	dr.mutex.Lock()
	defer dr.mutex.Unlock()

	dr.register(model.EngineSQLite, func() drivers.Driver {
		return file_system.NewSQLiteDriver()
	})
	dr.register(model.EngineMySQL, func() drivers.Driver {
		return traditional.NewMySQLDriver()
	})
	dr.register(model.EnginePostgreSQL, func() drivers.Driver {
		return traditional.NewPostgreSQLDriver()
	})
	dr.register(model.EngineSQLServer, func() drivers.Driver {
		return traditional.NewSQLServerDriver()
	})
}

func (dr *DriverRegistry) register(kind model.EngineKind, factory func() drivers.Driver) {
	dr.drivers[kind] = factory
}

// GetDriver creates a driver for the specified engine kind
func (dr *DriverRegistry) GetDriver(kind model.EngineKind) (drivers.Driver, error) {
	dr.mutex.RLock()
	factory, exists := dr.drivers[kind]
	dr.mutex.RUnlock()

	if !exists {
		return nil, utils.NewUnsupportedEngineError(string(kind))
	}

	return factory(), nil
}

// ListDrivers returns all supported engine kinds, sorted
func (dr *DriverRegistry) ListDrivers() []model.EngineKind {
	dr.mutex.RLock()
	defer dr.mutex.RUnlock()

	kinds := make([]model.EngineKind, 0, len(dr.drivers))
	for kind := range dr.drivers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// IsSupported checks if an engine kind is supported
func (dr *DriverRegistry) IsSupported(kind model.EngineKind) bool {
	dr.mutex.RLock()
	_, exists := dr.drivers[kind]
	dr.mutex.RUnlock()

	return exists
}

// GetDriverCategory returns the category for an engine kind
func (dr *DriverRegistry) GetDriverCategory(kind model.EngineKind) (drivers.DriverCategory, error) {
	driver, err := dr.GetDriver(kind)
	if err != nil {
		return "", err
	}

	return driver.GetCategory(), nil
}
