package diskkit

import (
	"fmt"
	"sync"
)

// DriverFactory builds a Driver from a config.
type DriverFactory func(cfg *Config) (Driver, error)

var (
	driverFactories = make(map[string]DriverFactory)
	factoryMutex    sync.RWMutex
)

// RegisterDriver registers a driver factory under a backend name.
// Driver packages call this from init; import them for side effects:
//
//	import _ "github.com/gobeaver/diskkit/driver/s3"
func RegisterDriver(name string, factory DriverFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	driverFactories[name] = factory
}

// CreateDriver builds a driver instance for cfg.Driver.
func CreateDriver(cfg *Config) (Driver, error) {
	factoryMutex.RLock()
	factory, exists := driverFactories[cfg.Driver]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("driver %s not registered", cfg.Driver)
	}

	return factory(cfg)
}
