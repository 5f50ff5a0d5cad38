package diskkit

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	// ErrDiskNotFound is returned when no disk is registered under a name.
	ErrDiskNotFound = errors.New("disk not found")
	// ErrDiskExists is returned when registering over an existing name.
	ErrDiskExists = errors.New("disk already registered")
	// ErrNilDriver is returned when registering a nil driver.
	ErrNilDriver = errors.New("driver cannot be nil")
)

// Manager resolves logical disk names to configured driver instances.
// Resolution happens once at registration; per-call dispatch is a map
// lookup and calls are forwarded unchanged by the returned [Disk].
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]*Disk
	defaultName string
	logger      *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger used for registration events.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		disks:  make(map[string]*Disk),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromConfig builds a manager with a single disk created from cfg,
// registered under the backend name and marked default.
func FromConfig(cfg *Config, opts ...ManagerOption) (*Manager, error) {
	m := NewManager(opts...)

	drv, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s driver: %w", cfg.Driver, err)
	}
	if err := m.Use(cfg.Driver, drv); err != nil {
		return nil, err
	}
	m.SetDefault(cfg.Driver)

	return m, nil
}

// Use registers a driver under a logical disk name. The first disk
// registered becomes the default.
func (m *Manager) Use(name string, driver Driver) error {
	if driver == nil {
		return ErrNilDriver
	}
	if name == "" {
		return fmt.Errorf("disk name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.disks[name]; exists {
		return fmt.Errorf("%w: %s", ErrDiskExists, name)
	}

	m.disks[name] = NewDisk(name, driver)
	if m.defaultName == "" {
		m.defaultName = name
	}

	m.logger.Debug("disk registered", "disk", name)

	return nil
}

// Disk returns the disk registered under name.
func (m *Manager) Disk(name string) (*Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, exists := m.disks[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDiskNotFound, name)
	}
	return d, nil
}

// Default returns the default disk.
func (m *Manager) Default() (*Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.defaultName == "" {
		return nil, ErrDiskNotFound
	}
	return m.disks[m.defaultName], nil
}

// SetDefault marks an already-registered disk as the default.
func (m *Manager) SetDefault(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.disks[name]; exists {
		m.defaultName = name
	}
}

// Remove unregisters a disk.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.disks[name]; !exists {
		return fmt.Errorf("%w: %s", ErrDiskNotFound, name)
	}
	delete(m.disks, name)
	if m.defaultName == name {
		m.defaultName = ""
	}
	return nil
}

// Disks returns all registered disk names, sorted.
func (m *Manager) Disks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.disks))
	for name := range m.disks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
