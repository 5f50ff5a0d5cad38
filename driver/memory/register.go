package memory

import (
	"github.com/gobeaver/diskkit"
)

func init() {
	diskkit.RegisterDriver("memory", func(cfg *diskkit.Config) (diskkit.Driver, error) {
		return New(), nil
	})
}
