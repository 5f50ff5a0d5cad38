package local

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gobeaver/diskkit"
)

// Watch implements diskkit.CanWatch using inotify-style filesystem
// events. The token fires on the first create, write, remove or rename
// under prefix; the underlying watcher is torn down once it fires or
// the context is cancelled.
func (d *Driver) Watch(ctx context.Context, prefix string) (diskkit.ChangeToken, error) {
	p := diskkit.NormalizePrefix(prefix)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, diskkit.WrapErr("watch", prefix, diskkit.ErrUnavailable, err)
	}

	// fsnotify does not recurse, so every existing directory under the
	// root is registered up front and new ones as they appear.
	err = filepath.WalkDir(d.root, func(fp string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil
		}
		return fsw.Add(fp)
	})
	if err != nil {
		fsw.Close()
		return nil, diskkit.WrapErr("watch", prefix, diskkit.ErrUnavailable, err)
	}

	token := diskkit.NewCallbackChangeToken()

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) {
					// New directories must be tracked before anything is
					// written into them.
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						fsw.Add(event.Name)
					}
				}
				key := d.key(event.Name)
				if strings.HasPrefix(key, p) && event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					token.SignalChange()
					return
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return token, nil
}
