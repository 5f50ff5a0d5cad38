package diskkit

import (
	"bytes"
	"context"
	"io"
	"iter"
	"sort"
	"strings"
	"time"
)

// mockDriver is a minimal map-backed driver for exercising the facade
// types without pulling in a real backend.
type mockDriver struct {
	files    map[string][]byte
	signErr  error
	baseURL  string
	moveErr  error
	putCalls int
}

func newMockDriver() *mockDriver {
	return &mockDriver{files: make(map[string][]byte), baseURL: "https://cdn.test"}
}

func (m *mockDriver) Put(ctx context.Context, path string, content io.Reader, opts ...PutOption) error {
	m.putCalls++
	data, err := io.ReadAll(content)
	if err != nil {
		return WrapErr("put", path, ErrWrite, err)
	}
	m.files[NormalizePath(path)] = data
	return nil
}

func (m *mockDriver) Get(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.files[NormalizePath(path)]
	if !ok {
		return nil, NewPathError("get", path, ErrNotFound)
	}
	return data, nil
}

func (m *mockDriver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := m.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockDriver) Stat(ctx context.Context, path string) (StatResult, error) {
	data, err := m.Get(ctx, path)
	if err != nil {
		return StatResult{}, err
	}
	return StatResult{Size: int64(len(data)), Modified: time.Now()}, nil
}

func (m *mockDriver) Exists(ctx context.Context, path string) (ExistsResult, error) {
	_, ok := m.files[NormalizePath(path)]
	return ExistsResult{Exists: ok}, nil
}

func (m *mockDriver) Delete(ctx context.Context, path string) (DeleteResult, error) {
	key := NormalizePath(path)
	_, ok := m.files[key]
	delete(m.files, key)
	return DeleteResult{WasDeleted: ok}, nil
}

func (m *mockDriver) Copy(ctx context.Context, src, dst string) error {
	data, err := m.Get(ctx, src)
	if err != nil {
		return err
	}
	m.files[NormalizePath(dst)] = data
	return nil
}

func (m *mockDriver) Move(ctx context.Context, src, dst string) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	if err := m.Copy(ctx, src, dst); err != nil {
		return err
	}
	delete(m.files, NormalizePath(src))
	return nil
}

func (m *mockDriver) URL(path string) string {
	return m.baseURL + "/" + NormalizePath(path)
}

func (m *mockDriver) SignedURL(ctx context.Context, path string, expiry time.Duration) (SignedURLResult, error) {
	if m.signErr != nil {
		return SignedURLResult{}, m.signErr
	}
	return SignedURLResult{SignedURL: m.URL(path) + "?sig=x", Expiry: expiry}, nil
}

func (m *mockDriver) FlatList(ctx context.Context, prefix string) iter.Seq2[FileEntry, error] {
	p := NormalizePrefix(prefix)
	var keys []string
	for key := range m.files {
		if strings.HasPrefix(key, p) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return func(yield func(FileEntry, error) bool) {
		for _, key := range keys {
			if !yield(FileEntry{Path: key}, nil) {
				return
			}
		}
	}
}

var _ Driver = (*mockDriver)(nil)
