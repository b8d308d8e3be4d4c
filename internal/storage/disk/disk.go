// disk - хранилище сессии на файловой системе (diskv): один файл на ключ.
// Локальный аналог браузерного localStorage; хранилище CLI по умолчанию.
package disk

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/pribylovaa/go-shop-client/internal/storage"
)

// cacheSizeMaxBytes - кэш в памяти: токены короткие, двух килобайт хватает с запасом.
const cacheSizeMaxBytes = 2048

type Store struct {
	dv *diskv.Diskv
}

var _ storage.Store = (*Store)(nil)

// New открывает (и при необходимости создаёт) каталог состояния dir.
// Файлы создаются с правами 0600, каталог - 0700.
func New(dir string) (*Store, error) {
	const op = "storage.disk.New"

	if dir == "" {
		return nil, fmt.Errorf("%s: empty dir", op)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Все ключи кладём прямо в базовый каталог.
	flatTransform := func(s string) []string { return []string{} }

	dv := diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    flatTransform,
		CacheSizeMax: cacheSizeMaxBytes,
		FilePerm:     0o600,
		PathPerm:     0o700,
	})

	return &Store{dv: dv}, nil
}

func validKey(key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}

	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q", key)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.disk.Get"

	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	if err := validKey(key); err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	if !s.dv.Has(key) {
		return "", false, nil
	}

	b, err := s.dv.Read(key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return string(b), true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	const op = "storage.disk.Set"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := validKey(key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.dv.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "storage.disk.Delete"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := validKey(key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.dv.Has(key) {
		return nil
	}

	if err := s.dv.Erase(key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close - у diskv нет ресурсов, которые нужно освобождать.
func (s *Store) Close() error { return nil }
