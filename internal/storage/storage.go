// storage задаёт контракт долговременного key-value хранилища сессии.
//
// Хранилище ничего не знает о токенах: сессия пишет туда строки под
// фиксированными ключами. Отсутствие ключа - не ошибка (ok == false).
package storage

import (
	"context"
	"errors"
)

var (
	// ErrEmptyKey - попытка работать с пустым ключом.
	ErrEmptyKey = errors.New("empty key")
	// ErrClosed - хранилище уже закрыто.
	ErrClosed = errors.New("store closed")
)

// Store - минимальный контракт хранилища сессии.
type Store interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение, безусловно заменяя предыдущее.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error
	// Close освобождает ресурсы.
	Close() error
}
