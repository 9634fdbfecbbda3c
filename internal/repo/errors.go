package repo

import "errors"

// Ошибки журнала.
var (
	// ErrNotConfigured — строка подключения не задана.
	ErrNotConfigured = errors.New("database url is not configured")

	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")
)
