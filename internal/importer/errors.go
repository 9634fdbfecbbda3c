package importer

import "errors"

// Ошибки импорта.
var (
	// ErrUnreachable — сервер не ответил ни на один путь проверки.
	ErrUnreachable = errors.New("n8n server is unreachable")

	// ErrImportFailed — все комбинации схем и endpoints исчерпаны.
	ErrImportFailed = errors.New("all upload attempts failed")

	// ErrInvalidResponse — сервер вернул 2xx, но тело не JSON-объект.
	ErrInvalidResponse = errors.New("invalid response body")
)
