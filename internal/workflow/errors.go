package workflow

import "errors"

// Ошибки загрузки документа.
var (
	// ErrFileNotFound — файл workflow не существует.
	ErrFileNotFound = errors.New("workflow file not found")

	// ErrMalformedDocument — содержимое не является JSON-объектом workflow.
	ErrMalformedDocument = errors.New("malformed workflow document")
)
