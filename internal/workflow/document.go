package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultName — имя workflow, если в документе оно отсутствует или пустое.
const DefaultName = "Imported Workflow"

// Document — загруженный документ workflow.
//
// Хранит сырые значения распознанных полей, чтобы переслать их
// на сервер без изменений.
type Document struct {
	// Path — путь к исходному файлу.
	Path string

	// Meta — данные для отображения.
	Meta Meta

	name        string
	nodes       []json.RawMessage
	connections json.RawMessage
	settings    json.RawMessage
	tags        json.RawMessage
	hasTags     bool
}

// Meta — отображаемые метаданные документа.
type Meta struct {
	// Name — имя workflow или DefaultName.
	Name string `json:"name"`

	// NodeCount — количество элементов в nodes.
	NodeCount int `json:"node_count"`

	// Active — флаг active из исходника. При импорте игнорируется.
	Active bool `json:"active"`

	// HasTags — в документе есть ключ tags.
	HasTags bool `json:"has_tags"`

	// SizeBytes — размер файла.
	SizeBytes int `json:"size_bytes"`
}

// Payload — тело запроса на создание workflow.
//
// Active сериализуется всегда и всегда равен false: импортированный
// workflow никогда не активируется автоматически.
// Tags пропускается, если ключа tags не было в исходном документе.
type Payload struct {
	Name        string            `json:"name"`
	Nodes       []json.RawMessage `json:"nodes"`
	Connections json.RawMessage   `json:"connections"`
	Settings    json.RawMessage   `json:"settings"`
	Active      bool              `json:"active"`
	Tags        json.RawMessage   `json:"tags,omitempty"`
}

// Load читает и разбирает файл workflow.
//
// Возвращает ошибку, оборачивающую ErrFileNotFound, если файла нет,
// и ErrMalformedDocument, если содержимое не является JSON-объектом
// или nodes не массив.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Parse разбирает документ workflow из байтов.
func Parse(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	// "null" разбирается в nil map без ошибки
	if fields == nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedDocument)
	}

	doc := &Document{
		name:        DefaultName,
		nodes:       []json.RawMessage{},
		connections: json.RawMessage("{}"),
		settings:    json.RawMessage("{}"),
	}

	if raw, ok := fields["name"]; ok {
		var name string
		// нестроковое имя игнорируется
		if err := json.Unmarshal(raw, &name); err == nil && name != "" {
			doc.name = name
		}
	}

	if raw, ok := fields["nodes"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &doc.nodes); err != nil {
			return nil, fmt.Errorf("%w: nodes must be an array", ErrMalformedDocument)
		}
	}

	if raw, ok := fields["connections"]; ok && !isNull(raw) {
		doc.connections = raw
	}
	if raw, ok := fields["settings"]; ok && !isNull(raw) {
		doc.settings = raw
	}
	if raw, ok := fields["tags"]; ok {
		doc.tags = raw
		doc.hasTags = true
	}

	var active bool
	if raw, ok := fields["active"]; ok {
		_ = json.Unmarshal(raw, &active)
	}

	doc.Meta = Meta{
		Name:      doc.name,
		NodeCount: len(doc.nodes),
		Active:    active,
		HasTags:   doc.hasTags,
		SizeBytes: len(data),
	}

	return doc, nil
}

// Payload строит тело запроса на создание workflow.
func (d *Document) Payload() Payload {
	p := Payload{
		Name:        d.name,
		Nodes:       d.nodes,
		Connections: d.connections,
		Settings:    d.settings,
		Active:      false,
	}
	if d.hasTags {
		p.Tags = d.tags
	}
	return p
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
