package workflow

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// payloadKeys сериализует payload и возвращает ключи верхнего уровня.
func payloadKeys(t *testing.T, p Payload) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return keys
}

func TestLoad_NodeCount(t *testing.T) {
	path := writeFile(t, `{
		"name": "Orders sync",
		"nodes": [
			{"id": "1", "type": "n8n-nodes-base.webhook"},
			{"id": "2", "type": "n8n-nodes-base.postgres"},
			{"id": "3", "type": "n8n-nodes-base.set"}
		],
		"connections": {"Webhook": {"main": [[{"node": "Postgres", "type": "main", "index": 0}]]}}
	}`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Meta.Name != "Orders sync" {
		t.Errorf("expected name 'Orders sync', got %q", doc.Meta.Name)
	}
	if doc.Meta.NodeCount != 3 {
		t.Errorf("expected 3 nodes, got %d", doc.Meta.NodeCount)
	}
	if doc.Path != path {
		t.Errorf("expected path %q, got %q", path, doc.Path)
	}
	if doc.Meta.SizeBytes == 0 {
		t.Error("size should be set")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: `{"name": "broken",`},
		{name: "empty file", content: ``},
		{name: "array top level", content: `[1, 2, 3]`},
		{name: "null top level", content: `null`},
		{name: "nodes not array", content: `{"nodes": {"id": "1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	doc, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Meta.Name != DefaultName {
		t.Errorf("expected default name, got %q", doc.Meta.Name)
	}
	if doc.Meta.NodeCount != 0 {
		t.Errorf("expected 0 nodes, got %d", doc.Meta.NodeCount)
	}

	keys := payloadKeys(t, doc.Payload())
	if string(keys["nodes"]) != "[]" {
		t.Errorf("expected nodes [], got %s", keys["nodes"])
	}
	if string(keys["connections"]) != "{}" {
		t.Errorf("expected connections {}, got %s", keys["connections"])
	}
	if string(keys["settings"]) != "{}" {
		t.Errorf("expected settings {}, got %s", keys["settings"])
	}
}

func TestPayload_ActiveAlwaysFalse(t *testing.T) {
	doc, err := Parse([]byte(`{"name": "Live", "active": true, "nodes": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !doc.Meta.Active {
		t.Error("meta should report the source active flag")
	}

	keys := payloadKeys(t, doc.Payload())
	if string(keys["active"]) != "false" {
		t.Errorf("expected active false, got %s", keys["active"])
	}
}

func TestPayload_Tags(t *testing.T) {
	t.Run("absent tags are not synthesized", func(t *testing.T) {
		doc, err := Parse([]byte(`{"name": "No tags"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		keys := payloadKeys(t, doc.Payload())
		if _, ok := keys["tags"]; ok {
			t.Error("payload should not contain tags")
		}
	})

	t.Run("present tags are forwarded", func(t *testing.T) {
		doc, err := Parse([]byte(`{"name": "Tagged", "tags": [{"name": "prod"}]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		keys := payloadKeys(t, doc.Payload())
		if string(keys["tags"]) != `[{"name":"prod"}]` {
			t.Errorf("unexpected tags: %s", keys["tags"])
		}
	})
}

func TestPayload_DropsUnknownFields(t *testing.T) {
	doc, err := Parse([]byte(`{
		"id": "42",
		"name": "Copy",
		"versionId": "abc",
		"pinData": {},
		"meta": {"instanceId": "x"},
		"settings": {"executionOrder": "v1"}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := payloadKeys(t, doc.Payload())
	for _, k := range []string{"id", "versionId", "pinData", "meta"} {
		if _, ok := keys[k]; ok {
			t.Errorf("payload should not contain %q", k)
		}
	}
	if string(keys["settings"]) != `{"executionOrder":"v1"}` {
		t.Errorf("settings not forwarded: %s", keys["settings"])
	}
}
