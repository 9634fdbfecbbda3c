package report

import (
	"fmt"

	"github.com/shaiso/wfimport/internal/domain"
)

// menuPath — путь в меню n8n для ручного импорта.
var menuPath = []string{
	"Workflows",
	"'+' (new workflow)",
	"'⋮' (three dots)",
	"'Import from File'",
}

func manualFile(file string) string {
	if file == "" {
		return "<workflow.json>"
	}
	return file
}

// ManualImport — инструкции ручного импорта в JSON выводе.
type ManualImport struct {
	URL      string   `json:"url"`
	MenuPath []string `json:"menu_path"`
	File     string   `json:"file"`
	Curl     string   `json:"curl"`
}

// newManualImport собирает инструкции для сервера и файла.
func newManualImport(baseURL, file string) *ManualImport {
	file = manualFile(file)
	return &ManualImport{
		URL:      baseURL,
		MenuPath: menuPath,
		File:     file,
		Curl: fmt.Sprintf(
			"curl -X POST %s/api/v1/workflows -H 'Content-Type: application/json' -H 'X-N8N-API-KEY: your_key' -d @%q",
			baseURL, file,
		),
	}
}

// jsonResult — итог импорта для --json; при неудаче дополнен инструкциями.
type jsonResult struct {
	*domain.ImportResult
	ManualImport *ManualImport `json:"manual_import,omitempty"`
}

func newJSONResult(res *domain.ImportResult) jsonResult {
	out := jsonResult{ImportResult: res}
	if !res.Succeeded {
		out.ManualImport = newManualImport(res.BaseURL, res.SourceFile)
	}
	return out
}
