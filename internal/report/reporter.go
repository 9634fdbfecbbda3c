package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shaiso/wfimport/internal/domain"
	"github.com/shaiso/wfimport/internal/workflow"
)

const ruleWidth = 60

// Reporter печатает ход и итог импорта.
type Reporter struct {
	out *Output
	w   io.Writer
}

// NewReporter создаёт Reporter поверх Output.
func NewReporter(out *Output) *Reporter {
	return &Reporter{out: out, w: out.Writer()}
}

// Header печатает заголовок запуска.
func (r *Reporter) Header() {
	if r.out.JSONMode() {
		return
	}
	r.rule()
	fmt.Fprintln(r.w, "N8N WORKFLOW IMPORTER")
	r.rule()
	fmt.Fprintln(r.w)
}

// Loaded печатает сводку загруженного документа.
func (r *Reporter) Loaded(doc *workflow.Document) {
	if r.out.JSONMode() {
		return
	}
	fmt.Fprintf(r.w, "Workflow loaded: %s\n", doc.Path)
	fmt.Fprintf(r.w, "  Name:   %s\n", doc.Meta.Name)
	fmt.Fprintf(r.w, "  Nodes:  %d\n", doc.Meta.NodeCount)
	fmt.Fprintf(r.w, "  Active: %t (imported as inactive)\n", doc.Meta.Active)
	fmt.Fprintf(r.w, "  Size:   %.2f KB\n", float64(doc.Meta.SizeBytes)/1024)
	fmt.Fprintln(r.w)
}

// Probe печатает результат проверки доступности.
func (r *Reporter) Probe(baseURL string, res *domain.ProbeResult) {
	if r.out.JSONMode() {
		return
	}
	fmt.Fprintf(r.w, "Checking connection to %s...\n", baseURL)
	for _, c := range res.Checks {
		if c.Error != "" {
			fmt.Fprintf(r.w, "  %s: %s\n", c.Path, c.Error)
			continue
		}
		fmt.Fprintf(r.w, "  %s: %d\n", c.Path, c.StatusCode)
	}

	if res.Reachable {
		fmt.Fprintln(r.w, "n8n is online and responding")
		fmt.Fprintln(r.w)
		return
	}

	fmt.Fprintln(r.w, "Could not connect to n8n. Check that:")
	fmt.Fprintln(r.w, "  1. The host is online")
	fmt.Fprintln(r.w, "  2. n8n is running on the expected port (5678 by default)")
	fmt.Fprintln(r.w, "  3. The firewall allows connections")
	fmt.Fprintln(r.w)
}

// Attempts печатает таблицу попыток.
func (r *Reporter) Attempts(attempts []domain.Attempt) {
	if r.out.JSONMode() || len(attempts) == 0 {
		return
	}
	headers := []string{"#", "SCHEME", "ENDPOINT", "STATUS", "OUTCOME", "DETAIL"}
	rows := make([][]string, len(attempts))
	for i, a := range attempts {
		status := "-"
		if a.StatusCode != 0 {
			status = strconv.Itoa(a.StatusCode)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			a.Scheme.String(),
			a.Endpoint,
			status,
			string(a.Outcome),
			oneLine(a.Message),
		}
	}
	r.out.Table(headers, rows)
	fmt.Fprintln(r.w)
}

// Result печатает итог импорта. При неудаче добавляет инструкции
// для ручного импорта.
func (r *Reporter) Result(res *domain.ImportResult) {
	if r.out.JSONMode() {
		r.out.JSON(newJSONResult(res))
		return
	}

	r.Attempts(res.Attempts)

	if res.Succeeded {
		r.success(res)
		return
	}
	r.failure(res)
}

func (r *Reporter) success(res *domain.ImportResult) {
	r.rule()
	fmt.Fprintln(r.w, "SUCCESS! Workflow imported")
	r.rule()

	id := res.WorkflowID
	if id == "" {
		id = "?"
	}
	fmt.Fprintf(r.w, "ID:     %s\n", id)
	fmt.Fprintf(r.w, "Name:   %s\n", res.WorkflowName)
	fmt.Fprintf(r.w, "Via:    %s %s\n", res.Scheme, res.Endpoint)
	if res.WorkflowID != "" {
		fmt.Fprintf(r.w, "URL:    %s\n", res.WorkflowURL())
		fmt.Fprintf(r.w, "Editor: %s\n", res.EditorURL())
	}
	r.rule()
}

func (r *Reporter) failure(res *domain.ImportResult) {
	r.rule()
	fmt.Fprintln(r.w, "FAILED: the workflow could not be imported")
	if res.Error != "" {
		fmt.Fprintf(r.w, "Reason: %s\n", res.Error)
	}
	if hint := failureHint(res.LastAttempt()); hint != "" {
		fmt.Fprintf(r.w, "Hint:   %s\n", hint)
	}
	r.rule()
	fmt.Fprintln(r.w)
	r.ManualInstructions(res.BaseURL, res.SourceFile)
}

// failureHint подсказывает причину по последней попытке.
func failureHint(last *domain.Attempt) string {
	switch {
	case last == nil:
		return ""
	case last.Outcome.IsAuthFailure():
		return "the server rejected the credentials; set N8N_API_KEY or N8N_USERNAME/N8N_PASSWORD"
	case last.Outcome.IsNetworkFailure():
		return "the server stopped answering; check the host, port and firewall"
	default:
		return ""
	}
}

// ManualInstructions печатает инструкции для ручного импорта и
// настройки учётных данных.
func (r *Reporter) ManualInstructions(baseURL, file string) {
	file = manualFile(file)

	fmt.Fprintln(r.w, "MANUAL IMPORT:")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "1. Open n8n:")
	fmt.Fprintf(r.w, "   %s\n", baseURL)
	fmt.Fprintln(r.w, "2. In the main menu:")
	for _, step := range menuPath {
		fmt.Fprintf(r.w, "   -> %s\n", step)
	}
	fmt.Fprintln(r.w, "3. Select the file:")
	fmt.Fprintf(r.w, "   %s\n", file)
	fmt.Fprintln(r.w, "4. Configure the credentials used by the workflow nodes")
	fmt.Fprintln(r.w, "5. Activate the workflow")
	fmt.Fprintln(r.w)
	r.rule()
	fmt.Fprintln(r.w, "TO ENABLE AUTOMATIC IMPORT:")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Option A - API key:")
	fmt.Fprintln(r.w, "   1. In n8n: Settings -> API -> Create API Key")
	fmt.Fprintln(r.w, "   2. Run:")
	fmt.Fprintf(r.w, "      N8N_API_KEY='your_key' wfimport import %q\n", file)
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Option B - basic auth:")
	fmt.Fprintf(r.w, "      N8N_USERNAME='user' N8N_PASSWORD='pass' wfimport import %q\n", file)
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Option C - curl:")
	fmt.Fprintf(r.w, "   curl -X POST %s/api/v1/workflows \\\n", baseURL)
	fmt.Fprintln(r.w, "        -H 'Content-Type: application/json' \\")
	fmt.Fprintln(r.w, "        -H 'X-N8N-API-KEY: your_key' \\")
	fmt.Fprintf(r.w, "        -d @%q\n", file)
	r.rule()
}

func (r *Reporter) rule() {
	fmt.Fprintln(r.w, strings.Repeat("=", ruleWidth))
}

// oneLine сворачивает многострочное сообщение для таблицы.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
