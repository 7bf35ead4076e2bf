package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/concordance/internal/model"
)

// ErrUnknownFormat is returned for an output format the renderer does not support
var ErrUnknownFormat = errors.New("unknown output format")

// Version is stamped into Markdown footers
var Version = "0.1.0"

// Formats lists the supported output formats
var Formats = []string{"text", "json", "yaml", "markdown"}

// Renderer writes reports in one of the supported formats
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// Render writes report to w in the given format
func (r *Renderer) Render(w io.Writer, report *model.Report, format string) error {
	bw := bufio.NewWriter(w)

	var err error
	switch normalizeFormat(format) {
	case "text":
		err = r.renderText(bw, report)
	case "json":
		err = r.renderJSON(bw, report)
	case "yaml":
		err = r.renderYAML(bw, report)
	case "markdown":
		err = r.renderMarkdown(bw, report)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return err
	}

	return bw.Flush()
}

// RenderFile writes report to path, creating parent directories
func (r *Renderer) RenderFile(path string, report *model.Report, format string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()

	return r.Render(f, report, format)
}

// FormatExtension returns the file extension used for a format
func FormatExtension(format string) string {
	switch normalizeFormat(format) {
	case "json":
		return ".json"
	case "yaml":
		return ".yaml"
	case "markdown":
		return ".md"
	default:
		return ".txt"
	}
}

// ValidFormat reports whether format is supported
func ValidFormat(format string) bool {
	switch normalizeFormat(format) {
	case "text", "json", "yaml", "markdown":
		return true
	}
	return false
}

func normalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "txt":
		return "text"
	case "md":
		return "markdown"
	case "yml":
		return "yaml"
	default:
		return f
	}
}

// renderText writes one padded line per word
func (r *Renderer) renderText(w io.Writer, report *model.Report) error {
	for _, rec := range report.Records {
		if _, err := fmt.Fprintln(w, rec.String()); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}
	return nil
}

func (r *Renderer) renderJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *Renderer) renderYAML(w io.Writer, report *model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}

func (r *Renderer) renderMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Concordance: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Distinct words:** %d\n", report.Distinct())
	fmt.Fprintf(&b, "- **Total words:** %d\n", report.TotalFrequency())
	fmt.Fprintf(&b, "- **Sentences:** %d\n\n", report.Sentences)

	b.WriteString("| Word | Frequency | Sentences |\n")
	b.WriteString("|------|----------:|-----------|\n")
	for _, rec := range report.Records {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", escapeCell(rec.Word), rec.Frequency, strings.Join(rec.Locations, ","))
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n_Generated by concordance v%s on %s_\n", Version, report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// escapeCell keeps pipes and backslashes in a word from breaking the table
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "|", `\|`)
}
