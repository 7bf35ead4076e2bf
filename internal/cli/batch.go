package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/concordance/internal/model"
	"github.com/ppiankov/concordance/internal/pipeline"
	"github.com/ppiankov/concordance/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Build concordances for many documents in parallel",
	Long: `Batch builds one concordance per source listed in a file:
- one path or URL per line, "#" starts a comment
- sources are processed concurrently, URLs are rate limited per host
- each report is written to the output directory

Example:
  concordance batch sources.txt
  concordance batch sources.txt --concurrency 8 --output-dir ./concordances --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./concordances", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml, markdown)")
	addSourceFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySourceFlags(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if !pipeline.ValidFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: %q", pipeline.ErrUnknownFormat, cfg.Output.Format)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Concordance Batch\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  Format:       %s\n", cfg.Output.Format)
	fmt.Fprintf(stderr, "\n")

	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(
		timeoutRunner{runner: p, timeout: cfg.HTTP.Timeout},
		cfg.Concurrency.Workers,
		p.Limiter(),
	)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		name := uniqueName(used, sanitizeFilename(result.Report.Subject))
		path := filepath.Join(outputDir, name+pipeline.FormatExtension(cfg.Output.Format))

		if err := p.Renderer().RenderFile(path, result.Report, cfg.Output.Format); err != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: failed to write report: %v\n", result.Source, err)
			continue
		}

		successCount++
		fmt.Fprintf(stderr, "✓ %s (%d words, %d distinct) → %s\n",
			result.Source, result.Report.TotalFrequency(), result.Report.Distinct(), path)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d sources failed", failureCount)
	}
	return nil
}

// timeoutRunner bounds each source by its own timeout inside the batch deadline
type timeoutRunner struct {
	runner  worker.Runner
	timeout time.Duration
}

func (r timeoutRunner) Run(ctx context.Context, source string) (*model.Report, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.runner.Run(ctx, source)
}

// sanitizeFilename turns a report subject into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = strings.Trim(replacer.Replace(strings.TrimSpace(s)), ".-_")

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "concordance"
	}
	return s
}

// uniqueName appends -2, -3, ... when a name has already been used
func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		return name + "-" + strconv.Itoa(n)
	}
	return name
}
