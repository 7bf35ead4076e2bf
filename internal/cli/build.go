package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/concordance/internal/model"
	"github.com/ppiankov/concordance/internal/pipeline"
)

const sourcePrompt = "Enter full path of arbitrary text file to process: "

var (
	outFile     string
	format      string
	timeout     time.Duration
	maxBytes    int64
	abbrevs     []string
	noCache     bool
	noFooter    bool
	noRobots    bool
	insecureTLS bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [path|url|-]",
	Short: "Build the concordance of a single document",
	Long: `Build reads one document and prints its concordance:
- every distinct word, lowercased and stripped of punctuation
- its frequency
- the sentence numbers it occurs in, in order of appearance

With no argument, build prompts for a file path.

Example:
  concordance build moby-dick.txt
  concordance build https://www.gutenberg.org/files/11/11-0.txt --format json
  cat notes.txt | concordance build - --format markdown --out notes.md
  concordance build essay.txt --abbrev i.e. --abbrev e.g. --abbrev etc.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml, markdown)")
	buildCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the report to a file instead of stdout")
	addSourceFlags(buildCmd)
}

// addSourceFlags registers the flags shared by build and batch
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for reading a single source")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 10_000_000, "max bytes to read per source")
	cmd.Flags().StringSliceVar(&abbrevs, "abbrev", nil, "abbreviation kept as a word (repeatable, replaces the configured list)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt for URL sources")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
}

// applySourceFlags overlays explicitly set flags on cfg
func applySourceFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flags.Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if flags.Changed("abbrev") {
		cfg.Tokenizer.Abbreviations = abbrevs
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("no-robots") {
		cfg.HTTP.RespectRobots = !noRobots
	}
	if flags.Changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	cfg.Output.Verbose = verbose || cfg.Output.Verbose
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySourceFlags(cmd, cfg)

	if !pipeline.ValidFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: %q", pipeline.ErrUnknownFormat, cfg.Output.Format)
	}

	var source string
	if len(args) == 1 {
		source = args[0]
	} else {
		source, err = promptForSource(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.Timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Building: %s\n", source)
		fmt.Fprintf(cmd.ErrOrStderr(), "Abbreviations: %s\n", strings.Join(cfg.Tokenizer.Abbreviations, " "))
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	p := pipeline.NewPipeline(cfg)
	p.Loader().WithStdin(cmd.InOrStdin())

	report, err := p.Run(ctx, source)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d tokens, %d sentences\n", report.Tokens, report.Sentences)
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d distinct words, %d total\n", report.Distinct(), report.TotalFrequency())
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	if outFile != "" {
		if err := p.Renderer().RenderFile(outFile, report, cfg.Output.Format); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", outFile)
		}
		return nil
	}

	if err := p.Renderer().Render(cmd.OutOrStdout(), report, cfg.Output.Format); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// promptForSource asks for a file path and reads one line
func promptForSource(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, sourcePrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read path: %w", err)
	}

	path := strings.TrimSpace(line)
	if path == "" {
		return "", pipeline.ErrEmptySource
	}
	return path, nil
}
