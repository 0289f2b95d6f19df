package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ably/internal/diagfmt"
	"ably/internal/engine"
	"ably/internal/source"
	"ably/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.html|directory|->",
	Short: "Check HTML documents for accessibility problems",
	Long: `Check one HTML document, every HTML document below a directory, or
standard input ("-"), and report WCAG findings plus a score per document.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif|html)")
	checkCmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	checkCmd.Flags().Int("jobs", 0, "max parallel documents for directories (0 = settings file, then auto)")
	checkCmd.Flags().Bool("with-notes", true, "include suggestions in output")
	checkCmd.Flags().Bool("fail-on-findings", false, "exit with status 1 when any problem is reported")
	checkCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	checkCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	checkCmd.Flags().Int("context", 2, "source lines shown around each problem (pretty)")
}

type checkOptions struct {
	format         string
	pathMode       diagfmt.PathMode
	jobs           int
	withNotes      bool
	failOnFindings bool
	ui             uiMode
	output         string
	context        int
	color          bool
	quiet          bool
	timings        bool
	maxProblems    int
}

func readCheckFlags(cmd *cobra.Command) (checkOptions, error) {
	var (
		opts checkOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "short", "json", "sarif", "html":
	default:
		return opts, fmt.Errorf("unknown format %q (want pretty, short, json, sarif or html)", opts.format)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if opts.pathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return opts, err
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.failOnFindings, err = flags.GetBool("fail-on-findings"); err != nil {
		return opts, fmt.Errorf("failed to get fail-on-findings flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.output, err = flags.GetString("output"); err != nil {
		return opts, fmt.Errorf("failed to get output flag: %w", err)
	}
	if opts.context, err = flags.GetInt("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}

	root := cmd.Root().PersistentFlags()
	colorFlag, err := root.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	opts.color = colorFlag == "on" || (colorFlag == "auto" && opts.output == "" && isTerminal(os.Stdout))
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxProblems, err = root.GetInt("max-problems"); err != nil {
		return opts, fmt.Errorf("failed to get max-problems flag: %w", err)
	}
	return opts, nil
}

// runCheck executes "check": it resolves the documents, runs one pass per
// document, renders the report and maps the outcome to the exit status.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	cfg := state.cfg
	logger := state.logger
	if opts.jobs <= 0 {
		opts.jobs = cfg.Check.Jobs
	}

	eng, cleanup, err := buildEngine(cfg, effectiveMaxProblems(opts.maxProblems, cfg), &logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	target := args[0]
	fs, results, err := collectResults(ctx, eng, target, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		// #nosec G304 -- path is provided by the user
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeReport(out, results, fs, opts); err != nil {
		return err
	}
	if opts.timings {
		printTimings(cmd.ErrOrStderr(), results, fs)
	}

	failed, problems := summarize(results)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be checked", failed, len(results))
	}
	if opts.failOnFindings && problems > 0 {
		return errFindings
	}
	return nil
}

func collectResults(ctx context.Context, eng *engine.Engine, target string, opts checkOptions) (*source.FileSet, []engine.FileResult, error) {
	if target == "-" {
		return checkStdin(ctx, eng, os.Stdin)
	}
	st, err := os.Stat(target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		return eng.CheckFiles(ctx, filepath.Dir(target), []string{target}, 1)
	}

	files, err := engine.ListHTMLFiles(target)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", target, err)
	}
	if len(files) == 0 {
		return source.NewFileSetWithBase(target), nil, nil
	}
	if opts.format == "pretty" && opts.output == "" && shouldUseTUI(opts.ui) {
		return runCheckWithUI(ctx, eng, target, files, opts.jobs)
	}
	return eng.CheckFiles(ctx, target, files, opts.jobs)
}

func checkStdin(ctx context.Context, eng *engine.Engine, r io.Reader) (*source.FileSet, []engine.FileResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read stdin: %w", err)
	}
	content, flags, err := source.Normalize(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode stdin: %w", err)
	}
	fs := source.NewFileSet()
	id := fs.Add("<stdin>", content, flags|source.FileVirtual)
	res, err := eng.Check(ctx, fs, id)
	if err != nil {
		return nil, nil, err
	}
	return fs, []engine.FileResult{{Path: "<stdin>", Result: res}}, nil
}

func writeReport(w io.Writer, results []engine.FileResult, fs *source.FileSet, opts checkOptions) error {
	switch opts.format {
	case "pretty":
		diagfmt.Pretty(w, results, fs, diagfmt.PrettyOpts{
			Color:       opts.color,
			Context:     int8(min(max(opts.context, 0), 10)),
			PathMode:    opts.pathMode,
			ShowNotes:   opts.withNotes,
			ShowSource:  true,
			ShowSummary: !opts.quiet,
		})
		return nil
	case "short":
		return diagfmt.Short(w, results, fs, opts.withNotes)
	case "json":
		return diagfmt.JSON(w, results, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			IncludeNotes:     opts.withNotes,
			IncludeScore:     true,
		})
	case "sarif":
		return diagfmt.Sarif(w, results, fs, diagfmt.SarifRunMeta{
			ToolName:       "ably",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	case "html":
		return diagfmt.HTML(w, results, fs, diagfmt.HTMLOpts{
			Title:    "Accessibility report",
			PathMode: opts.pathMode,
		})
	}
	return fmt.Errorf("unknown format: %s", opts.format)
}

// summarize counts documents that failed to load or check, and problems
// reported over all documents.
func summarize(results []engine.FileResult) (failed, problems int) {
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			failed++
			continue
		}
		problems += len(r.Result.Diagnostics)
	}
	return failed, problems
}
