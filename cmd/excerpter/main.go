package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"excerpter/internal/config"
	"excerpter/internal/pipeline"
	"excerpter/internal/render"
	"excerpter/internal/ui"
	"excerpter/internal/weaver"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "excerpter [path]",
	Short: "Browse and extract #docregion excerpts from source trees",
	Long: `Excerpter extracts named excerpts from source files, delimited by
#docregion / #enddocregion comment markers.

Browse the excerpts of a tree interactively, print or copy one, or run
'excerpter build' to write every excerpt as a fragment file for a
documentation site to include.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Weave a source tree and write fragment files",
	Long: `Weaves every matching file under the source tree and writes one
fragment file per excerpt to the output directory, laid out as
<out>/<file>.excerpts/<region><ext>. Markup problems are reported as
warnings and never fail the build.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List every excerpt in a source tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <file> [region]",
	Short: "Print one excerpt of a file",
	Long: `Prints the named excerpt of a single file, or the directive-stripped
whole file when no region is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rebuild fragments whenever the source tree changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)

	rootCmd.Flags().StringP("output", "o", "", "Output mode: print, copy")
	rootCmd.Flags().StringP("query", "q", "", "Initial search query")
	rootCmd.Flags().Bool("print", false, "Print excerpt (shorthand for -o print)")
	rootCmd.Flags().Bool("copy", false, "Copy excerpt (shorthand for -o copy)")
	rootCmd.Flags().BoolP("benchmark", "b", false, "Benchmark load time and exit")

	rootCmd.PersistentFlags().String("include", "", "Comma-separated include globs")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated exclude globs")

	buildCmd.Flags().String("out", "", "Fragment output directory")
	buildCmd.Flags().String("plaster", "", "Marker line written between discontiguous ranges")
	buildCmd.Flags().Bool("quiet", false, "Suppress the progress bar")

	watchCmd.Flags().String("out", "", "Fragment output directory")
	watchCmd.Flags().String("plaster", "", "Marker line written between discontiguous ranges")

	showCmd.Flags().BoolP("line-numbers", "n", false, "Prefix lines with original line numbers")
	showCmd.Flags().String("plaster", "", "Marker line written between discontiguous ranges")

	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// resolvePath returns the source path from args or config
func resolvePath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	} else if config.GetPath() != "." {
		path = config.GetPath()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("error resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", fmt.Errorf("path error: %w", err)
	}
	return absPath, nil
}

// patterns merges the include/exclude flags over the configured defaults
func patterns(cmd *cobra.Command) (include, exclude []string) {
	include = config.GetInclude()
	exclude = config.GetExclude()
	if flag, _ := cmd.Flags().GetString("include"); flag != "" {
		viper.Set("include", flag)
		include = config.GetInclude()
	}
	if flag, _ := cmd.Flags().GetString("exclude"); flag != "" {
		viper.Set("exclude", flag)
		exclude = config.GetExclude()
	}
	return include, exclude
}

// weaveArg weaves the path argument, which may be a tree or a single file
func weaveArg(cmd *cobra.Command, args []string) ([]pipeline.FileResult, error) {
	absPath, err := resolvePath(args)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		fr, err := pipeline.WeaveFile(filepath.Dir(absPath), filepath.Base(absPath))
		if err != nil {
			return nil, err
		}
		return []pipeline.FileResult{fr}, nil
	}

	include, exclude := patterns(cmd)
	return pipeline.WeaveTree(pipeline.Options{
		Root:    absPath,
		Include: include,
		Exclude: exclude,
	})
}

// warn prints diagnostics to stderr; they never fail a run
func warn(diags []weaver.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, pipeline.FormatDiagnostic(d))
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Handle output mode flags
	if p, _ := cmd.Flags().GetBool("print"); p {
		config.SetOutput("print")
	} else if c, _ := cmd.Flags().GetBool("copy"); c {
		config.SetOutput("copy")
	} else if o, _ := cmd.Flags().GetString("output"); o != "" {
		config.SetOutput(o)
	}

	query, _ := cmd.Flags().GetString("query")
	benchmark, _ := cmd.Flags().GetBool("benchmark")
	start := time.Now()

	results, err := weaveArg(cmd, args)
	if err != nil {
		return err
	}

	excerpts := 0
	for _, fr := range results {
		warn(fr.Result.Diagnostics)
		excerpts += len(fr.Result.Excerpts)
	}

	if benchmark {
		elapsed := time.Since(start)
		runtime.GC()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		fmt.Printf("Wove %d files (%d excerpts) in %v\n", len(results), excerpts, elapsed)
		fmt.Printf("Memory: Alloc=%dMB, TotalAlloc=%dMB, Sys=%dMB, HeapObjects=%d\n",
			m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024, m.HeapObjects)
		return nil
	}

	return ui.Run(results, query)
}

func runBuild(cmd *cobra.Command, args []string) error {
	absPath, err := resolvePath(args)
	if err != nil {
		return err
	}

	out := config.GetOutputDir()
	if flag, _ := cmd.Flags().GetString("out"); flag != "" {
		out = flag
	}
	plaster := config.GetPlaster()
	if flag, _ := cmd.Flags().GetString("plaster"); flag != "" {
		plaster = flag
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	include, exclude := patterns(cmd)

	sum, err := pipeline.Build(pipeline.Options{
		Root:      absPath,
		OutputDir: out,
		Include:   include,
		Exclude:   exclude,
		Plaster:   plaster,
		Progress:  !quiet,
	})
	if err != nil {
		return err
	}

	warn(sum.Diagnostics)
	fmt.Printf("Wove %d files: %d excerpts, %d fragments written to %s\n",
		sum.Files, sum.Excerpts, sum.Fragments, out)
	if n := len(sum.Diagnostics); n > 0 {
		fmt.Fprintf(os.Stderr, "%d warning(s)\n", n)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	results, err := weaveArg(cmd, args)
	if err != nil {
		return err
	}

	for _, fr := range results {
		warn(fr.Result.Diagnostics)
		for _, e := range fr.Result.Excerpts {
			if len(e.Ranges) == 0 {
				continue
			}
			fmt.Printf("%s\t%s\t%s\n", fr.Rel, e.Name, formatRanges(e))
		}
	}
	return nil
}

// formatRanges renders ranges as 1-based inclusive spans
func formatRanges(e *weaver.Excerpt) string {
	s := ""
	for i, r := range e.Ranges {
		if i > 0 {
			s += ","
		}
		if r.End-r.Start == 1 {
			s += fmt.Sprint(r.Start + 1)
		} else {
			s += fmt.Sprintf("%d-%d", r.Start+1, r.End)
		}
	}
	return s
}

func runShow(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("error resolving path: %w", err)
	}

	fr, err := pipeline.WeaveFile(filepath.Dir(absPath), filepath.Base(absPath))
	if err != nil {
		return err
	}
	warn(fr.Result.Diagnostics)

	name := weaver.FullDocument
	if len(args) > 1 {
		name = args[1]
	}

	lineNumbers, _ := cmd.Flags().GetBool("line-numbers")
	plaster, _ := cmd.Flags().GetString("plaster")
	if plaster == "" {
		plaster = config.GetPlaster()
	}

	text, ok := render.Renderer{Plaster: plaster, LineNumbers: lineNumbers}.
		Render(fr.Result, name)
	if !ok {
		return fmt.Errorf("no excerpt %q in %s", name, args[0])
	}
	fmt.Println(text)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	absPath, err := resolvePath(args)
	if err != nil {
		return err
	}

	out := config.GetOutputDir()
	if flag, _ := cmd.Flags().GetString("out"); flag != "" {
		out = flag
	}
	plaster := config.GetPlaster()
	if flag, _ := cmd.Flags().GetString("plaster"); flag != "" {
		plaster = flag
	}
	include, exclude := patterns(cmd)

	// Keep fragment writes from retriggering the watch when the output
	// directory sits inside the tree.
	if outAbs, err := filepath.Abs(out); err == nil {
		if rel, err := filepath.Rel(absPath, outAbs); err == nil && !strings.HasPrefix(rel, "..") {
			exclude = append(exclude, filepath.ToSlash(rel)+"/**")
		}
	}

	opts := pipeline.Options{
		Root:      absPath,
		OutputDir: out,
		Include:   include,
		Exclude:   exclude,
		Plaster:   plaster,
	}

	rebuild := func() {
		sum, err := pipeline.Build(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build error: %v\n", err)
			return
		}
		warn(sum.Diagnostics)
		fmt.Printf("%s  %d files, %d fragments\n",
			time.Now().Format("15:04:05"), sum.Files, sum.Fragments)
	}
	rebuild()

	w, err := pipeline.NewWatcher(absPath, include, exclude)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx, func(rels []string) {
		fmt.Printf("changed: %v\n", rels)
		rebuild()
	}); err != nil {
		return err
	}

	fmt.Printf("watching %s (Ctrl+C to stop)\n", absPath)
	<-ctx.Done()
	return nil
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
