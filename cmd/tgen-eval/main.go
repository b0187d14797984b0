// Command tgen-eval is the §6.4 evaluation driver: train a TGenModel on one
// AST corpus and report §4.I metrics over a second AST corpus, using a
// fixed TGen program table for both.
//
// Grounded on daios-ai-msg/cmd/msg/main.go's manual flag.FlagSet,
// subcommand-free style.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/tgenlab/tgen/corpus"
	"github.com/tgenlab/tgen/feature"
	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/logx"
	"github.com/tgenlab/tgen/model"
	"github.com/tgenlab/tgen/tcond"
	"github.com/tgenlab/tgen/tgen"
)

const appName = "tgen-eval"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	trainPath := fs.String("train", "", "path to training AST file (required)")
	evalPath := fs.String("eval", "", "path to evaluation AST file (required)")
	programPath := fs.String("program", "", "path to TGen program file (required)")
	configPath := fs.String("config", "", "optional YAML file overriding default config fields")
	predictTypes := fs.Bool("predict-types", false, "predict node types instead of values")
	numTrain := fs.Int("num-training-asts", 0, "limit on training ASTs (0 = default 100000)")
	numEval := fs.Int("num-eval-asts", 0, "limit on evaluation ASTs (0 = default 50000)")
	maxTreeSize := fs.Int("max-tree-size", 0, "drop trees larger than this (0 = default 30000)")
	smoothingName := fs.String("smoothing", "wittenbell", "wittenbell, kneserney, or laplace")
	kneserNeyDelta := fs.Float64("kneser-ney-delta", 0, "fixed Kneser-Ney delta in (0,1); 0 = estimate per length")
	beamSize := fs.Int("beam-size", 0, "beam width for best-label prediction (0 = default 4)")
	metricName := fs.String("metric", "entropy", "entropy, errorrate, or confidence50")
	verbose := fs.Bool("v", false, "log at debug level")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *trainPath == "" || *evalPath == "" || *programPath == "" {
		fmt.Fprintf(stderr, "usage: %s -train <file> -eval <file> -program <file> [flags]\n", appName)
		fs.PrintDefaults()
		return 2
	}

	level := logx.LevelInfo
	if *verbose {
		level = logx.LevelDebug
	}
	log := logx.New(level, stderr)

	cfg := model.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 1
		}
		cfg, err = model.LoadConfigOverride(f, cfg)
		f.Close()
		if err != nil {
			fmt.Fprintf(stderr, "%s: loading config: %v\n", appName, err)
			return 1
		}
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["smoothing"] {
		smoothing, ok := parseSmoothing(*smoothingName)
		if !ok {
			fmt.Fprintf(stderr, "%s: unknown smoothing %q\n", appName, *smoothingName)
			return 2
		}
		cfg.Smoothing = smoothing
	}
	if *kneserNeyDelta > 0 {
		cfg.KneserNeyDelta = kneserNeyDelta
	}
	if *beamSize > 0 {
		cfg.BeamSize = *beamSize
	}
	if *numTrain > 0 {
		cfg.NumTrainingASTs = *numTrain
	}
	if *numEval > 0 {
		cfg.NumEvalASTs = *numEval
	}
	if *maxTreeSize > 0 {
		cfg.MaxTreeSize = *maxTreeSize
	}
	if explicit["metric"] {
		defaultMetric, ok := model.ParseMetric(*metricName)
		if !ok {
			fmt.Fprintf(stderr, "%s: unknown metric %q\n", appName, *metricName)
			return 2
		}
		cfg.DefaultMetric = defaultMetric
	}

	programFile, err := os.Open(*programPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer programFile.Close()

	ss := intern.New()
	table, warnings, err := tgen.Load(programFile, ss)
	if err != nil {
		fmt.Fprintf(stderr, "%s: loading program table: %v\n", appName, err)
		return 1
	}
	for _, w := range warnings {
		log.Warnf("%s", w.Msg)
	}
	if table.Len() == 0 {
		fmt.Fprintf(stderr, "%s: program table is empty\n", appName)
		return 1
	}
	startID := table.Len() - 1

	m := model.NewTGenModel(table, *predictTypes, cfg)

	trainFile, err := os.Open(*trainPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer trainFile.Close()

	loader := &corpus.Loader{MaxTreeSize: cfg.MaxTreeSize, Log: log}
	trainSamples, err := loader.Load(trainFile, ss, cfg.NumTrainingASTs)
	if err != nil {
		fmt.Fprintf(stderr, "%s: loading training corpus: %v\n", appName, err)
		return 1
	}

	for _, sample := range trainSamples {
		ctx := tcond.NewExecutionContext(sample.Store)
		for _, position := range sample.Store.PreOrder(0) {
			if err := m.TrainSample(sample.Store, ctx, position, startID); err != nil {
				fmt.Fprintf(stderr, "%s: training on AST %d node %d: %v\n", appName, sample.Index, position, err)
				return 1
			}
			log.Debugf("trained sample ast=%d node=%d", sample.Index, position)
		}
	}
	m.EndAdding()

	evalFile, err := os.Open(*evalPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer evalFile.Close()

	evalSamples, err := loader.Load(evalFile, ss, cfg.NumEvalASTs)
	if err != nil {
		fmt.Fprintf(stderr, "%s: loading evaluation corpus: %v\n", appName, err)
		return 1
	}

	var results []model.SampleResult
	bySize := make(map[int][]model.SampleResult)
	for _, sample := range evalSamples {
		ctx := tcond.NewExecutionContext(sample.Store)
		for _, position := range sample.Store.PreOrder(0) {
			r, err := m.EvaluateSample(sample.Store, ctx, position, startID)
			if err != nil {
				fmt.Fprintf(stderr, "%s: evaluating AST %d node %d: %v\n", appName, sample.Index, position, err)
				return 1
			}
			results = append(results, r)
			bucket := sizeBucket(sample.Store.NumAllocatedNodes())
			bySize[bucket] = append(bySize[bucket], r)
		}
	}

	log.Infof("evaluation complete: %d samples", len(results))
	renderReport(stdout, cfg.DefaultMetric, results, bySize)
	return 0
}

func parseSmoothing(s string) (feature.Mode, bool) {
	switch s {
	case "wittenbell":
		return feature.WittenBell, true
	case "kneserney":
		return feature.KneserNey, true
	case "laplace":
		return feature.Laplace, true
	default:
		return 0, false
	}
}

// sizeBucket buckets a tree by node count into power-of-two-ish ranges for
// the by-size breakdown (§3 supplement).
func sizeBucket(n int) int {
	b := 16
	for b < n {
		b *= 4
	}
	return b
}

func renderReport(w *os.File, defaultMetric model.Metric, all []model.SampleResult, bySize map[int][]model.SampleResult) {
	metrics := []model.Metric{model.Entropy, model.ErrorRate, model.Confidence50}

	header := []string{"bucket", "samples", "entropy", "errorrate", "confidence50"}
	for i, met := range metrics {
		if met == defaultMetric {
			header[2+i] = "*" + header[2+i]
		}
	}
	rows := [][]string{header}
	rows = append(rows, reportRow("all", all, metrics))

	buckets := make([]int, 0, len(bySize))
	for b := range bySize {
		buckets = append(buckets, b)
	}
	sortInts(buckets)
	for _, b := range buckets {
		rows = append(rows, reportRow(fmt.Sprintf("<=%d", b), bySize[b], metrics))
	}

	if isatty.IsTerminal(w.Fd()) {
		renderTable(w, rows)
	} else {
		for _, row := range rows {
			fmt.Fprintln(w, joinTab(row))
		}
	}
}

func reportRow(label string, results []model.SampleResult, metrics []model.Metric) []string {
	row := []string{label, fmt.Sprintf("%d", len(results))}
	for _, met := range metrics {
		row = append(row, fmt.Sprintf("%.4f", model.EvaluateMetric(results, met)))
	}
	return row
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func joinTab(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "\t" + f
	}
	return out
}

// renderTable prints rows with runewidth-aware column padding, suited for a
// terminal where isatty.IsTerminal reports true.
func renderTable(w *os.File, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if wd := runewidth.StringWidth(cell); wd > widths[i] {
				widths[i] = wd
			}
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, runewidth.FillRight(cell, widths[i]+2))
		}
		fmt.Fprintln(w)
	}
}
