// Command clonewatch detects duplicated code across a tree of source
// files: scan runs a detection pass and reports the result; report
// re-renders a previously saved JSON result in a different format.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/clonewatch/clonewatch/internal/cache"
	"github.com/clonewatch/clonewatch/internal/discover"
	"github.com/clonewatch/clonewatch/internal/progress"
	"github.com/clonewatch/clonewatch/internal/reportfmt"
	"github.com/clonewatch/clonewatch/pkg/clone"
	"github.com/clonewatch/clonewatch/pkg/config"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "clonewatch",
		Usage:   "Detect duplicated code across a source tree",
		Version: version,
		Commands: []*cli.Command{
			scanCommand(),
			reportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Run a detection pass over one or more paths",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file (.clonewatch.yaml/.toml/.json)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: table, json, toon"},
			&cli.BoolFlag{Name: "silent", Usage: "Run as a CI gate: no report, exit non-zero if duplication exceeds gate.max_percentage"},
			&cli.BoolFlag{Name: "no-progress", Usage: "Disable the progress bar"},
		},
		Action: runScan,
	}
}

func runScan(c *cli.Context) error {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := result.Config

	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}

	roots := c.Args().Slice()
	if len(roots) == 0 {
		roots = []string{"."}
	}

	var files []discover.File
	for _, root := range roots {
		found, err := discover.Walk(discover.Options{
			Root:            root,
			ExcludePatterns: cfg.Exclude.Patterns,
			UseIgnoreFile:   cfg.Exclude.Gitignore,
			FormatsExts:     cfg.Detection.FormatsExts,
		})
		if err != nil {
			return fmt.Errorf("discover %s: %w", root, err)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		color.Yellow("no recognized source files found")
		return nil
	}

	detCfg := cfg.Detection.ToClone()

	var tokenCache *cache.TokenCache
	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		tokenCache = cache.NewTokenCache(c, detCfg.Mode)
	}

	sources := make([]clone.Source, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			color.Yellow("skipping %s: %v", f.Path, err)
			continue
		}
		src := clone.Source{ID: f.Path, Format: f.Format, Text: string(data)}
		if tokenCache != nil {
			src = withPrebuiltFrames(src, data, tokenCache, detCfg)
		}
		sources = append(sources, src)
	}

	stat := clone.NewStatistic()

	var subs []clone.Subscriber
	reporter := reportfmt.New(reportfmt.ParseFormat(cfg.Output.Format), os.Stdout, cfg.Output.Color, stat)
	if !c.Bool("silent") {
		subs = append(subs, reporter)
	}
	if !c.Bool("no-progress") {
		subs = append(subs, progress.NewSubscriber("scanning", len(sources)))
	}

	driver := clone.NewDriver(detCfg, clone.NewMemoryStore(), 0, subs...)
	driverResult, err := runDriver(c.Context, driver, sources, stat)
	if err != nil {
		return err
	}

	if c.Bool("silent") {
		return gateCheck(cfg.Gate.MaxPercentage, driverResult.Stat.Total.Percentage)
	}
	return nil
}

// withPrebuiltFrames consults tokenCache for src's content hash and, on a
// hit, attaches the cached significant tokens and frames so the Detector
// skips tokenizing and frame-building for this file (pkg/clone.Source's
// PrebuiltFrames field). On a miss it runs the same pipeline DetectFile
// would have run anyway, then stores the result for the next scan.
func withPrebuiltFrames(src clone.Source, data []byte, tc *cache.TokenCache, cfg clone.Config) clone.Source {
	hash := cache.HashBytes(data)

	if tokens, frames, ok := tc.Lookup(src.ID, hash); ok {
		src.PrebuiltTokens = tokens
		src.PrebuiltFrames = frames
		return src
	}

	tokens, err := clone.Tokenize(src.Text, src.Format)
	if err != nil {
		return src
	}
	tokens = clone.EnrichWithSemanticTokens(src.Text, src.Format, tokens)
	significant := clone.FilterSignificant(tokens, cfg.Mode, cfg.IgnoreCase)
	frames := clone.BuildFramesFromSignificant(src.ID, significant, cfg.Mode, cfg.MinTokens, cfg.IgnoreCase)

	if err := tc.Store(src.ID, hash, significant, frames); err != nil {
		color.Yellow("cache store failed for %s: %v", src.ID, err)
	}

	src.PrebuiltTokens = significant
	src.PrebuiltFrames = frames
	return src
}

func runDriver(ctx context.Context, driver *clone.Driver, sources []clone.Source, stat *clone.Statistic) (*clone.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := driver.Run(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("run detection: %w", err)
	}
	return result, nil
}

func gateCheck(maxPercentage, actual float64) error {
	if maxPercentage <= 0 {
		return nil
	}
	if actual > maxPercentage {
		return fmt.Errorf("duplication %.2f%% exceeds gate threshold %.2f%%", actual, maxPercentage)
	}
	return nil
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Re-render a previously saved JSON result in a different format",
		ArgsUsage: "<result.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format: table, json, toon"},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("report requires exactly one path to a saved JSON result")
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}

	var saved struct {
		Clones []clone.Clone `json:"clones"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	stat := clone.NewStatistic()
	reporter := reportfmt.New(reportfmt.ParseFormat(c.String("format")), os.Stdout, true, stat)
	for _, cl := range saved.Clones {
		reporter.OnCloneFound(clone.Event{Name: clone.EventCloneFound, Clone: cl})
	}
	return reporter.WaitForCompletion()
}
