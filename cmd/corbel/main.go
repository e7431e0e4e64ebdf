// Command corbel generates a connector assembly for two analyzed parts
// from natural-language or scripted constraints, runs the full
// pipeline synchronously, and prints the terminal result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corbel-cad/corbel/pkg/analyze"
	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/config"
	"github.com/corbel-cad/corbel/pkg/export"
	"github.com/corbel-cad/corbel/pkg/kernel/sdfx"
	"github.com/corbel-cad/corbel/pkg/parse"
	"github.com/corbel-cad/corbel/pkg/pipeline"
	"github.com/corbel-cad/corbel/pkg/script"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "corbel:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		part1Path   = flag.String("part1", "", "path to the first part's analysis JSON (required)")
		part2Path   = flag.String("part2", "", "path to the second part's analysis JSON (required)")
		constraints = flag.String("constraints", "", "natural-language constraint text")
		scriptPath  = flag.String("script", "", "path to a constraint script (overrides -constraints)")
		configPath  = flag.String("config", "", "path to a YAML config file")
		outDir      = flag.String("out", "", "artifact output directory (overrides config)")
	)
	flag.Parse()

	if *part1Path == "" || *part2Path == "" {
		return fmt.Errorf("-part1 and -part2 are required")
	}
	if *constraints == "" && *scriptPath == "" {
		return fmt.Errorf("one of -constraints or -script is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *outDir != "" {
		cfg.ExportDir = *outDir
	}

	log, err := newLogger(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	var analyzer analyze.FileSource
	p1, err := analyzer.Analyze(ctx, *part1Path)
	if err != nil {
		return err
	}
	p2, err := analyzer.Analyze(ctx, *part2Path)
	if err != nil {
		return err
	}

	parsed, err := parseConstraints(ctx, cfg, *constraints, *scriptPath)
	if err != nil {
		return err
	}
	for _, c := range parsed.ClarificationsNeeded {
		log.Warnw("constraint needs clarification", "detail", c)
	}

	exporter := export.NewService(sdfx.New(cfg.MeshCells), cfg.ExportDir, log)
	pipe := pipeline.New(exporter, cfg.ExportFormats, cfg.RunTimeout.Std(), log)

	res := pipe.Execute(ctx, uuid.NewString(), pipeline.Request{
		Part1:       p1,
		Part2:       p2,
		Constraints: parsed.Constraints,
	})

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if res.Status == assembly.StatusFailed {
		return fmt.Errorf("run failed: %s", res.Error)
	}
	return nil
}

func parseConstraints(ctx context.Context, cfg config.Config, text, scriptPath string) (*parse.Result, error) {
	if scriptPath != "" {
		src, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		return script.NewEngine().Parse(ctx, string(src))
	}
	return parse.NewParser(cfg.ConfidenceThreshold).Parse(ctx, strings.TrimSpace(text))
}

func newLogger(mode string) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if mode == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger.Sugar(), nil
}
