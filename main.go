package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/codetag/codetag/internal/analyze"
	"github.com/codetag/codetag/internal/config"
	"github.com/codetag/codetag/internal/distill"
	"github.com/codetag/codetag/internal/output"
	"github.com/codetag/codetag/internal/pack"
	"github.com/codetag/codetag/internal/report"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Optional per-project environment, e.g. CODETAG_DISABLED_ANALYZERS.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	app := &cli.Command{
		Name:    "codetag",
		Usage:   "Deterministic repository analysis and context packing",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file path (default: <path>/.codetag.yml)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Analyse a repository and emit the report JSON",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "include-hidden",
						Aliases: []string{"i"},
						Usage:   "Include hidden files and directories",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to FILE instead of stdout",
					},
					&cli.StringFlag{
						Name:  "exclude-dirs",
						Usage: "Comma-separated directory names to exclude",
					},
					&cli.StringFlag{
						Name:  "exclude-patterns",
						Usage: "Comma-separated glob patterns to exclude",
					},
					&cli.StringFlag{
						Name:  "rules",
						Usage: "YAML file of extra key-file rules, merged over the built-ins",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Analysis worker count (0 = GOMAXPROCS)",
					},
					&cli.IntFlag{
						Name:  "max-files",
						Usage: "Fail if the tree holds more files than this (0 = unlimited)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runScan(ctx, cmd, logger)
				},
			},
			{
				Name:      "pack",
				Usage:     "Concatenate repository files into a token-budgeted context pack",
				ArgsUsage: "[path]",
				Flags:     packFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runPack(ctx, cmd, logger, false)
				},
			},
			{
				Name:      "distill",
				Usage:     "Pack with per-file distillation, keeping declarations over bodies",
				ArgsUsage: "[path]",
				Flags: append(packFlags(),
					&cli.IntFlag{
						Name:    "level",
						Aliases: []string{"l"},
						Value:   1,
						Usage:   "Distillation level: 1 signatures, 2 outline",
					},
					&cli.BoolFlag{
						Name:  "anchors",
						Usage: "Prefix retained declarations with @<line> source anchors",
					},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runPack(ctx, cmd, logger, true)
				},
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("codetag version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

// packFlags returns the flag set shared by pack and distill.
func packFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "include-hidden",
			Aliases: []string{"i"},
			Usage:   "Include hidden files and directories",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the pack to FILE instead of stdout",
		},
		&cli.IntFlag{
			Name:  "max-tokens",
			Value: pack.DefaultMaxTokens,
			Usage: "Token budget for the pack",
		},
		&cli.IntFlag{
			Name:  "max-file-size-kb",
			Value: pack.DefaultMaxFileSizeKB,
			Usage: "Per-file size ceiling in KB",
		},
		&cli.StringFlag{
			Name:  "exclude-extensions",
			Usage: "Comma-separated file extensions to exclude",
		},
		&cli.StringFlag{
			Name:  "exclude-patterns",
			Usage: "Comma-separated glob patterns to exclude",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: string(pack.FormatRaw),
			Usage: "Output format: raw or markdown",
		},
		&cli.StringFlag{
			Name:  "tokenizer",
			Value: "estimate",
			Usage: "Token counting: estimate or exact",
		},
	}
}

func runScan(ctx context.Context, cmd *cli.Command, logger *logrus.Logger) error {
	if cmd.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}
	root, err := targetRoot(cmd)
	if err != nil {
		return err
	}
	cfg := config.Load(cmd.String("config"), root, logger)

	opts := analyze.Options{
		IncludeHidden:   config.Resolve(cmd.Bool("include-hidden"), cmd.IsSet("include-hidden"), cfg.Scan.IncludeHidden),
		ExcludeDirs:     config.SplitList(config.Resolve(cmd.String("exclude-dirs"), cmd.IsSet("exclude-dirs"), cfg.Scan.ExcludeDirs)),
		ExcludePatterns: config.SplitList(config.Resolve(cmd.String("exclude-patterns"), cmd.IsSet("exclude-patterns"), cfg.Scan.ExcludePatterns)),
		RulesPath:       config.Resolve(cmd.String("rules"), cmd.IsSet("rules"), cfg.Scan.Rules),
		Workers:         config.Resolve(cmd.Int("workers"), cmd.IsSet("workers"), cfg.Scan.Workers),
		MaxFiles:        config.Resolve(cmd.Int("max-files"), cmd.IsSet("max-files"), cfg.Scan.MaxFiles),
	}

	rep, err := analyze.Scan(ctx, root, opts, logger)
	if err != nil {
		return err
	}
	data, err := rep.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	dest := config.Resolve(cmd.String("output"), cmd.IsSet("output"), cfg.Scan.Output)
	if stdoutDest(dest) {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else if err := output.WriteFile(dest, data); err != nil {
		return err
	}

	scanSummary(rep, dest)
	return nil
}

func runPack(ctx context.Context, cmd *cli.Command, logger *logrus.Logger, distilling bool) error {
	if cmd.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}
	root, err := targetRoot(cmd)
	if err != nil {
		return err
	}
	cfg := config.Load(cmd.String("config"), root, logger)
	fileCfg := cfg.Pack
	if distilling {
		fileCfg = cfg.Distill.PackOptions
	}

	format := config.Resolve(cmd.String("format"), cmd.IsSet("format"), fileCfg.Format)
	switch pack.Format(format) {
	case pack.FormatRaw, pack.FormatMarkdown:
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	tokenizer := config.Resolve(cmd.String("tokenizer"), cmd.IsSet("tokenizer"), fileCfg.Tokenizer)
	switch tokenizer {
	case "estimate", "exact":
	default:
		return fmt.Errorf("unsupported tokenizer: %s", tokenizer)
	}

	opts := pack.Options{
		IncludeHidden:     config.Resolve(cmd.Bool("include-hidden"), cmd.IsSet("include-hidden"), fileCfg.IncludeHidden),
		ExcludePatterns:   config.SplitList(config.Resolve(cmd.String("exclude-patterns"), cmd.IsSet("exclude-patterns"), fileCfg.ExcludePatterns)),
		ExcludeExtensions: config.SplitList(config.Resolve(cmd.String("exclude-extensions"), cmd.IsSet("exclude-extensions"), fileCfg.ExcludeExtensions)),
		MaxTokens:         config.Resolve(cmd.Int("max-tokens"), cmd.IsSet("max-tokens"), fileCfg.MaxTokens),
		MaxFileSizeKB:     config.Resolve(cmd.Int("max-file-size-kb"), cmd.IsSet("max-file-size-kb"), fileCfg.MaxFileSizeKB),
		Format:            pack.Format(format),
		ExactTokenizer:    tokenizer == "exact",
	}
	if distilling {
		level := config.Resolve(cmd.Int("level"), cmd.IsSet("level"), cfg.Distill.Level)
		if level != int(distill.LevelSignatures) && level != int(distill.LevelOutline) {
			return fmt.Errorf("unsupported distillation level: %d", level)
		}
		opts.Level = distill.Level(level)
		opts.Anchors = config.Resolve(cmd.Bool("anchors"), cmd.IsSet("anchors"), cfg.Distill.Anchors)
	}

	dest := config.Resolve(cmd.String("output"), cmd.IsSet("output"), fileCfg.Output)
	var w io.Writer = os.Stdout
	var fw *output.FileWriter
	if !stdoutDest(dest) {
		if fw, err = output.NewFileWriter(dest); err != nil {
			return err
		}
		defer fw.Discard()
		w = fw
	}

	res, err := pack.Run(ctx, root, w, opts, logger)
	if err != nil {
		return err
	}
	if fw != nil {
		if err := fw.Commit(); err != nil {
			return err
		}
	}

	packSummary(res, dest, distilling)
	return nil
}

// targetRoot resolves the positional repository path, defaulting to the
// working directory.
func targetRoot(cmd *cli.Command) (string, error) {
	root := cmd.Args().First()
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", root, err)
	}
	return abs, nil
}

func stdoutDest(dest string) bool {
	return dest == "" || dest == "-"
}

func destName(dest string) string {
	if stdoutDest(dest) {
		return "stdout"
	}
	return dest
}

func scanSummary(rep *report.Report, dest string) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %d files, %d lines in %.2fs -> %s\n",
		green("scanned"),
		rep.RepositorySummary.TotalFiles,
		rep.RepositorySummary.TotalLinesOfCode,
		rep.AnalysisMetadata.AnalysisDurationSeconds,
		destName(dest))
	warnSummary(rep.Warnings)
}

func packSummary(res *pack.Result, dest string, distilling bool) {
	green := color.New(color.FgGreen).SprintFunc()
	verb := "packed"
	if distilling {
		verb = "distilled"
	}
	fmt.Fprintf(os.Stderr, "%s %d files, %d tokens -> %s (skipped %d, omitted %d)\n",
		green(verb), len(res.Emitted), res.TokensUsed, destName(dest), len(res.Skipped), len(res.Omitted))
	warnSummary(res.Warnings)
}

func warnSummary(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %d (run with --debug for detail)\n", yellow("warnings"), len(warnings))
}
