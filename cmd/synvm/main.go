// Package main provides the CLI entry point for synvm.
//
// Usage:
//
//	synvm run challenge.bin        # Execute a program image
//	synvm challenge.bin            # Same as run
//	synvm run -stats prog.asm      # Execute assembly and print an opcode histogram
//	synvm asm prog.asm -o prog.bin # Assemble to a binary image
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhildatla/synvm/internal/logging"
	"github.com/akhildatla/synvm/pkg/compiler"
	"github.com/akhildatla/synvm/pkg/config"
	"github.com/akhildatla/synvm/pkg/embed"
	"github.com/akhildatla/synvm/pkg/loader"
	"github.com/akhildatla/synvm/pkg/report"
	"github.com/akhildatla/synvm/pkg/vm"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stdout)
		return nil
	}

	switch args[0] {
	case "run":
		return runCommand(args[1:], stdin, stdout, stderr)
	case "asm":
		return asmCommand(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "synvm version %s\n", version)
		if commit != "none" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		}
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		// synvm <image> is shorthand for synvm run <image>
		return runCommand(args, stdin, stdout, stderr)
	}
}

// parseFlags parses args, treating -h as a successful no-op.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func runCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "verbose output (debug logging)")
	configPath := fs.String("config", "", "config file (default: nearest "+config.FileName+")")
	maxSteps := fs.Int64("max-steps", 0, "instruction limit, 0 for none")
	timeout := fs.Duration("timeout", 0, "wall-clock limit, e.g. 30s")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "log format: console or json")
	stats := fs.Bool("stats", false, "print an opcode histogram to stderr")
	reportPath := fs.String("report", "", "write a CBOR run report to this file")

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: synvm run [flags] <image>")
	}
	path := fs.Arg(0)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(*configPath, cwd)
	if err != nil {
		return err
	}

	// Flags override file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		case "timeout":
			cfg.Timeout = *timeout
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "stats":
			cfg.Stats = *stats
		case "report":
			cfg.Report = *reportPath
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	runID := uuid.NewString()
	log.Debug("configuration",
		zap.String("run_id", runID),
		zap.String("config", cfg.Path),
		zap.Int64("max_steps", cfg.MaxSteps),
		zap.Duration("timeout", cfg.Timeout))

	words, err := loader.Load(path)
	if err != nil {
		return err
	}
	log.Debug("image loaded",
		zap.String("run_id", runID),
		zap.String("path", path),
		zap.String("format", string(loader.DetectFormat(path))),
		zap.Int("words", len(words)))

	var st vm.ExecutionStats
	opts := []embed.Option{
		embed.WithInput(stdin),
		embed.WithOutput(stdout),
		embed.WithLogger(log),
		embed.WithRunID(runID),
		embed.WithMaxInstructions(cfg.MaxSteps),
		embed.WithTimeout(cfg.Timeout),
	}
	if cfg.Stats || cfg.Report != "" {
		opts = append(opts, embed.WithStats(&st))
	}

	start := time.Now()
	res, runErr := embed.Execute(words, opts...)
	log.Debug("run finished",
		zap.String("run_id", runID),
		zap.Stringer("state", res.State),
		zap.Duration("elapsed", time.Since(start)))

	if cfg.Stats {
		fmt.Fprintf(stderr, "\n%s: %d steps, pc %d\n", res.State, res.Steps, res.PC)
		fmt.Fprint(stderr, report.Histogram(&st))
	}
	if cfg.Report != "" {
		if err := report.WriteFile(cfg.Report, report.New(runID, path, res, runErr, &st)); err != nil {
			log.Error("writing report", zap.String("run_id", runID), zap.Error(err))
			if runErr == nil {
				return err
			}
		}
	}

	return runErr
}

func asmCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("asm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "output file (default: input with .bin extension)")

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: synvm asm [-o out.bin] <file.asm>")
	}

	inputPath := fs.Arg(0)
	outputPath := *output
	if outputPath == "" {
		// Replace extension with .bin
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".bin"
	}
	if outputPath == inputPath {
		return fmt.Errorf("output would overwrite %s", inputPath)
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	words, err := compiler.Assemble(string(source))
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	if err := os.WriteFile(outputPath, vm.EncodeImage(words), 0644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}

	fmt.Fprintf(stdout, "Assembled: %s (%d words)\n", outputPath, len(words))
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `synvm - a 16-bit word virtual machine with eight registers and a call stack

Usage:
  synvm <command> [arguments]
  synvm <image>                 Shorthand for synvm run <image>

Commands:
  run <image>           Execute a program (.bin, .asm, .csv, .json, .parquet)
  asm <file.asm>        Assemble source to a binary image
  version               Print version information
  help                  Show this help message

Run Options:
  -v                    Verbose output (debug logging)
  -config <file>        Config file (default: nearest synvm.toml)
  -max-steps <n>        Instruction limit (0 for none)
  -timeout <d>          Wall-clock limit, e.g. 30s
  -log-level <level>    debug, info, warn, error (default: warn)
  -log-format <fmt>     console or json
  -stats                Print an opcode histogram to stderr
  -report <file>        Write a CBOR run report

Asm Options:
  -o <file>             Output file (default: input with .bin extension)

Environment:
  SYNVM_MAX_STEPS SYNVM_TIMEOUT SYNVM_LOG_LEVEL SYNVM_LOG_FORMAT SYNVM_STATS SYNVM_REPORT

Examples:
  synvm challenge.bin
  synvm run -max-steps 1000000 -stats challenge.bin
  synvm asm hello.asm -o hello.bin`)
}
