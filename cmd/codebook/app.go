package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hrstools/codebook/config"
	"github.com/hrstools/codebook/discovery"
	"github.com/hrstools/codebook/model"
	"github.com/hrstools/codebook/parse"
)

// appContext carries the resolved configuration and wired pipeline
// shared by all subcommands.
type appContext struct {
	configPath string
	dataDir    string
	logLevel   string

	cfg    *config.Config
	log    *slog.Logger
	finder *discovery.Finder
	parser *parse.Parser
}

// setup runs once per invocation: logging, config load, validation, and
// pipeline wiring.
func (a *appContext) setup() error {
	level := slog.LevelInfo
	switch strings.ToLower(a.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)

	cfg := config.DefaultConfig()
	if a.configPath != "" {
		loaded, err := config.LoadFromFile(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.finder = discovery.NewFinder(cfg, a.log)
	a.parser = parse.New(cfg, parse.WithLogger(a.log))
	return nil
}

// parsedFile is one file's pipeline output.
type parsedFile struct {
	File     discovery.File  `json:"file"`
	Codebook *model.Codebook `json:"codebook"`
	Report   *parse.Report   `json:"report"`
}

// parseFile runs the pipeline for one discovered file.
func (a *appContext) parseFile(file discovery.File) (*parsedFile, error) {
	data, err := os.ReadFile(filepath.Join(a.cfg.DataDir, filepath.FromSlash(file.Path)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Path, err)
	}

	cb, report, err := a.parser.Parse(file.Source, file.Track, file.Year, string(data))
	if err != nil {
		return nil, err
	}

	a.log.Info("parsed codebook",
		"path", file.Path,
		"source", file.Source,
		"year", file.Year,
		"variables", cb.TotalVariables,
		"report_entries", len(report.Entries))

	return &parsedFile{File: file, Codebook: cb, Report: report}, nil
}

// parseAll parses every discovered file, optionally filtered by source
// name. Per-file failures are logged and skipped; the pipeline keeps
// going.
func (a *appContext) parseAll(source string) ([]*parsedFile, error) {
	files, err := a.finder.Discover()
	if err != nil {
		return nil, err
	}

	var out []*parsedFile
	for _, file := range files {
		if source != "" && file.Source != source {
			continue
		}
		pf, err := a.parseFile(file)
		if err != nil {
			a.log.Error("parse failed", "path", file.Path, "error", err)
			continue
		}
		out = append(out, pf)
	}
	return out, nil
}

// collectVariables flattens the parsed codebooks' variables in file
// order.
func collectVariables(parsed []*parsedFile) []model.Variable {
	var vars []model.Variable
	for _, pf := range parsed {
		vars = append(vars, pf.Codebook.Variables...)
	}
	return vars
}

// writeJSON emits v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
