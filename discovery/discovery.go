// Package discovery locates codebook files on disk. Sources declare
// glob patterns; the survey year is carried in the file name itself
// (h2020cb.txt, x95cb.htm, px22cb.txt), so discovery yields ready-to-
// parse (path, source, track, year) tuples.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hrstools/codebook/config"
	"github.com/hrstools/codebook/model"
)

// File is one discovered codebook document.
type File struct {
	// Path is relative to the configured data directory, slash
	// separated.
	Path string `json:"path"`

	// Source and Track identify the owning source config.
	Source string      `json:"source"`
	Track  model.Track `json:"track"`

	// Year extracted from the file name.
	Year int `json:"year"`
}

// Finder discovers codebook files for every configured source.
type Finder struct {
	cfg *config.Config
	log *slog.Logger
}

// NewFinder builds a Finder. A nil config uses the defaults.
func NewFinder(cfg *config.Config, log *slog.Logger) *Finder {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Finder{cfg: cfg, log: log}
}

// Discover walks the data directory and returns every file matching a
// source pattern whose extracted year the source lists. Files with no
// readable year are skipped with a log line, not an error. Results are
// sorted by source, year, and path.
func (f *Finder) Discover() ([]File, error) {
	if _, err := os.Stat(f.cfg.DataDir); err != nil {
		return nil, fmt.Errorf("data dir %s: %w", f.cfg.DataDir, err)
	}
	fsys := os.DirFS(f.cfg.DataDir)

	var files []File
	seen := make(map[string]bool)

	for _, src := range f.cfg.Sources {
		for _, pattern := range src.Patterns {
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				return nil, fmt.Errorf("source %s: pattern %q: %w", src.Name, pattern, err)
			}
			for _, m := range matches {
				key := src.Name + "\x00" + m
				if seen[key] {
					continue
				}
				seen[key] = true

				file, ok := f.classify(&src, m)
				if !ok {
					continue
				}
				files = append(files, file)
			}
		}
	}

	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Path < b.Path
	})
	return files, nil
}

// Resolve maps an absolute or data-dir-relative path onto its source, or
// false when no source pattern claims it.
func (f *Finder) Resolve(path string) (File, bool) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(f.cfg.DataDir, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return File{}, false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)

	for _, src := range f.cfg.Sources {
		for _, pattern := range src.Patterns {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil || !ok {
				continue
			}
			return f.classify(&src, rel)
		}
	}
	return File{}, false
}

func (f *Finder) classify(src *config.SourceConfig, rel string) (File, bool) {
	year, err := YearFromFilename(filepath.Base(rel))
	if err != nil {
		f.log.Debug("skipping file with no readable year", "source", src.Name, "path", rel)
		return File{}, false
	}
	if len(src.Years) > 0 && !containsInt(src.Years, year) {
		f.log.Debug("skipping file outside source years", "source", src.Name, "path", rel, "year", year)
		return File{}, false
	}
	return File{
		Path:   rel,
		Source: src.Name,
		Track:  src.Track,
		Year:   year,
	}, true
}

// yearRe captures the 2- or 4-digit year between the track prefix and
// the "cb" suffix: h2020cb.txt, x95cb.htm, px22cb.txt.
var yearRe = regexp.MustCompile(`(?i)^(?:px|h|x)(\d{4}|\d{2})cb`)

// YearFromFilename extracts the survey year from a codebook file name.
// Two-digit years pivot at 50: 95 is 1995, 22 is 2022.
func YearFromFilename(name string) (int, error) {
	m := yearRe.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("no year in filename %q", name)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("no year in filename %q", name)
	}
	switch {
	case year >= 1000:
		return year, nil
	case year < 50:
		return 2000 + year, nil
	default:
		return 1900 + year, nil
	}
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
