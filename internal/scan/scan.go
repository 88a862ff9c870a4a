// Package scan runs marker decisions over files on disk.
package scan

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"linemark/internal/javasyntax"
	"linemark/internal/markcfg"
	"linemark/internal/marker"
	"linemark/internal/observ"
	"linemark/internal/source"
	"linemark/internal/trace"
)

// Options configures a scan.
type Options struct {
	Paths    []string        // files and directories; directories contribute their *.java files
	Config   *markcfg.Config // nil behaves as disabled
	Language string          // supported language id, marker.LanguageJava when empty
	Jobs     int             // parallel parses, GOMAXPROCS when <= 0
	BaseDir  string          // relative report paths start here, the working directory when empty
	Timer    *observ.Timer   // optional phase timings
}

// Hit is one marker found on disk.
type Hit struct {
	Path string `json:"path" msgpack:"path"`
	Name string `json:"name" msgpack:"name"`
	Line int    `json:"line" msgpack:"line"`
	Col  int    `json:"col" msgpack:"col"`
	Node string `json:"node" msgpack:"node"`
	Icon string `json:"icon" msgpack:"icon"`
	Text string `json:"text" msgpack:"text"`
}

// FileError records a file that could not be inspected. It does not stop the scan.
type FileError struct {
	Path string `json:"path" msgpack:"path"`
	Err  string `json:"error" msgpack:"error"`
}

// Report is the result of Run.
type Report struct {
	Enabled bool        `json:"enabled" msgpack:"enabled"`
	Files   int         `json:"files" msgpack:"files"`
	Hits    []Hit       `json:"hits" msgpack:"hits"`
	Errors  []FileError `json:"errors,omitempty" msgpack:"errors,omitempty"`

	baseDir string
}

// Run lists the requested files, parses them in parallel and collects markers.
func Run(ctx context.Context, opts Options) (*Report, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "scan", trace.CurrentSpan(ctx))
	defer span.End("")

	cfg := opts.Config
	if cfg == nil {
		cfg = markcfg.Disabled()
	}
	language := opts.Language
	if language == "" {
		language = marker.LanguageJava
	}

	phase := opts.Timer.Begin("list")
	files, err := listFiles(opts.Paths)
	if err != nil {
		opts.Timer.End(phase, "failed")
		return nil, err
	}
	opts.Timer.End(phase, fmt.Sprintf("%d files", len(files)))

	// Загружаем файлы последовательно: FileSet не потокобезопасен на запись
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	report := &Report{Enabled: cfg.Loaded(), Files: len(files), baseDir: fileSet.BaseDir()}
	ids := make([]source.FileID, len(files))
	loaded := make([]bool, len(files))
	phase = opts.Timer.Begin("load")
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			trace.Error(tracer, trace.ScopeFile, "load:"+path, err, span.ID())
			report.Errors = append(report.Errors, FileError{Path: path, Err: err.Error()})
			continue
		}
		ids[i] = id
		loaded[i] = true
	}
	opts.Timer.End(phase, "")
	span.WithExtra("files", strconv.Itoa(len(files)))

	if !cfg.Loaded() {
		// без конфигурации маркеров не бывает, разбирать нечего
		trace.Point(tracer, trace.ScopeDriver, "scan", "marker config disabled", span.ID())
		return report, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	phase = opts.Timer.Begin("parse")
	defer opts.Timer.End(phase, "")

	results := make([][]Hit, len(files))
	parseErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i := range files {
		if !loaded[i] {
			continue
		}
		file := fileSet.Get(ids[i])
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hits, err := scanFile(gctx, file, cfg, language, span.ID())
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				parseErrs[i] = err
				return nil
			}
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, err := range parseErrs {
		if err != nil {
			report.Errors = append(report.Errors, FileError{Path: files[i], Err: err.Error()})
		}
	}
	for _, hits := range results {
		report.Hits = append(report.Hits, hits...)
	}
	slices.SortStableFunc(report.Hits, func(a, b Hit) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(a.Line, b.Line), cmp.Compare(a.Col, b.Col))
	})
	span.WithExtra("markers", strconv.Itoa(len(report.Hits)))
	return report, nil
}

func scanFile(ctx context.Context, file *source.File, cfg *markcfg.Config, language string, parent uint64) ([]Hit, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "scan:"+file.Path, parent)

	tree, err := javasyntax.Parse(ctx, file, javasyntax.LanguageForPath(file.Path))
	if err != nil {
		span.End("parse failed")
		return nil, err
	}
	defer tree.Close()

	provider := marker.NewProviderForLanguage[javasyntax.Node](tree, cfg, language)
	markers := tree.Markers(provider)
	hits := make([]Hit, 0, len(markers))
	for _, m := range markers {
		pos := file.Position(m.Target.Offset())
		trace.Point(tracer, trace.ScopeNode, "marker", fmt.Sprintf("%s:%d %s", m.File, m.Line, m.Target.Type()), span.ID())
		hits = append(hits, Hit{
			Path: file.Path,
			Name: m.File,
			Line: m.Line,
			Col:  int(pos.Col),
			Node: m.Target.Type(),
			Icon: m.Icon.String(),
			Text: strings.TrimSpace(file.GetLine(pos.Line)),
		})
	}
	span.End(fmt.Sprintf("%d markers", len(hits)))
	return hits, nil
}

// listFiles expands directories into their *.java files. Explicit files are kept whatever their extension.
func listFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".java") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", root, err)
		}
		// Сортируем для детерминированного порядка
		slices.Sort(found)
		for _, path := range found {
			add(path)
		}
	}
	return files, nil
}
