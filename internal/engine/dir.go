package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ably/internal/source"
	"ably/internal/trace"
)

// FileResult содержит результат проверки одного файла
type FileResult struct {
	Path   string
	Result *Result // nil when Err is set
	Err    error
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// IsHTML reports whether path names an HTML document.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// ListHTMLFiles возвращает отсортированный список всех HTML файлов в директории
func ListHTMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if IsHTML(path) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckFiles loads every path into one FileSet and checks them in parallel
// with at most jobs passes in flight (jobs <= 0 means GOMAXPROCS). Load and
// pass failures are recorded per file; only cancellation aborts the run.
// Results keep the order of paths.
func (e *Engine) CheckFiles(ctx context.Context, baseDir string, paths []string, jobs int) (*source.FileSet, []FileResult, error) {
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "check-files")
	defer span.End("")

	fileSet := source.NewFileSetWithBase(baseDir)
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	// Предзагружаем все файлы: FileSet не потокобезопасен
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		emitProgress(e.opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadError := loadErrors[path]; hadError {
				err := fmt.Errorf("failed to load file: %w", loadErr)
				results[i] = FileResult{Path: path, Err: err}
				emitProgress(e.opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
				return nil
			}

			start := time.Now()
			res, err := e.Check(gctx, fileSet, fileIDs[path])
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i] = FileResult{Path: path, Err: err}
				emitProgress(e.opts.Progress, Event{File: path, Stage: StageEmit, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return nil
			}
			results[i] = FileResult{Path: path, Result: res}
			emitProgress(e.opts.Progress, Event{File: path, Stage: StageEmit, Status: StatusDone, Elapsed: time.Since(start), Problems: len(res.Diagnostics)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
