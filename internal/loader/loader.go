package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/radolang/rado/ast"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Option configures a Load call.
type Option func(*loader)

// WithMode selects fail-fast or collect-all error handling.
func WithMode(mode LoadMode) Option {
	return func(l *loader) {
		l.mode = mode
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(l *loader) {
		l.log = log
	}
}

type loader struct {
	mode LoadMode
	log  *slog.Logger
}

// Load decodes every .cue file under dir into one ast.Source each, in
// lexicographic file order. Under LoadModeCollectAll the returned error is
// an ErrorList and the sources hold every statement that decoded cleanly.
func Load(dir string, opts ...Option) ([]ast.Source, error) {
	l := &loader{mode: LoadModeFailFast, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("source directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing source directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := findSourceFiles(dir)
	if err != nil {
		return nil, &Error{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	var sources []ast.Source
	var errs ErrorList

	for _, file := range files {
		src, fileErrs := l.loadFile(ctx, dir, file)
		if len(fileErrs) > 0 {
			if l.mode == LoadModeFailFast {
				return nil, fileErrs[0]
			}
			errs = append(errs, fileErrs...)
		}
		sources = append(sources, src)
	}

	l.log.Debug("sources loaded", "dir", dir, "files", len(files), "errors", len(errs))

	if len(errs) > 0 {
		return sources, errs
	}
	return sources, nil
}

// loadFile builds one file into one source. Under collect-all the source
// keeps every statement that decoded cleanly.
func (l *loader) loadFile(ctx *cue.Context, dir, file string) (ast.Source, []*Error) {
	src := ast.Source{Name: sourceName(file)}

	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"./" + file}, cfg)
	if len(instances) == 0 {
		return src, []*Error{{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: no CUE instance loaded", file)}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return src, []*Error{{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading %s: %v", file, inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return src, []*Error{{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building %s: %v", file, err)}}
	}

	d := &decoder{mode: l.mode}
	src = d.source(value, src.Name)
	return src, d.errs
}

// findSourceFiles returns all .cue paths under dir, relative to dir, in
// lexicographic order. Load order is semantic, so the sort is part of the
// contract.
func findSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// sourceName derives the source name from the file path: base name without
// the .cue extension. A name field in the file overrides it.
func sourceName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, ".cue")
}
