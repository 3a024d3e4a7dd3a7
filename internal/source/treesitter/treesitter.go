// Package treesitter resolves functions and their call-site references from
// a source tree parsed with tree-sitter.
package treesitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/phobologic/llmexplain/internal/collect"
	"github.com/phobologic/llmexplain/internal/discover"
	"github.com/phobologic/llmexplain/internal/graph"
	"github.com/phobologic/llmexplain/internal/lang"
	"github.com/phobologic/llmexplain/internal/model"
	"github.com/phobologic/llmexplain/internal/parse"
	"github.com/phobologic/llmexplain/internal/source"
)

const defaultMaxFileSize = 1_000_000 // 1 MB

// Options configures Open.
type Options struct {
	// File restricts target lookup to one file, relative to the root.
	File        string
	Languages   []string
	MaxFileSize int64
	// SkipTests leaves test files out of the index.
	SkipTests bool
	// Workers bounds parse concurrency. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// Source is a source.Provider over a parsed directory tree.
type Source struct {
	file   string
	files  []model.FileInfo
	index  *graph.Index
	logger *zap.Logger
}

var _ source.Provider = (*Source)(nil)

// Open discovers and parses every supported file under root.
func Open(ctx context.Context, root string, opts Options) (*Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	entries, err := discover.Files(root, discover.Options{
		Languages:   opts.Languages,
		MaxFileSize: opts.MaxFileSize,
		SkipTests:   opts.SkipTests,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no parseable files found under %s", root)
	}

	files, err := parseFiles(ctx, root, entries, opts.Workers, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed source tree",
		zap.String("root", root),
		zap.Int("discovered", len(entries)),
		zap.Int("parsed", len(files)),
	)

	file := opts.File
	if file != "" {
		if filepath.IsAbs(file) {
			if rel, err := filepath.Rel(root, file); err == nil {
				file = rel
			}
		}
		file = filepath.Clean(file)
	}

	return &Source{
		file:   file,
		files:  files,
		index:  graph.BuildIndex(files),
		logger: logger,
	}, nil
}

// Files returns the parsed files in path order.
func (s *Source) Files() []model.FileInfo {
	return s.files
}

// Function implements source.FunctionSource.
func (s *Source) Function(ctx context.Context, name string) (model.TargetFunction, error) {
	def, err := s.find(ctx, name)
	if err != nil {
		return model.TargetFunction{}, err
	}
	return model.TargetFunction{Name: def.Name, Source: def.Source()}, nil
}

// References implements source.ReferenceSource. Source text of each callee
// is read only when the collector asks for it.
func (s *Source) References(ctx context.Context, name string) ([]model.RawReference, error) {
	def, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}

	edges := s.index.Callees(def)
	refs := make([]model.RawReference, 0, len(edges))
	for _, e := range edges {
		callee := e.Callee
		refs = append(refs, model.RawReference{
			Identifier: collect.Identifier(callee.File, callee.Name),
			Source:     callee.Source,
		})
	}
	s.logger.Debug("resolved references",
		zap.String("function", def.Name),
		zap.Int("call_sites", len(refs)),
	)
	return refs, nil
}

func (s *Source) find(ctx context.Context, name string) (graph.Definition, error) {
	if err := ctx.Err(); err != nil {
		return graph.Definition{}, err
	}

	defs := s.index.Lookup(name)
	if s.file != "" {
		var inFile []graph.Definition
		for _, d := range defs {
			if filepath.Clean(d.File) == s.file {
				inFile = append(inFile, d)
			}
		}
		defs = inFile
	}

	switch len(defs) {
	case 0:
		if s.file != "" {
			return graph.Definition{}, fmt.Errorf("%s in %s: %w", name, s.file, source.ErrFunctionNotFound)
		}
		return graph.Definition{}, fmt.Errorf("%s: %w", name, source.ErrFunctionNotFound)
	case 1:
		return defs[0], nil
	}

	candidates := make([]string, len(defs))
	for i, d := range defs {
		candidates[i] = fmt.Sprintf("%s (%s:%d)", d.Name, d.File, d.Line)
	}
	sort.Strings(candidates)
	return graph.Definition{}, fmt.Errorf("%s matches %s: %w",
		name, strings.Join(candidates, ", "), source.ErrAmbiguousFunction)
}

type parserPair struct {
	lang   *lang.Language
	parser *sitter.Parser
	query  *sitter.Query
}

// parseFiles parses files with a pool of workers, each owning one parser per
// language. Results keep the order of files; unreadable files are skipped.
func parseFiles(ctx context.Context, root string, files []discover.FileEntry, workers int, logger *zap.Logger) ([]model.FileInfo, error) {
	type result struct {
		index int
		info  model.FileInfo
	}

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Parsers are not safe for concurrent use.
			parsers := make(map[string]*parserPair)

			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				f := files[idx]
				pp, ok := parsers[f.Language]
				if !ok {
					l := lang.Languages[f.Language]
					q, err := l.GetTagQuery()
					if err != nil {
						logger.Warn("failed to compile query", zap.String("language", f.Language), zap.Error(err))
						continue
					}
					pp = &parserPair{lang: l, parser: l.NewParser(), query: q}
					parsers[f.Language] = pp
				}

				src, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					logger.Warn("failed to read file", zap.String("path", f.Path), zap.Error(err))
					continue
				}

				results <- result{
					index: idx,
					info: model.FileInfo{
						Path:     f.Path,
						Language: f.Language,
						Source:   src,
						Tags:     parse.ExtractTags(ctx, pp.lang, pp.parser, pp.query, src, f.Path),
					},
				}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	indexed := make([]model.FileInfo, len(files))
	valid := make([]bool, len(files))
	for r := range results {
		indexed[r.index] = r.info
		valid[r.index] = true
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parsing files: %w", err)
	}

	var out []model.FileInfo
	for i, ok := range valid {
		if ok {
			out = append(out, indexed[i])
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no files could be parsed")
	}
	return out, nil
}
