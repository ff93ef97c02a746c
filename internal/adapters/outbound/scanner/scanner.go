package scanner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/complyai/comply/internal/adapters/outbound/parser"
	"github.com/complyai/comply/internal/domain"
	"github.com/complyai/comply/internal/domain/textnorm"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"bin":          true,
	"__pycache__":  true,
	".venv":        true,
}

// sourceExts lists the files whose identifiers are worth tokenizing. Config
// formats are included because TLS and hashing switches often live there.
var sourceExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".kt": true, ".rb": true, ".php": true, ".cs": true, ".rs": true,
	".scala": true, ".swift": true, ".c": true, ".h": true, ".cpp": true,
	".sql": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".cfg": true,
}

const (
	maxReadSize = 64 * 1024 // per-file read cap
	maxFiles    = 2000
)

// FileScanner implements domain.RepositoryInspector by walking the filesystem.
type FileScanner struct {
	maxFiles int
	goParser *parser.GoParser
}

func New() *FileScanner {
	return &FileScanner{maxFiles: maxFiles, goParser: parser.New()}
}

// WithMaxFiles caps the number of files tokenized per inspection.
func (s *FileScanner) WithMaxFiles(n int) *FileScanner {
	if n > 0 {
		s.maxFiles = n
	}
	return s
}

func (s *FileScanner) Inspect(ctx context.Context, root string) (*domain.RepoEvidence, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.WrapError(domain.KindFetch, "inspecting repository", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, domain.WrapError(domain.KindFetch, "inspecting repository", err)
	}
	if !info.IsDir() {
		return nil, domain.Errorf(domain.KindFetch, "inspecting repository", "%s is not a directory", absPath)
	}

	var paths []string
	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != absPath && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !sourceExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		relPath, _ := filepath.Rel(absPath, path)
		paths = append(paths, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.WrapError(domain.KindFetch, "walking repository", err)
	}

	// WalkDir is lexical already; sorting keeps the order stable across
	// platforms with different separators.
	sort.Strings(paths)

	ev := &domain.RepoEvidence{Root: absPath, Files: []domain.SourceFile{}}
	for _, rel := range paths {
		if len(ev.Files) >= s.maxFiles {
			ev.FilesSkipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := readCapped(filepath.Join(absPath, filepath.FromSlash(rel)))
		if err != nil {
			ev.FilesSkipped++
			continue
		}
		tokens := s.tokenize(rel, data)
		if tokens.Len() == 0 {
			continue
		}
		ev.Files = append(ev.Files, domain.SourceFile{Path: rel, Tokens: tokens})
	}
	return ev, nil
}

// tokenize parses Go files so comments are ignored. Anything else, and Go
// files cut short by the read cap, falls back to raw identifier splitting.
func (s *FileScanner) tokenize(rel string, data []byte) textnorm.Tokens {
	if strings.EqualFold(filepath.Ext(rel), ".go") {
		if toks, err := s.goParser.Tokens(rel, data); err == nil {
			return toks
		}
	}
	return textnorm.SplitIdentifier(string(data))
}

func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxReadSize))
}
