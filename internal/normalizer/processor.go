package normalizer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"anchornorm/internal/anchor"
	"anchornorm/internal/contextutil"
)

// DefaultExtension is the file name suffix of files the processor rewrites.
const DefaultExtension = ".md"

// Result describes what ProcessFile did with one file.
type Result struct {
	Path       string
	Skipped    bool // Not a Markdown file; never opened
	Lines      int
	Headers    int // Distinct header texts found
	Rewritten  int // References pointed at a header slug
	Unmatched  int // References whose text names no header
	Changed    bool
	HashBefore string // SHA256 hex of the original content
	HashAfter  string // SHA256 hex of the rewritten content
}

// Processor rewrites the anchor references of a single Markdown file.
type Processor struct {
	ext    string
	dryRun bool
}

// NewProcessor creates a processor for files ending in ext (DefaultExtension
// when empty). In dry-run mode files are read and analysed but never written.
func NewProcessor(ext string, dryRun bool) *Processor {
	if ext == "" {
		ext = DefaultExtension
	}
	return &Processor{ext: ext, dryRun: dryRun}
}

// DryRun reports whether the processor leaves files untouched.
func (p *Processor) DryRun() bool {
	return p.dryRun
}

// Matches reports whether path names a file the processor rewrites.
func (p *Processor) Matches(path string) bool {
	return strings.HasSuffix(path, p.ext)
}

// ProcessFile rewrites the anchor references in the file at path.
//
// The header set is collected from the original content before any line is
// rewritten. The new content, one line per input line each ending in "\n", is
// written to a temp file beside the original and then renamed over it, so the
// original is either fully replaced or left untouched.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	res := Result{Path: path}

	if !p.Matches(path) {
		res.Skipped = true
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, fileError(ErrRead, path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return res, fileError(ErrRead, path, err)
	}

	lines := splitLines(content)
	out, headers, stats := anchor.RewriteLines(lines)
	rewritten := joinLines(out)

	res.Lines = len(lines)
	res.Headers = len(headers)
	res.Rewritten = stats.Rewritten
	res.Unmatched = stats.Unmatched
	res.HashBefore = hashHex(content)
	res.HashAfter = hashHex(rewritten)
	res.Changed = !bytes.Equal(content, rewritten)

	if p.dryRun {
		if res.Changed {
			logger.InfoContext(ctx, "file would change", "path", path, "rewritten", res.Rewritten, "unmatched", res.Unmatched)
		} else {
			logger.DebugContext(ctx, "file unchanged", "path", path, "unmatched", res.Unmatched)
		}
		return res, nil
	}

	if err := replaceFile(path, rewritten, info.Mode().Perm()); err != nil {
		return res, err
	}

	logger.DebugContext(ctx, "rewrote file", "path", path, "rewritten", res.Rewritten, "unmatched", res.Unmatched, "changed", res.Changed)
	return res, nil
}

// replaceFile writes data to a fresh temp file in the directory of path and
// renames it over path. The temp file is removed on any failure.
func replaceFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fileError(ErrWrite, path, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fileError(ErrWrite, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fileError(ErrWrite, path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fileError(ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fileError(ErrWrite, path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fileError(ErrReplace, path, err)
	}
	committed = true
	return nil
}

// splitLines splits content into lines terminated by "\n", "\r\n" or a lone
// "\r". Terminators are dropped; a final terminator does not produce an
// empty trailing line.
func splitLines(content []byte) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			lines = append(lines, string(content[start:i]))
			start = i + 1
		case '\r':
			lines = append(lines, string(content[start:i]))
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

// joinLines writes every line followed by "\n".
func joinLines(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func hashHex(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
