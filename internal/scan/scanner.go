package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ScannedFile represents a regular file found during a tree scan.
type ScannedFile struct {
	RelPath string // Relative path from the scan root (e.g., "docs/install.md")
	Folder  string // Folder path (path components except filename, e.g., "docs")
	AbsPath string // Path as passed to the filesystem (root joined with RelPath)
}

// Scanner walks a directory tree and lists its regular files.
type Scanner struct {
	skipDirs map[string]struct{}
}

// NewScanner creates a scanner. Directories whose base name is in skipDirs are
// not descended into; every other directory is traversed.
func NewScanner(skipDirs ...string) *Scanner {
	s := &Scanner{skipDirs: make(map[string]struct{}, len(skipDirs))}
	for _, d := range skipDirs {
		if d != "" {
			s.skipDirs[d] = struct{}{}
		}
	}
	return s
}

// Scan walks root and returns every regular file under it in lexical order.
// Symbolic links are reported by filepath.Walk but not followed, and are not
// returned. The first access error aborts the scan.
func (s *Scanner) Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	var scannedFiles []ScannedFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if _, skip := s.skipDirs[info.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		folder := filepath.Dir(relPath)
		if folder == "." {
			folder = ""
		}

		scannedFiles = append(scannedFiles, ScannedFile{
			RelPath: relPath,
			Folder:  folder,
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return scannedFiles, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return scannedFiles, nil
}
