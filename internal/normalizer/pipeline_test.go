package normalizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"anchornorm/internal/scan"
	"anchornorm/internal/storage"
	"anchornorm/internal/storage/mocks"
)

const (
	staleDoc = "## Getting Started\nSee [Getting Started]({{< ref \"#getting-started-guide\" >}}) below.\n"
	fixedDoc = "## Getting Started\nSee [Getting Started]({{< ref \"#getting-started\" >}}) below.\n"
)

// failingProcessor fails for paths listed in fail and delegates otherwise.
type failingProcessor struct {
	*Processor
	fail map[string]bool
	seen []string
}

func (f *failingProcessor) ProcessFile(ctx context.Context, path string) (Result, error) {
	f.seen = append(f.seen, filepath.Base(path))
	if f.fail[filepath.Base(path)] {
		return Result{Path: path}, fileError(ErrWrite, path, errors.New("no space left on device"))
	}
	return f.Processor.ProcessFile(ctx, path)
}

func TestPipeline_Run(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.md"), staleDoc)
	writeFile(t, filepath.Join(root, "docs", "guide.md"), staleDoc)
	writeFile(t, filepath.Join(root, "docs", "clean.md"), "# Clean\n")
	writeFile(t, filepath.Join(root, "docs", "notes.txt"), staleDoc)

	pipeline := NewPipeline(scan.NewScanner(), NewProcessor("", false), false)
	summary, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, filepath.Join(root, "index.md")); got != fixedDoc {
		t.Errorf("index.md = %q, want %q", got, fixedDoc)
	}
	if got := readFile(t, filepath.Join(root, "docs", "guide.md")); got != fixedDoc {
		t.Errorf("docs/guide.md = %q, want %q", got, fixedDoc)
	}
	if got := readFile(t, filepath.Join(root, "docs", "notes.txt")); got != staleDoc {
		t.Errorf("docs/notes.txt was modified: %q", got)
	}

	want := Summary{
		RunID:            summary.RunID,
		Root:             root,
		FilesSeen:        4,
		FilesSkipped:     1,
		FilesProcessed:   3,
		FilesChanged:     2,
		AnchorsRewritten: 2,
	}
	if *summary != want {
		t.Errorf("Run() summary = %+v, want %+v", *summary, want)
	}
	if summary.RunID == "" {
		t.Error("Run() summary has no run ID")
	}
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), staleDoc+"[Nope]({{< ref \"#nope\" >}})\n")
	writeFile(t, filepath.Join(root, "b", "c.md"), "# Q & A\n[Q & A]({{< ref \"#qa\" >}})\n")

	pipeline := NewPipeline(scan.NewScanner(), NewProcessor("", false), false)
	if _, err := pipeline.Run(context.Background(), root); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first := readFile(t, filepath.Join(root, "a.md")) + readFile(t, filepath.Join(root, "b", "c.md"))

	summary, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	second := readFile(t, filepath.Join(root, "a.md")) + readFile(t, filepath.Join(root, "b", "c.md"))

	if first != second {
		t.Errorf("second run changed content:\n%s\n->\n%s", first, second)
	}
	if summary.FilesChanged != 0 {
		t.Errorf("second run FilesChanged = %d, want 0", summary.FilesChanged)
	}
	if !strings.Contains(second, `"#q--a"`) {
		t.Errorf("c.md = %q, want anchor #q--a", second)
	}
}

func TestPipeline_Run_StopsOnFirstError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), staleDoc)
	writeFile(t, filepath.Join(root, "b.md"), staleDoc)
	writeFile(t, filepath.Join(root, "c.md"), staleDoc)

	proc := &failingProcessor{Processor: NewProcessor("", false), fail: map[string]bool{"b.md": true}}
	summary, err := NewPipeline(scan.NewScanner(), proc, false).Run(context.Background(), root)

	if !errors.Is(err, ErrWrite) {
		t.Fatalf("Run() error = %v, want ErrWrite", err)
	}
	if strings.Join(proc.seen, ",") != "a.md,b.md" {
		t.Errorf("processed %v, want a.md,b.md", proc.seen)
	}
	if got := readFile(t, filepath.Join(root, "c.md")); got != staleDoc {
		t.Errorf("c.md was processed after a fatal error: %q", got)
	}
	if summary.Errors != 1 || summary.FilesProcessed != 1 {
		t.Errorf("summary = %+v, want 1 processed 1 error", *summary)
	}
}

func TestPipeline_Run_KeepGoing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), staleDoc)
	writeFile(t, filepath.Join(root, "b.md"), staleDoc)
	writeFile(t, filepath.Join(root, "c.md"), staleDoc)

	proc := &failingProcessor{Processor: NewProcessor("", false), fail: map[string]bool{"b.md": true}}
	summary, err := NewPipeline(scan.NewScanner(), proc, true).Run(context.Background(), root)

	if err == nil {
		t.Fatal("Run() should report the failed file")
	}
	if got := readFile(t, filepath.Join(root, "c.md")); got != fixedDoc {
		t.Errorf("c.md = %q, want it processed after the failure", got)
	}
	if summary.Errors != 1 || summary.FilesProcessed != 2 {
		t.Errorf("summary = %+v, want 2 processed 1 error", *summary)
	}
}

func TestPipeline_Run_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	_, err := NewPipeline(scan.NewScanner(), NewProcessor("", false), false).Run(context.Background(), root)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Run() error = %v, want os.ErrNotExist", err)
	}
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), staleDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(scan.NewScanner(), NewProcessor("", false), false).Run(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if got := readFile(t, filepath.Join(root, "a.md")); got != staleDoc {
		t.Errorf("a.md was modified by a cancelled run: %q", got)
	}
}

func TestPipeline_Run_Journal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), staleDoc)
	writeFile(t, filepath.Join(root, "skip.txt"), staleDoc)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRuns := mocks.NewMockRunStore(ctrl)
	mockFiles := mocks.NewMockFileStore(ctrl)

	var startedID string
	mockRuns.EXPECT().
		Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *storage.RunRecord) error {
			if run.Root != root || !run.DryRun {
				t.Errorf("Start() run = %+v, want root %s dry run", run, root)
			}
			startedID = run.ID
			return nil
		})

	mockFiles.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *storage.FileRecord) error {
			if rec.RunID != startedID || rec.RelPath != "a.md" || !rec.Changed || rec.Rewritten != 1 {
				t.Errorf("Insert() rec = %+v, want changed a.md in run %s", rec, startedID)
			}
			return nil
		})

	mockRuns.EXPECT().
		Finish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *storage.RunRecord) error {
			if run.ID != startedID || run.Files != 1 || run.Changed != 1 || run.Rewritten != 1 {
				t.Errorf("Finish() run = %+v, want 1 file changed", run)
			}
			return nil
		})

	pipeline := NewPipeline(scan.NewScanner(), NewProcessor("", true), false).WithJournal(mockRuns, mockFiles)
	summary, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.RunID != startedID {
		t.Errorf("summary.RunID = %q, want %q", summary.RunID, startedID)
	}
	if got := readFile(t, filepath.Join(root, "a.md")); got != staleDoc {
		t.Errorf("dry run modified a.md: %q", got)
	}
}

func TestPipeline_Run_JournalFailureDoesNotStopRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), staleDoc)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRuns := mocks.NewMockRunStore(ctrl)
	mockFiles := mocks.NewMockFileStore(ctrl)

	mockRuns.EXPECT().
		Start(gomock.Any(), gomock.Any()).
		Return(errors.New("database is locked"))
	// No run was opened, so nothing else may be recorded.
	mockFiles.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)
	mockRuns.EXPECT().Finish(gomock.Any(), gomock.Any()).Times(0)

	pipeline := NewPipeline(scan.NewScanner(), NewProcessor("", false), false).WithJournal(mockRuns, mockFiles)
	if _, err := pipeline.Run(context.Background(), root); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := readFile(t, filepath.Join(root, "a.md")); got != fixedDoc {
		t.Errorf("a.md = %q, want rewritten", got)
	}
}

func TestPipeline_Run_JournalRecordsFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.md"), staleDoc)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRuns := mocks.NewMockRunStore(ctrl)
	mockFiles := mocks.NewMockFileStore(ctrl)

	mockRuns.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	mockFiles.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *storage.FileRecord) error {
			if !strings.Contains(rec.Error, "no space left on device") {
				t.Errorf("Insert() rec.Error = %q, want the write failure", rec.Error)
			}
			return errors.New("insert failed")
		})
	mockRuns.EXPECT().
		Finish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *storage.RunRecord) error {
			if run.Errors != 1 {
				t.Errorf("Finish() run.Errors = %d, want 1", run.Errors)
			}
			return nil
		})

	proc := &failingProcessor{Processor: NewProcessor("", false), fail: map[string]bool{"bad.md": true}}
	pipeline := NewPipeline(scan.NewScanner(), proc, false).WithJournal(mockRuns, mockFiles)
	if _, err := pipeline.Run(context.Background(), root); !errors.Is(err, ErrWrite) {
		t.Errorf("Run() error = %v, want ErrWrite", err)
	}
}
