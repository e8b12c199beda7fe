package backup

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eslsoft/neurostudy/internal/adapter/storage"
)

func seedStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for key, value := range map[string]string{
		"stats:ada@example.com": `{"xp":120,"streak":2}`,
		"stats:bob@example.com": `{"xp":40}`,
		"users:ada@example.com": `{"password":"secret1"}`,
		"users:bob@example.com": `{"password":"secret2"}`,
		"current-user":          "ada@example.com",
		"session-progress":      `{"questions":[],"currentIndex":0,"score":0}`,
	} {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	return store
}

type recordingProgress struct {
	started  map[string]int
	counted  map[string]int
	finished []string
}

func (p *recordingProgress) StartGroup(group string, total int) { p.started[group] = total }
func (p *recordingProgress) Increment(group string, delta int)  { p.counted[group] += delta }
func (p *recordingProgress) FinishGroup(group string)           { p.finished = append(p.finished, group) }

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := seedStore(t)

	exporter, err := NewService(src)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	progress := &recordingProgress{started: map[string]int{}, counted: map[string]int{}}
	var buf bytes.Buffer
	if err := exporter.Export(ctx, &buf, WithProgressReporter(progress)); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if progress.started["stats"] != 2 || progress.counted["users"] != 2 {
		t.Fatalf("unexpected progress: %+v", progress)
	}
	if len(progress.finished) != 4 {
		t.Fatalf("expected 4 groups finished, got %v", progress.finished)
	}

	dst := storage.NewMemoryStore()
	importer, err := NewService(dst)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	result, err := importer.Import(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 6 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	srcKeys, _ := src.Keys(ctx, "")
	for _, key := range srcKeys {
		want, _, _ := src.Get(ctx, key)
		got, ok, err := dst.Get(ctx, key)
		if err != nil || !ok || got != want {
			t.Fatalf("key %s mismatch: want %q got %q (ok=%v err=%v)", key, want, got, ok, err)
		}
	}
}

func TestServiceExportGroupsFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := NewService(seedStore(t))

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, WithGroups([]string{"users"})); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected meta + 2 records, got %d lines:\n%s", len(lines), buf.String())
	}
	if strings.Contains(buf.String(), "stats:") {
		t.Fatalf("stats records leaked into filtered export")
	}
}

func TestServiceImportSkipExisting(t *testing.T) {
	ctx := context.Background()
	src := seedStore(t)
	svc, _ := NewService(src)

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst := storage.NewMemoryStore()
	if err := dst.Set(ctx, "stats:ada@example.com", `{"xp":999}`); err != nil {
		t.Fatalf("seed dst: %v", err)
	}
	importer, _ := NewService(dst)
	result, err := importer.Import(ctx, &buf, WithSkipExisting(true), WithImportGroups([]string{"stats"}))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	got, _, _ := dst.Get(ctx, "stats:ada@example.com")
	if got != `{"xp":999}` {
		t.Fatalf("existing record overwritten: %s", got)
	}
	if _, ok, _ := dst.Get(ctx, "users:ada@example.com"); ok {
		t.Fatalf("users group should not be imported")
	}
}

func TestServiceImportRejectsTamperedBackup(t *testing.T) {
	ctx := context.Background()
	svc, _ := NewService(seedStore(t))

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	tampered := strings.Replace(buf.String(), `{\"xp\":40}`, `{\"xp\":4000}`, 1)
	if tampered == buf.String() {
		t.Fatalf("fixture did not change")
	}

	dst := storage.NewMemoryStore()
	importer, _ := NewService(dst)
	if _, err := importer.Import(ctx, strings.NewReader(tampered)); err == nil {
		t.Fatalf("expected checksum error")
	}
	if keys, _ := dst.Keys(ctx, ""); len(keys) != 0 {
		t.Fatalf("store modified by rejected import: %v", keys)
	}
}

func TestServiceImportRequiresMeta(t *testing.T) {
	importer, _ := NewService(storage.NewMemoryStore())
	input := `{"type":"record","payload":{"key":"stats:a","value":"{}"}}` + "\n"
	if _, err := importer.Import(context.Background(), strings.NewReader(input)); err == nil {
		t.Fatalf("expected missing meta error")
	}
}

func TestGroupOf(t *testing.T) {
	cases := map[string]string{
		"stats:a@b.c":      "stats",
		"session-progress": "session-progress",
		"document:current": "document",
	}
	for key, want := range cases {
		if got := GroupOf(key); got != want {
			t.Fatalf("GroupOf(%q) = %q, want %q", key, got, want)
		}
	}
}
