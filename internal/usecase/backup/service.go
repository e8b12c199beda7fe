package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/neurostudy/internal/repository"
)

const (
	formatVersion = 1

	recordTypeMeta  = "meta"
	recordTypeEntry = "record"

	maxLineBytes = 16 << 20
)

var errNoGroupsSelected = errors.New("backup: no record groups selected")

// ProgressReporter receives per-group progress callbacks during export.
type ProgressReporter interface {
	StartGroup(group string, total int)
	Increment(group string, delta int)
	FinishGroup(group string)
}

type noopProgress struct{}

func (noopProgress) StartGroup(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishGroup(string)     {}

// Service copies every record of a key-value store to and from NDJSON.
type Service struct {
	store repository.KeyValueStore
	clock func() time.Time
}

// NewService constructs a backup service bound to the provided store.
func NewService(store repository.KeyValueStore) (*Service, error) {
	if store == nil {
		return nil, errors.New("backup: store is required")
	}
	return &Service{store: store, clock: time.Now}, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	groups   []string
	reporter ProgressReporter
}

// WithGroups restricts export to the provided record groups (stats, users, ...).
func WithGroups(groups []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(groups) == 0 {
			return
		}
		cfg.groups = append([]string{}, groups...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	groups       []string
	skipExisting bool
}

// WithImportGroups restricts import to the provided record groups.
func WithImportGroups(groups []string) ImportOption {
	return func(cfg *importConfig) {
		if len(groups) == 0 {
			return
		}
		cfg.groups = append([]string{}, groups...)
	}
}

// WithSkipExisting keeps records that already exist in the target store.
func WithSkipExisting(skip bool) ImportOption {
	return func(cfg *importConfig) {
		cfg.skipExisting = skip
	}
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported int
	Skipped  int
}

type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type record struct {
	Type        string         `json:"type"`
	Version     int            `json:"version,omitempty"`
	ExportedAt  *time.Time     `json:"exported_at,omitempty"`
	Checksum    string         `json:"checksum,omitempty"`
	Groups      []string       `json:"groups,omitempty"`
	RecordCount map[string]int `json:"record_counts,omitempty"`
	Payload     *entry         `json:"payload,omitempty"`
}

// KnownGroups lists every record group the application writes.
var KnownGroups = []string{"current-user", "document", "session-progress", "stats", "users"}

// GroupOf returns the record group of a key: the part before the first ':'
// or the whole key for singleton records.
func GroupOf(key string) string {
	group, _, _ := strings.Cut(key, ":")
	return group
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	entries, err := s.collect(ctx, cfg.groups)
	if err != nil {
		return err
	}
	grouped := lo.GroupBy(entries, func(e entry) string { return GroupOf(e.Key) })
	groups := lo.Keys(grouped)
	sort.Strings(groups)

	counts := lo.MapValues(grouped, func(items []entry, _ string) int { return len(items) })

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.clock().UTC()
	meta := record{
		Type:        recordTypeMeta,
		Version:     formatVersion,
		ExportedAt:  &now,
		Checksum:    checksum(entries),
		Groups:      groups,
		RecordCount: counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, group := range groups {
		reporter.StartGroup(group, counts[group])
		for _, e := range grouped[group] {
			if err := writeRecord(writer, record{Type: recordTypeEntry, Payload: &e}); err != nil {
				return err
			}
			reporter.Increment(group, 1)
		}
		reporter.FinishGroup(group)
	}
	return writer.Flush()
}

func (s *Service) collect(ctx context.Context, groups []string) ([]entry, error) {
	keys, err := s.store.Keys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	filter, err := groupFilter(groups)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		if !filter(key) {
			continue
		}
		value, found, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if !found {
			// Deleted between listing and reading.
			continue
		}
		entries = append(entries, entry{Key: key, Value: value})
	}
	return entries, nil
}

// Import validates the whole stream before writing anything, so a truncated or
// tampered backup leaves the store untouched.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (*ImportResult, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	filter, err := groupFilter(cfg.groups)
	if err != nil {
		return nil, err
	}

	meta, entries, err := readBackup(r)
	if err != nil {
		return nil, err
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	if meta.Checksum != "" && meta.Checksum != checksum(entries) {
		return nil, errors.New("backup: checksum mismatch")
	}

	result := &ImportResult{}
	for _, e := range entries {
		if !filter(e.Key) {
			continue
		}
		if cfg.skipExisting {
			_, found, err := s.store.Get(ctx, e.Key)
			if err != nil {
				return result, fmt.Errorf("read %s: %w", e.Key, err)
			}
			if found {
				result.Skipped++
				continue
			}
		}
		if err := s.store.Set(ctx, e.Key, e.Value); err != nil {
			return result, fmt.Errorf("write %s: %w", e.Key, err)
		}
		result.Imported++
	}
	return result, nil
}

func readBackup(r io.Reader) (*record, []entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		meta    *record
		entries []entry
	)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("decode record: %w", err)
		}
		switch rec.Type {
		case recordTypeMeta:
			if meta != nil {
				return nil, nil, errors.New("backup: duplicate meta record")
			}
			meta = &rec
		case recordTypeEntry:
			if rec.Payload == nil || rec.Payload.Key == "" {
				return nil, nil, errors.New("backup: record without key")
			}
			entries = append(entries, *rec.Payload)
		default:
			return nil, nil, fmt.Errorf("backup: unknown record type %q", rec.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read backup: %w", err)
	}
	if meta == nil {
		return nil, nil, errors.New("backup: missing meta record")
	}
	return meta, entries, nil
}

func groupFilter(groups []string) (func(string) bool, error) {
	if groups == nil {
		return func(string) bool { return true }, nil
	}
	allowed := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			allowed[g] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil, errNoGroupsSelected
	}
	return func(key string) bool {
		_, ok := allowed[GroupOf(key)]
		return ok
	}, nil
}

func checksum(entries []entry) string {
	sorted := append([]entry{}, entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	h := sha256.New()
	for _, e := range sorted {
		fmt.Fprintf(h, "%d:%s%d:%s", len(e.Key), e.Key, len(e.Value), e.Value)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeRecord(w io.Writer, rec record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
