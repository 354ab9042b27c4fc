package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"reliefcore/internal/blob"
)

// SummaryPrefix is the archive prefix summaries are written under.
const SummaryPrefix = "summaries/"

// Exporter writes summaries to the report archive.
type Exporter struct {
	store blob.Store
}

// NewExporter returns an exporter over store.
func NewExporter(store blob.Store) *Exporter {
	return &Exporter{store: store}
}

// SummaryKey names the archive object for a summary generated at s.GeneratedAt.
func SummaryKey(s Summary) string {
	t := s.GeneratedAt.UTC()
	return fmt.Sprintf("%s%04d/%02d/%02d/%s.json", SummaryPrefix, t.Year(), t.Month(), t.Day(), strconv.FormatInt(t.UnixNano(), 10))
}

// Export stores summary as indented JSON and returns the archived object info.
func (e *Exporter) Export(ctx context.Context, summary Summary) (blob.Info, error) {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode summary: %w", err)
	}
	key := SummaryKey(summary)
	info, err := e.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"kind": "summary"},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("archive summary: %w", err)
	}
	return info, nil
}

// Latest reads back the newest archived summary. It returns blob.ErrNotFound
// when the archive holds none.
func (e *Exporter) Latest(ctx context.Context) (Summary, blob.Info, error) {
	infos, err := e.store.List(ctx, SummaryPrefix)
	if err != nil {
		return Summary{}, blob.Info{}, fmt.Errorf("list summaries: %w", err)
	}
	if len(infos) == 0 {
		return Summary{}, blob.Info{}, fmt.Errorf("latest summary: %w", blob.ErrNotFound)
	}
	// keys sort by date path then fixed-width nanosecond stamp
	newest := infos[len(infos)-1]
	info, rc, err := e.store.Get(ctx, newest.Key)
	if err != nil {
		return Summary{}, blob.Info{}, fmt.Errorf("read summary: %w", err)
	}
	defer func() { _ = rc.Close() }()
	var out Summary
	if err := json.NewDecoder(rc).Decode(&out); err != nil {
		return Summary{}, blob.Info{}, fmt.Errorf("decode summary %s: %w", newest.Key, err)
	}
	return out, info, nil
}
