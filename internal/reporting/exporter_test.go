package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefcore/internal/blob"
)

func TestSummaryKey(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC)
	assert.Equal(t, "summaries/2026/02/03/"+"1770091506000000007.json", SummaryKey(Summary{GeneratedAt: at}))
}

func TestExportAndLatest(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp := NewExporter(store)

	_, _, err := exp.Latest(ctx)
	require.ErrorIs(t, err, blob.ErrNotFound)

	first := summarize(t, fixture())
	info, err := exp.Export(ctx, first)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Key, "summaries/2026/03/15/"))
	assert.Equal(t, "application/json", info.ContentType)

	_, err = exp.Export(ctx, first)
	assert.ErrorIs(t, err, blob.ErrExists)

	second := first
	second.GeneratedAt = first.GeneratedAt.Add(24 * time.Hour)
	second.PeopleHelped = 99
	_, err = exp.Export(ctx, second)
	require.NoError(t, err)

	latest, latestInfo, err := exp.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, SummaryKey(second), latestInfo.Key)
	assert.Equal(t, 99, latest.PeopleHelped)
	assert.Equal(t, first.System, latest.System)
	assert.True(t, second.GeneratedAt.Equal(latest.GeneratedAt))
}
