package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmodaudit/kmodaudit/internal/types"
)

func TestAppendLoad_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	assert.Equal(t, filepath.Join(dir, FileName), l.Path())

	_, err := l.Load()
	require.Error(t, err)

	require.NoError(t, l.Append(Record{Path: "a", Kept: 1}))
	require.NoError(t, l.Append(Record{Path: "b", Kept: 2}))

	got, err := l.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Path)
	assert.Equal(t, "a", got[1].Path)
	assert.NotEmpty(t, got[0].RunID)

	st, err := os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestNewRecord(t *testing.T) {
	kept := make([]string, MaxNames+10)
	for i := range kept {
		kept[i] = fmt.Sprintf("OPT_%d", i)
	}
	r := types.Report{
		Path:       "/x/.config",
		OutputPath: "/x/.config.audited",
		Kept:       kept,
		Disabled:   []string{"FOO"},
		Lines:      100,
		InputHash:  "aa",
		OutputHash: "bb",
		Written:    true,
	}
	rec := NewRecord(r, 120, 3*time.Millisecond)
	assert.Equal(t, MaxNames+10, rec.Kept)
	assert.Equal(t, 1, rec.Disabled)
	assert.Len(t, rec.KeptNames, MaxNames)
	assert.Equal(t, 120, rec.Patterns)
	assert.Equal(t, "3ms", rec.Duration)
	assert.True(t, rec.Written)
	assert.False(t, rec.Timestamp.IsZero())
}
