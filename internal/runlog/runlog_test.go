package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Tag:       "2024-04-01T09:30:00",
		Category:  "donation",
		Rows:      12,
		Created:   3,
		Details:   "window now-1M/M:now-1M/M",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	err := Append(dir, []Entry{testEntry()})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "logs", "run-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, Header+"\n2024-04-01T09:30:00Z,2024-04-01T09:30:00,donation,12,3,window now-1M/M:now-1M/M\n", string(data))
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Category = "sale"
	e2.Rows = 4
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "donation", entries[0].Category)
	assert.Equal(t, "sale", entries[1].Category)
	assert.Equal(t, 4, entries[1].Rows)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, original, entries[0])
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "run-log.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadRow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	body := Header + "\n2024-04-01T09:30:00Z,tag,sale,many,0,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "run-log.csv"), []byte(body), 0o644))

	_, err := Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing rows")
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6 fields")
}

func TestTimestampFormat(t *testing.T) {
	e := testEntry()
	e.Timestamp = time.Date(2024, 4, 1, 5, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	row := MarshalEntry(e)
	assert.Equal(t, "2024-04-01T09:30:00Z", row[0])
}

func TestTags(t *testing.T) {
	a, b := testEntry(), testEntry()
	b.Tag = "2024-05-01T09:30:00"
	assert.Equal(t, []string{"2024-04-01T09:30:00", "2024-05-01T09:30:00"}, Tags([]Entry{a, a, b, a}))
	assert.Nil(t, Tags(nil))
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
