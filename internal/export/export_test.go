package export

import (
	"encoding/csv"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/session"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func chunkSeq(chunks [][]session.Sample) iter.Seq2[[]session.Sample, error] {
	return func(yield func([]session.Sample, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func TestWriteViatom(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	base := time.Date(2023, 5, 1, 23, 10, 0, 0, time.UTC)

	chunks := [][]session.Sample{
		{
			{Timestamp: base, SpO2: 95, BPM: 60},
			{Timestamp: base.Add(time.Minute), SpO2: 96, BPM: 61},
		},
		{
			{Timestamp: base.Add(time.Hour), SpO2: 97, BPM: 62},
		},
	}

	paths, err := WriteViatom(dir, chunkSeq(chunks))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(dir, "viatom_20230501_231000.csv"), paths[0])

	rows := readCSV(t, paths[0])
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Time", "SpO2(%)", "Pulse Rate(bpm)"}, rows[0])
	assert.Equal(t, []string{"2023-05-01 23:10:00", "95", "60"}, rows[1])
	assert.Equal(t, []string{"2023-05-01 23:11:00", "96", "61"}, rows[2])
}

func TestWriteViatomSkipsEmptyChunks(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteViatom(dir, chunkSeq([][]session.Sample{{}}))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestWriteViatomPropagatesStreamError(t *testing.T) {
	streamErr := errors.New("bad file")
	failing := func(yield func([]session.Sample, error) bool) {
		yield(nil, streamErr)
	}

	_, err := WriteViatom(t.TempDir(), failing)
	assert.ErrorIs(t, err, streamErr)
}

func TestWriteDreem(t *testing.T) {
	dir := t.TempDir()
	fields := []string{"start_time", "sleep_efficiency", "hypnogram"}

	records := func(yield func(models.SleepRecord, error) bool) {
		yield(models.SleepRecord{
			"start_time":       "2023-05-01T23:10:00",
			"sleep_efficiency": 92,
			"hypnogram":        "[Light,Deep]",
		}, nil)
		yield(models.SleepRecord{
			"start_time": "2023-05-02T23:40:00",
		}, nil)
	}

	path, err := WriteDreem(dir, fields, records)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, fields, rows[0])
	assert.Equal(t, []string{"2023-05-01T23:10:00", "92", "[Light,Deep]"}, rows[1])
	assert.Equal(t, []string{"2023-05-02T23:40:00", "", ""}, rows[2])
}

func TestWriteDreemPropagatesStreamError(t *testing.T) {
	streamErr := errors.New("bad file")
	failing := func(yield func(models.SleepRecord, error) bool) {
		yield(nil, streamErr)
	}

	_, err := WriteDreem(t.TempDir(), []string{"start_time"}, failing)
	assert.ErrorIs(t, err, streamErr)
}
