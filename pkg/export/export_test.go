package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itohio/serialplot/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testSnapshot() sample.Snapshot {
	snap := make(sample.Snapshot, sample.Depth)
	for i := range snap {
		snap[i] = sample.Sample{Seq: uint64(i), A: float64(i), B: float64(10 - i)}
	}
	return snap
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testSnapshot()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Positive(t, cfg.Width)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestWriteTo_SingleFlatSample(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, sample.Snapshot{{A: 5, B: 5}}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestWriteTo_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteTo(&buf, nil), ErrEmptySnapshot)
	assert.Zero(t, buf.Len())
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, Save(path, testSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestSave_EmptyLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	assert.ErrorIs(t, Save(path, nil), ErrEmptySnapshot)
	assert.NoFileExists(t, path)
}

func TestSave_BadDirectory(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "out.png"), testSnapshot())
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, filepath.Join("shots", "serialplot-20260307-140509.png"), FileName("shots", at))
}
