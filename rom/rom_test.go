package rom

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash"
	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"

	"github.com/massung/chip8-vm/chip8"
)

var program = []byte{0x00, 0xE0, 0xA2, 0x2A, 0x60, 0x0C, 0xD0, 0x15, 0x12, 0x08}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func zipped(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for name, data := range entries {
		f, err := w.Create(name)
		assert.NoError(t, err)
		_, err = f.Write(data)
		assert.NoError(t, err)
	}
	assert.NoError(t, w.Close())

	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write(program)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	tests := []struct {
		name     string
		file     string
		data     []byte
		wantName string
	}{
		{name: "raw", file: "maze.ch8", data: program, wantName: "maze.ch8"},
		{name: "no extension", file: "MAZE", data: program, wantName: "MAZE"},
		{name: "gzip", file: "maze.ch8.gz", data: gz.Bytes(), wantName: "maze.ch8"},
		{name: "zip", file: "maze.zip", data: zipped(t, map[string][]byte{"games/maze.ch8": program}), wantName: "maze.ch8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Load(writeFile(t, tt.file, tt.data))
			assert.NoError(t, err)

			assert.Equal(t, tt.wantName, r.Name)
			assert.Equal(t, xxhash.Sum64(program), r.Hash)
			if diff := cmp.Diff(program, r.Data); diff != "" {
				t.Errorf("data: (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(writeFile(t, "empty.zip", zipped(t, nil)))
	assert.True(t, errors.Is(err, ErrEmptyArchive))

	_, err = Load(writeFile(t, "bad.gz", program))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.7z", program))
	assert.Error(t, err)
}

func TestLoadTooLarge(t *testing.T) {
	// a megabyte of zeros packs down to almost nothing
	huge := make([]byte, 1<<20)

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write(huge)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	_, err = Load(writeFile(t, "bomb.ch8.gz", gz.Bytes()))
	assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))

	_, err = Load(writeFile(t, "bomb.zip", zipped(t, map[string][]byte{"bomb.ch8": huge})))
	assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))

	_, err = Load(writeFile(t, "big.ch8", huge[:chip8.MaxProgramSize+1]))
	assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))

	// a program filling all of memory still fits
	r, err := Load(writeFile(t, "full.zip", zipped(t, map[string][]byte{"full.ch8": huge[:chip8.MaxProgramSize]})))
	assert.NoError(t, err)
	assert.Equal(t, chip8.MaxProgramSize, len(r.Data))
}

func TestNew(t *testing.T) {
	r := New("asm", program)

	assert.Equal(t, "asm", r.Name)
	assert.Equal(t, 16, len(r.HashString()))
	assert.Equal(t, New("other", program).Hash, r.Hash)
	assert.False(t, New("other", program[1:]).Hash == r.Hash)
}
