// Package rom loads CHIP-8 programs from disk, unpacking common archive
// formats along the way.
package rom

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"

	"github.com/massung/chip8-vm/chip8"
)

// ErrEmptyArchive is returned for an archive with no files in it.
var ErrEmptyArchive = errors.New("archive is empty")

// ROM is a program image ready to be loaded into a machine.
type ROM struct {
	// Name is the base name of the file it was read from.
	Name string

	Data []byte

	// Hash identifies the program contents in logs.
	Hash uint64
}

// New wraps program bytes that didn't come from a file, such as the
// output of the assembler.
func New(name string, data []byte) *ROM {
	return &ROM{
		Name: name,
		Data: data,
		Hash: xxhash.Sum64(data),
	}
}

// HashString returns the hash as 16 hex digits.
func (r *ROM) HashString() string {
	return fmt.Sprintf("%016x", r.Hash)
}

// Load reads the file at path. Files ending in .zip, .gz or .7z are
// decompressed and the first file inside is used. Programs that can't
// fit in memory fail with chip8.ErrProgramTooLarge.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rom: %w", err)
	}

	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		data, err = gunzip(data)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	case ".zip":
		data, name, err = unzip(data)
	case ".7z":
		data, name, err = un7z(data)
	}
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", filepath.Base(path), err)
	}
	if len(data) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("read %s: %w", name, chip8.ErrProgramTooLarge)
	}

	return New(name, data), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return readProgram(r)
}

func unzip(data []byte) ([]byte, string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		b, err := readEntry(f.Open)
		return b, filepath.Base(f.Name), err
	}

	return nil, "", ErrEmptyArchive
}

func un7z(data []byte) ([]byte, string, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		b, err := readEntry(f.Open)
		return b, filepath.Base(f.Name), err
	}

	return nil, "", ErrEmptyArchive
}

// readEntry reads one archive member to the end.
func readEntry(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return readProgram(rc)
}

// readProgram reads at most one byte more than a program may hold, so
// a bomb can't expand past that.
func readProgram(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > chip8.MaxProgramSize {
		return nil, chip8.ErrProgramTooLarge
	}

	return data, nil
}
