package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sqweek/dialog"

	"github.com/massung/chip8-vm/chip8"
	"github.com/massung/chip8-vm/rom"
)

var (
	/// Path of the loaded program, reused by the file dialog.
	///
	File string

	/// Program currently in the machine.
	///
	Program *rom.ROM
)

/// Load a program into the VM and reset it. Assembly source is
/// assembled first.
///
func Load(path string, asm bool) error {
	r, err := readProgram(path, asm)
	if err != nil {
		return err
	}

	// keep the running program if the new one can't load
	if len(r.Data) > chip8.MaxProgramSize {
		return fmt.Errorf("loading %s: %w", r.Name, chip8.ErrProgramTooLarge)
	}

	VM.Reset()
	if err := VM.LoadProgram(r.Data); err != nil {
		return fmt.Errorf("loading %s: %w", r.Name, err)
	}

	File, Program = path, r
	Paused = false
	dirty = true

	AppLogger.WithFields(logrus.Fields{
		"size": len(r.Data),
		"hash": r.HashString(),
	}).Info("loaded " + r.Name)

	return nil
}

// readProgram returns the program image at path.
func readProgram(path string, asm bool) (*rom.ROM, error) {
	if !asm {
		return rom.Load(path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	data, err := chip8.Assemble(source)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", filepath.Base(path), err)
	}

	return rom.New(filepath.Base(path), data), nil
}

/// LoadDialog opens a file dialog to pick a program. Files ending in
/// .asm or .s are assembled.
///
func LoadDialog() {
	builder := dialog.File().
		Filter("CHIP-8 programs", "ch8", "c8", "zip", "gz", "7z").
		Filter("CHIP-8 assembly", "asm", "s").
		Filter("All files", "*").
		Title("Load program")

	if File != "" {
		builder = builder.SetStartDir(filepath.Dir(File))
	}

	path, err := builder.Load()
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			AppLogger.WithError(err).Error("file dialog failed")
		}
		return
	}

	ext := filepath.Ext(path)
	if err := Load(path, ext == ".asm" || ext == ".s"); err != nil {
		AppLogger.WithError(err).Error("loading failed")
	}
}

/// Reboot restarts the current program from a clean machine.
///
func Reboot() {
	VM.Reboot()
	dirty = true

	if Program != nil {
		Log.Logln("Rebooting", Program.Name)
	}
}

/// StepOnce executes a single instruction while paused. Faults reach
/// the log through the machine's logger.
///
func StepOnce() {
	_ = VM.Step()

	if VM.TakeRedrawFlag() {
		dirty = true

		if Hub != nil {
			Hub.Publish(VM.Framebuffer())
		}
	}
}
