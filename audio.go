package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100
	toneHz     = 440

	// samples queued per video frame
	frameSamples = sampleRate / 60
)

var (
	/// Audio device the tone is queued to, 0 if none.
	///
	audioDevice sdl.AudioDeviceID

	/// Position within the square wave, carried across frames.
	///
	phase int
)

/// InitAudio opens an audio device for the CHIP-8 buzzer.
///
func InitAudio() error {
	spec := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	audioDevice = dev

	// start playing, silence until something is queued
	sdl.PauseAudioDevice(audioDevice, false)

	return nil
}

/// CloseAudio releases the audio device.
///
func CloseAudio() {
	if audioDevice != 0 {
		sdl.CloseAudioDevice(audioDevice)
		audioDevice = 0
	}
}

/// UpdateAudio queues a frame of tone while the sound timer runs and
/// cuts it off as soon as the timer expires.
///
func UpdateAudio() {
	if audioDevice == 0 {
		return
	}

	if !VM.ToneActive() || Paused {
		sdl.ClearQueuedAudio(audioDevice)
		return
	}

	// keep about two frames buffered
	if sdl.GetQueuedAudioSize(audioDevice) > 2*frameSamples {
		return
	}

	if err := sdl.QueueAudio(audioDevice, squareWave(frameSamples)); err != nil {
		AppLogger.WithError(err).Debug("queue audio failed")
	}
}

// squareWave returns n signed 8-bit samples, continuing from phase.
func squareWave(n int) []byte {
	const half = sampleRate / toneHz / 2

	buf := make([]byte, n)

	for i := range buf {
		if (phase/half)&1 == 0 {
			buf[i] = 0x20
		} else {
			buf[i] = 0xE0
		}
		phase++
	}

	phase %= 2 * half

	return buf
}
