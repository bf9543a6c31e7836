/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is an output log that can be viewed and scrolled. It receives
// log entries as a logrus hook, so the hub goroutines may write to it.
type Logger struct {
	mu sync.Mutex

	// buf contains each line of logged text.
	buf []string

	// pos is the current user read position within the log.
	pos int
}

// NewLog creates a new Logger.
func NewLog() *Logger {
	return &Logger{
		buf: make([]string, 0, 100),
	}
}

// Levels implements logrus.Hook.
func (log *Logger) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook by appending the entry as one line.
func (log *Logger) Fire(entry *logrus.Entry) error {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	s := []string{entry.Message}
	for _, k := range keys {
		s = append(s, fmt.Sprintf("%s=%v", k, entry.Data[k]))
	}

	// flag anything louder than info
	if entry.Level <= logrus.WarnLevel {
		s[0] = "! " + s[0]
	}

	log.Log(s...)
	return nil
}

// Log outputs a new line to the log.
func (log *Logger) Log(s ...string) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.append(strings.Join(s, " "))
}

// Logln outputs a new line to the log, with an empty line prefixed.
func (log *Logger) Logln(s ...string) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.append("", strings.Join(s, " "))
}

func (log *Logger) append(lines ...string) {
	scroll := log.pos == len(log.buf)

	log.buf = append(log.buf, lines...)

	if scroll {
		log.pos = len(log.buf)
	}
}

// Window returns up to n lines ending at the read position.
func (log *Logger) Window(n int) []string {
	log.mu.Lock()
	defer log.mu.Unlock()

	start := log.pos - n

	// don't scroll past the beginning
	if start < 0 {
		start = 0
	}

	end := start + n
	if end > len(log.buf) {
		end = len(log.buf)
	}

	// copy, the buffer may grow under the caller
	return append([]string(nil), log.buf[start:end]...)
}

// Home scrolls the log to the beginning.
func (log *Logger) Home() {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos = 0
}

// End scrolls the log to the end.
func (log *Logger) End() {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos = len(log.buf)
}

// ScrollUp scrolls the log back one position.
func (log *Logger) ScrollUp() {
	log.mu.Lock()
	defer log.mu.Unlock()

	// clamp to home
	if log.pos--; log.pos < 0 {
		log.pos = 0
	}
}

// ScrollDown scrolls the log forward one position.
func (log *Logger) ScrollDown(windowSize int) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos++

	// if less than the window size, drop to it
	if log.pos < windowSize {
		log.pos = windowSize
	}

	// clamp to end
	if log.pos > len(log.buf) {
		log.pos = len(log.buf)
	}
}
