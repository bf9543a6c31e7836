package main

import (
	"context"
	"time"
)

/// RunHeadless runs the machine without a window, serving the display
/// to web clients only, until the context is done.
///
func RunHeadless(ctx context.Context) {
	frame := time.NewTicker(time.Second / 60)
	defer frame.Stop()

	AppLogger.Info("running headless")

	for {
		select {
		case <-ctx.Done():
			AppLogger.Info("shutting down")
			return
		case <-frame.C:
			remoteKeys()

			VM.Process(false)

			if VM.TakeRedrawFlag() {
				Hub.Publish(VM.Framebuffer())
			}
		}
	}
}
