// Package main implements a CHIP-8 emulator with an SDL front end, a
// debugger panel and an optional websocket display for remote viewers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/massung/chip8-vm/chip8"
	"github.com/massung/chip8-vm/web"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var (
	/// The CHIP-8 virtual machine.
	///
	VM *chip8.Machine

	/// The SDL Window and Renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer

	/// Remote display, nil unless -web is given.
	///
	Hub *web.Hub

	/// Log shown in the debug panel.
	///
	Log = NewLog()

	/// Application logger. Everything it writes also lands in Log.
	///
	AppLogger = logrus.New()
)

type optionFlags struct {
	rom      string
	speed    int64
	clip     bool
	web      string
	headless bool
	asm      bool
	debug    bool
	quiet    bool
}

func init() {
	runtime.LockOSThread()
}

func main() {
	options := readArguments()

	if !options.quiet {
		printBanner()
	}

	initLogger(options)

	ctx := app.Context()

	VM = chip8.New(
		chip8.WithLogger(AppLogger.WithField("component", "chip8")),
		chip8.WithSpeed(options.speed),
		chip8.WithDrawPolicy(drawPolicy(options.clip)),
	)

	if options.rom != "" {
		if err := Load(options.rom, options.asm); err != nil {
			AppLogger.WithError(err).Fatal("loading failed")
		}
	} else {
		// nothing to run until a program is picked
		Paused = true
	}

	if options.web != "" {
		Hub = web.NewHub(AppLogger)
		go Hub.Run(ctx)
		go func() {
			if err := Hub.ListenAndServe(ctx, options.web); err != nil {
				AppLogger.WithError(err).Error("remote display stopped")
			}
		}()
	}

	if options.headless {
		if Hub == nil || options.rom == "" {
			AppLogger.Fatal("-headless needs both -rom and -web")
		}
		RunHeadless(ctx)
		return
	}

	if err := runWindow(ctx); err != nil {
		AppLogger.WithError(err).Fatal("emulator failed")
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.StringVar(&options.rom, "rom", "", "program to load, raw or in a .zip, .gz or .7z archive")
	flags.Int64Var(&options.speed, "speed", chip8.DefaultSpeed, "instructions executed per second")
	flags.BoolVar(&options.clip, "clip", false, "clip sprites at the screen edge instead of wrapping them")
	flags.StringVar(&options.web, "web", "", "serve the display to browsers on this address, e.g. :8090")
	flags.BoolVar(&options.headless, "headless", false, "run without a window, only serving -web clients")
	flags.BoolVar(&options.asm, "asm", false, "treat -rom as assembly source")
	flags.BoolVar(&options.debug, "debug", false, "log every fault and load")
	flags.BoolVar(&options.quiet, "q", false, "only log errors")

	if err := flags.Parse(os.Args[1:]); err != nil || flags.NArg() > 1 {
		printBanner()
		fmt.Printf("usage: chip8 [options] [rom]\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}

	// a trailing argument is the program
	if flags.NArg() == 1 && options.rom == "" {
		options.rom = flags.Arg(0)
	}

	return options
}

func printBanner() {
	fmt.Println("[--------------------------]")
	fmt.Println("[ chip8 - CHIP-8 emulator  ]")
	fmt.Printf("[--------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func initLogger(options optionFlags) {
	AppLogger.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableQuote:     true,
	}
	AppLogger.AddHook(Log)

	switch {
	case options.debug:
		AppLogger.SetLevel(logrus.DebugLevel)
	case options.quiet:
		AppLogger.SetLevel(logrus.ErrorLevel)
	default:
		AppLogger.SetLevel(logrus.InfoLevel)
	}
}

func drawPolicy(clip bool) chip8.DrawPolicy {
	if clip {
		return chip8.DrawClip
	}
	return chip8.DrawWrap
}

func runWindow(ctx context.Context) error {
	var err error

	// initialize SDL
	if err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	defer sdl.Quit()

	// create the main window and renderer
	if Window, err = sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, WindowWidth, WindowHeight, sdl.WINDOW_SHOWN); err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer Window.Destroy()

	if Renderer, err = sdl.CreateRenderer(Window, -1, sdl.RENDERER_ACCELERATED); err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer Renderer.Destroy()

	// initialize subsystems
	if err = InitScreen(); err != nil {
		return err
	}
	if err = InitFont(); err != nil {
		return err
	}
	if err = InitAudio(); err != nil {
		// play on without sound
		AppLogger.WithError(err).Warn("audio unavailable")
	}
	defer CloseAudio()

	DebugHelp()

	// refresh rate, the machine catches up to the clock each frame
	video := time.NewTicker(time.Second / 60)
	defer video.Stop()

	// loop until window closed or user quit
	for ProcessEvents() {
		select {
		case <-ctx.Done():
			return nil
		case <-video.C:
			Update()
			Refresh()
		}
	}

	return nil
}

/// Update runs the machine up to the current time and pushes the result
/// to the speaker and any remote viewers.
///
func Update() {
	remoteKeys()

	VM.Process(Paused)

	if VM.TakeRedrawFlag() {
		dirty = true

		if Hub != nil {
			Hub.Publish(VM.Framebuffer())
		}
	}

	UpdateAudio()
}

// remoteKeys applies key changes from browser clients.
func remoteKeys() {
	if Hub == nil {
		return
	}

	for {
		select {
		case ev := <-Hub.Keys():
			VM.SetKey(ev.Code, ev.Pressed)
		default:
			return
		}
	}
}

/// Refresh redraws the whole window.
///
func Refresh() {
	_ = Renderer.SetDrawColor(32, 42, 53, 255)
	_ = Renderer.Clear()

	// frame various portions of the app
	Frame(8, 8, 324, 164)
	Frame(338, 8, 204, 164)
	Frame(8, 178, 190, 112)
	Frame(204, 178, 338, 112)

	// update the video screen and copy it
	RefreshScreen()
	CopyScreen(10, 10, 5)

	// debug assembly, virtual registers and log
	DebugAssembly(342, 12)
	DebugRegisters(12, 182)
	DebugLog(208, 182)

	// show the new frame
	Renderer.Present()
}

/// Frame draws a beveled border.
///
func Frame(x, y, w, h int32) {
	_ = Renderer.SetDrawColor(0, 0, 0, 255)
	_ = Renderer.DrawLine(x, y, x+w, y)
	_ = Renderer.DrawLine(x, y, x, y+h)

	// highlight
	_ = Renderer.SetDrawColor(95, 112, 120, 255)
	_ = Renderer.DrawLine(x+w, y, x+w, y+h)
	_ = Renderer.DrawLine(x, y+h, x+w, y+h)
}
