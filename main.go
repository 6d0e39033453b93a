package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"

	"signbridge/audio"
	"signbridge/config"
	"signbridge/encoder"
	"signbridge/log"
	"signbridge/notify"
	"signbridge/recorder"
	"signbridge/render"
	"signbridge/upload"
)

var version = "dev"

func main() {
	run()
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func modeLineText(cfg config.Config) string {
	return fmt.Sprintf("[%s@%dHz | %s]", cfg.Recording.Format, cfg.Recording.SampleRate, cfg.Server.BaseURL)
}

func run() {
	serverFlag := flag.String("server", "", "Backend base URL (overrides config)")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	formatFlag := flag.String("format", "", "Recording format: wav or flac (overrides config)")
	fakeFlag := flag.String("fake", "", "Feed PCM from a WAV file instead of the microphone")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("signbridge %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	// .env is optional; real config comes from file/env via viper.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverFlag != "" {
		cfg.Server.BaseURL = *serverFlag
	}
	if *formatFlag != "" {
		cfg.Recording.Format = *formatFlag
	}
	if *deviceFlag != "" {
		cfg.Recording.Device = *deviceFlag
	}
	switch cfg.Recording.Format {
	case "wav", "flac":
	default:
		fmt.Printf("Error: unknown format %q (use wav or flac)\n", cfg.Recording.Format)
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		log.SessionStart(cfg.Server.BaseURL, cfg.Recording.Format)
	}

	// Audio context: real microphone, or canned PCM for offline runs
	var audioCtx audio.Context
	if *fakeFlag != "" {
		fake, err := audio.NewFakeContext(*fakeFlag, true)
		if err != nil {
			fmt.Printf("Error loading fake audio: %v\n", err)
			os.Exit(1)
		}
		audioCtx = fake
	} else {
		audioCtx, err = audio.NewContext()
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
	}
	defer audioCtx.Close()

	var selectedDevice *audio.DeviceInfo
	if *setupFlag {
		if dev, err := audio.SelectDevice(audioCtx); err == nil {
			selectedDevice = dev
		}
	} else if cfg.Recording.Device != "" {
		devices, err := audioCtx.Devices()
		if err == nil {
			for i := range devices {
				if devices[i].Name == cfg.Recording.Device {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Printf("Warning: device %q not found, using system default\n", cfg.Recording.Device)
		}
	}

	captureDevice, err := audioCtx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: uint32(cfg.Recording.SampleRate),
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	var sink EventSink = tuiSink{}

	center := notify.NewCenter(cfg.UI.NoticeTTL, sink.NoticesChanged)
	busy := upload.NewIndicator(sink.BusyChanged)
	renderer := render.NewRenderer(cfg.Server.StaticPrefix, sink.ResultRendered)
	uploads := upload.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, busy, renderer, center)
	rec := recorder.NewController(captureDevice, uploads, center, sink,
		cfg.Recording.Format, cfg.Recording.SampleRate)
	dispatch := NewDispatcher(uploads, rec, center)

	// Pre-open the backend connection so the first submission starts warm.
	go uploads.Warm(context.Background())

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(dispatch)
	tuiMu.Unlock()

	go func() {
		tuiSend(ModeLineMsg{Text: modeLineText(cfg)})
		tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})
	}()

	if _, err := tuiProgram.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		os.Exit(1)
	}

	// Stop a live session so its audio is not lost on quit.
	rec.Stop(context.Background())
	log.SessionEnd(renderer.View().Count)
	log.Close()
}
