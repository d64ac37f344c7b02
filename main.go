package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/padroute/internal/config"
	"github.com/soar/padroute/internal/engine"
	"github.com/soar/padroute/internal/feedback"
	"github.com/soar/padroute/internal/gamepad"
	"github.com/soar/padroute/internal/hub"
	"github.com/soar/padroute/internal/loop"
	"github.com/soar/padroute/internal/remote"
	"github.com/soar/padroute/internal/server"
	"github.com/soar/padroute/internal/skin"
	"github.com/soar/padroute/internal/store"
	"github.com/soar/padroute/internal/tray"
	"github.com/soar/padroute/internal/window"
)

// os.Interrupt is Ctrl+C on every platform.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.File != "" {
		log.Printf("Using config file %s", cfg.File)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	st, err := store.Open(cfg.StoreDir)
	if err != nil {
		log.Fatalf("Failed to open mapping store: %v", err)
	}
	writer := store.NewWriter(st)
	cache := store.NewCache(st, writer)

	sk, err := skin.Load(cfg.Skin)
	if err != nil {
		log.Fatalf("Failed to load skin: %v", err)
	}
	log.Printf("Skin: %s", sk.Name)

	reader := gamepad.NewReader(cfg.Deadzone, cfg.Debug)

	h := hub.NewHub()
	go h.Run(ctx)
	broadcaster := hub.NewBroadcaster(h, cfg.Debug)
	go broadcaster.Run(ctx)

	l := loop.New()
	eng, err := engine.New(l, engine.Options{
		GameType: cfg.GameType,
		Skin:     sk,
		Traits: skin.Traits{
			Device:      skin.Desktop,
			DisplayType: skin.DisplayStandard,
			Orientation: skin.Portrait,
		},
		Store:             cache,
		Sync:              cfg.Sync,
		Feedback:          feedbackConfig(cfg),
		Settle:            cfg.Remap.Settle,
		ButtonHaptics:     cfg.Haptics.Buttons,
		ThumbstickHaptics: cfg.Haptics.Thumbsticks,
		Haptics:           reader,
		Outputs:           []engine.Output{broadcaster.Receiver},
		Notice:            broadcaster.Notice,
		Debug:             cfg.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	writer.OnDone(func(r store.Result) {
		l.Post(func() { eng.WriteDone(r) })
	})

	frontend, err := frontendFS()
	if err != nil {
		log.Fatalf("Failed to load viewer files: %v", err)
	}
	srv, err := server.New(h, broadcaster, remote.NewHandler(l, eng, cfg.Debug), frontend, cfg.Listen)
	if err != nil {
		log.Fatalf("Failed to prepare HTTP server: %v", err)
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	readerDone := make(chan struct{})
	go func() {
		reader.Run(ctx)
		close(readerDone)
	}()
	go func() {
		for s := range reader.Changes() {
			l.Post(func() { eng.ApplyPad(s) })
		}
	}()

	win := window.New(eng, cfg.Window.Width, cfg.Window.Height, cfg.Debug)

	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(cfg.Listen, trayActions(l, eng, cancel))
		go t.Run()
	}

	go func() {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
		case err := <-serverErrCh:
			log.Printf("HTTP server error: %v", err)
			cancel()
		}
		win.Close()
	}()

	log.Printf("padroute started: %s", tray.ViewerURL(cfg.Listen))
	if err := win.Run("padroute"); err != nil {
		log.Printf("Window error: %v", err)
	}

	// The window loop has ended, so this goroutine is the serial context now.
	l.Drain()
	eng.StopRemap()
	l.Stop()
	cancel()

	<-readerDone
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	writer.Close()
	if t != nil {
		t.Quit()
	}

	log.Println("padroute stopped")
}

func feedbackConfig(cfg *config.Config) feedback.Config {
	c := feedback.DefaultConfig()
	c.ReleaseDebounce = cfg.Feedback.ReleaseDebounce
	c.ReleaseDelay = cfg.Feedback.ReleaseDelay
	return c
}

// trayActions posts every menu action to the input loop.
func trayActions(l *loop.Loop, eng *engine.Engine, shutdown func()) tray.Actions {
	remapSource := func(source string) func() {
		return func() {
			l.Post(func() {
				if err := eng.StartRemap(source); err != nil {
					log.Printf("Failed to start remapping %s: %v", source, err)
				}
			})
		}
	}
	return tray.Actions{
		RemapKeyboard:   remapSource(engine.SourceKeyboard),
		RemapController: remapSource(engine.SourceController),
		FinishRemap:     func() { l.Post(eng.StopRemap) },
		CancelSelection: func() { l.Post(eng.CancelRemap) },
		NextGameType: func() {
			l.Post(func() {
				if err := eng.NextGameType(); err != nil {
					log.Printf("Failed to switch game type: %v", err)
				}
			})
		},
		Shutdown: func() {
			log.Println("Shutdown requested from tray")
			shutdown()
		},
	}
}
