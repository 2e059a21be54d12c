package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/TanaroSch/powerkey/internal/app"
	"github.com/TanaroSch/powerkey/internal/autostart"
	"github.com/TanaroSch/powerkey/internal/backend"
	"github.com/TanaroSch/powerkey/internal/config"
	"github.com/TanaroSch/powerkey/internal/ui"
)

const version = "v1.0.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.json")
	showVersion := flag.Bool("version", false, "print the version and exit")
	noTray := flag.Bool("no-tray", false, "run without the tray icon")
	enableAutostart := flag.Bool("enable-autostart", false, "start with the user session and exit")
	disableAutostart := flag.Bool("disable-autostart", false, "stop starting with the user session and exit")
	logFile := flag.String("log-file", "", "also append log output to this file")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (backends: %v)\n", app.AppName, version, backend.Available())
		return
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("Error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	if *enableAutostart || *disableAutostart {
		os.Exit(setAutostart(*enableAutostart))
	}

	log.Printf("%s %s starting...", app.AppName, version)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Configuration Error", err)
	}
	if *noTray {
		cfg.ShowTray = false
	}

	application, err := app.New(cfg, version)
	if err != nil {
		fatal("Startup Error", err)
	}
	if err := application.Start(); err != nil {
		application.Shutdown()
		fatal("Keyboard Hook Error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := application.Run(ctx)
	application.Shutdown()
	if runErr != nil {
		fatal("Keyboard Hook Lost", runErr)
	}
	log.Printf("%s stopped.", app.AppName)
}

func setAutostart(enable bool) int {
	as := autostart.New()
	var err error
	if enable {
		err = as.Enable()
	} else {
		err = as.Disable()
	}
	if err != nil {
		log.Printf("Error: autostart: %v", err)
		return 1
	}
	log.Printf("Start with system: %t", as.IsEnabled())
	return 0
}

// fatal logs err, shows it in a dialog and exits with status 1.
func fatal(title string, err error) {
	log.Printf("Error: %s: %v", title, err)
	ui.ShowError(app.AppName+" - "+title, err.Error())
	os.Exit(1)
}
