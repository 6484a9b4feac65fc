package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	flag "github.com/spf13/pflag"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] [FILE]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "FILE may be a PDF, an image, a directory of images, or a zip/cbz/rar/cbr/7z archive.")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.StringP("config", "c", getConfigPath(), "path to the TOML config file")
	page := flag.IntP("page", "p", 0, "page to open at (1-based, default: document start)")
	flag.BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		os.Exit(2)
	}

	configResult := loadConfigFromPath(*configPath)
	config := configResult.Config
	debugLog("Config %s: %s", *configPath, configResult.Status)

	if err := InitGraphics(); err != nil {
		log.Fatal(err)
	}

	viewer := NewViewer(configResult, *configPath)
	defer viewer.Close()

	if flag.NArg() == 1 {
		// A failed open leaves the viewer empty with a message on screen
		_ = viewer.Open(flag.Arg(0), *page)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)
	if config.Fullscreen {
		viewer.ToggleFullscreen()
	}

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
