package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/config"
	"stg-renderer/internal/convert"
	"stg-renderer/internal/script"
	"stg-renderer/internal/utils"
)

func init() {
	// raylib and rlgl must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	scriptPath := flag.String("script", "", "Script to play, overrides the config")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	frames := flag.Int("frames", 0, "Exit after this many frames (0 runs until the window closes)")
	convertDir := flag.String("convert", "", "Convert every .tex under this directory to PNG and exit")
	outDir := flag.String("out", "converted", "Output directory for -convert")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			utils.Error("%v", err)
			os.Exit(1)
		}
	}
	if *scriptPath != "" {
		cfg.Script = *scriptPath
	}

	level, _ := utils.ParseLevel(cfg.Logging.Level)
	utils.CurrentLevel = level
	utils.ShowRaylibInfo = cfg.Logging.RaylibInfo
	utils.SetDebug(*debugFlag)
	rl.SetTraceLogCallback(utils.RaylibLogCallback)

	if *convertDir != "" {
		if err := runConvert(*convertDir, *outDir); err != nil {
			utils.Error("Conversion failed: %v", err)
			os.Exit(1)
		}
		return
	}

	utils.AssetDirs = cfg.Assets.Dirs
	if cfg.Assets.Pack != "" {
		dir, err := extractPack(cfg.Assets.Pack)
		if err != nil {
			utils.Error("Failed to extract %s: %v", cfg.Assets.Pack, err)
			os.Exit(1)
		}
		utils.AssetDirs = append([]string{dir}, utils.AssetDirs...)
	}

	var scr *script.Script
	if cfg.Script != "" {
		var err error
		if scr, err = script.Load(cfg.Script); err != nil {
			utils.Error("Failed to load script: %v", err)
			os.Exit(1)
		}
	}

	window, err := NewWindow(cfg, scr)
	if err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
	defer window.Close()

	utils.Info("Starting render loop...")
	window.Run(*frames)
}

// extractPack unpacks a pack archive once into the temp directory and
// returns the directory.
func extractPack(path string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Join(os.TempDir(), "stg-renderer", name)
	if _, err := os.Stat(dir); err == nil {
		utils.Debug("Pack: reusing %s", dir)
		return dir, nil
	}

	p, err := convert.OpenPack(path)
	if err != nil {
		return "", err
	}
	defer p.Close()

	utils.Info("Unpacking %s (%d entries)...", path, len(p.Entries))
	if err := p.Extract(dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}
