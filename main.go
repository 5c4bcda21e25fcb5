// Package main - main.go
//
// Entry point for the career bot.
//
// Startup Sequence:
//  1. Parse flags and load the configuration (defaults on error)
//  2. Initialize the logger (log file cleared on start)
//  3. Handle the one-shot modes: -devices and -analyze
//  4. Connect the input backend (ADB device or local desktop)
//  5. Load the scoring weights, event data, race data and skill list
//  6. Start the optional status server and history recorder
//  7. Run the career loop until interrupted or a stop condition is hit
//
// Exit Codes:
//   - 0: Normal exit (interrupt or stop condition)
//   - 1: Startup failed
//   - 2: Unhandled panic occurred
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vcaesar/imgo"

	"uma-bot/internal/career"
	"uma-bot/internal/config"
	"uma-bot/internal/device"
	"uma-bot/internal/events"
	"uma-bot/internal/history"
	"uma-bot/internal/logger"
	"uma-bot/internal/ocr"
	"uma-bot/internal/ocr/tesseract"
	"uma-bot/internal/races"
	"uma-bot/internal/scoring"
	"uma-bot/internal/skills"
	"uma-bot/internal/status"
	"uma-bot/internal/vision"
)

type options struct {
	configPath string
	mode       string
	backend    string
	analyze    string
	devices    bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "config.json", "configuration file (.json, .yaml or .yml)")
	flag.StringVar(&o.mode, "mode", "", "game mode override: ura or unity")
	flag.StringVar(&o.backend, "backend", "adb", "input backend: adb or desktop")
	flag.StringVar(&o.analyze, "analyze", "", "read a screenshot, print what the bot sees and exit")
	flag.BoolVar(&o.devices, "devices", false, "list ADB devices and exit")
	flag.Parse()
	return o
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			logger.LogError("PANIC in main: %v", r)
			logger.Close()
			os.Exit(2)
		}
	}()

	os.Exit(run(parseFlags()))
}

func run(o options) int {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error, using defaults: %v\n", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if o.mode != "" {
		cfg.Mode = strings.ToLower(o.mode)
		cfg.ApplyDefaults()
	}

	if err := logger.Init(cfg.LogPath, cfg.DebugMode); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		logger.LogInfo("=== Bot Shutdown ===")
		logger.Close()
	}()
	logger.LogInfo("=== Bot Started (%s mode) ===", cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.devices {
		return listDevices(ctx, cfg)
	}

	engine, err := tesseract.New("")
	if err != nil {
		logger.LogError("OCR unavailable: %v", err)
		return 1
	}
	defer engine.Close()
	reader := ocr.NewReader(engine, cfg.DebugMode)

	matcher := vision.NewMatcher(cfg.AssetsDir)
	defer matcher.Close()

	rules, err := cfg.Rules()
	if err != nil {
		logger.LogWarn("Scoring weights: %v (using defaults)", err)
	}

	if o.analyze != "" {
		return analyzeShot(o.analyze, cfg, matcher, reader, rules)
	}

	dev, err := openDevice(ctx, cfg, o.backend)
	if err != nil {
		logger.LogError("%v", err)
		return 1
	}

	prio, err := events.LoadPriorities(cfg.Event.PriorityFile)
	if err != nil {
		logger.LogWarn("Event priorities: %v", err)
	}
	calendar, err := races.LoadCalendar(cfg.Racing.RaceDataFile)
	if err != nil {
		logger.LogWarn("Race data: %v", err)
	}
	var custom races.CustomRaces
	if cfg.Racing.DoCustomRace {
		if custom, err = races.LoadCustomRaces(cfg.Racing.CustomRaceFile); err != nil {
			logger.LogWarn("Custom races: %v", err)
		}
	}
	skillCfg, err := skills.Load(cfg.Skills.SkillFile)
	if err != nil {
		logger.LogWarn("Skill list: %v", err)
	}

	tracker := status.New(cfg.Status.Path, cfg.Mode)
	if cfg.Status.HTTPAddr != "" {
		go status.Serve(ctx, cfg.Status.HTTPAddr, tracker)
	}
	recorder, err := history.Open(ctx, cfg.History.DSN)
	if err != nil {
		logger.LogWarn("Career history disabled: %v", err)
		recorder = history.Nop{}
	}

	bot := career.New(career.Deps{
		Device:     dev,
		Matcher:    matcher,
		Reader:     reader,
		Config:     cfg,
		Rules:      rules,
		Events:     events.LoadDatabase(cfg.Event.Databases),
		Priorities: prio,
		Calendar:   calendar,
		Custom:     custom,
		Skills:     skillCfg,
		Status:     tracker,
		History:    recorder,
	})
	logger.LogInfo("Run %s", tracker.RunID())

	if err := bot.Run(ctx); err != nil && !errors.Is(err, career.ErrStop) {
		logger.LogError("Career loop failed: %v", err)
		return 1
	}
	return 0
}

// openDevice connects the input backend named by backend.
func openDevice(ctx context.Context, cfg *config.Config, backend string) (career.Device, error) {
	switch backend {
	case "desktop":
		d, err := device.NewDesktop(0)
		if err != nil {
			return nil, fmt.Errorf("desktop backend: %w", err)
		}
		logger.LogInfo("Using the desktop backend")
		return d, nil
	case "adb", "":
		adb := device.NewADB(cfg.ADB)
		if err := adb.Connect(ctx); err != nil {
			return nil, fmt.Errorf("no device: %w", err)
		}
		info, err := adb.Info(ctx)
		if err != nil {
			logger.LogWarn("Device info: %v", err)
		} else {
			logger.LogInfo("Device %s (Android %s) %dx%d", info.Model, info.AndroidVersion, info.Width, info.Height)
			if info.Width != 1080 || info.Height != 1920 {
				logger.LogWarn("Screen is %dx%d, the screen layout expects 1080x1920", info.Width, info.Height)
			}
		}
		return adb, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func listDevices(ctx context.Context, cfg *config.Config) int {
	list, err := device.NewADB(cfg.ADB).Devices(ctx)
	if err != nil {
		logger.LogError("%v", err)
		return 1
	}
	if len(list) == 0 {
		fmt.Println("No devices attached")
		return 0
	}
	for _, d := range list {
		fmt.Println(d)
	}
	return 0
}

func analyzeShot(path string, cfg *config.Config, m *vision.Matcher, r *ocr.Reader, rules scoring.Rules) int {
	img, err := imgo.Read(path)
	if err != nil {
		logger.LogError("Failed to read %s: %v", path, err)
		return 1
	}

	rep := career.Analyze(img, m, r, cfg, rules)
	fmt.Printf("State:    %s\n", rep.State)
	if rep.Lobby {
		gs := rep.Game
		fmt.Printf("Year:     %s\n", gs.Year)
		fmt.Printf("Turn:     %s\n", gs.Turn)
		fmt.Printf("Mood:     %s\n", gs.Mood)
		fmt.Printf("Energy:   %.0f%%\n", gs.Energy)
		fmt.Printf("Goal:     %s\n", gs.Goal)
		fmt.Printf("Criteria: %s (met: %v)\n", gs.Criteria, gs.CriteriaMet)
		fmt.Printf("Stats:    %v\n", gs.Stats)
		fmt.Printf("Skill pt: %d\n", gs.SkillPoints)
		fmt.Printf("Infirmary lit: %v\n", gs.Infirmary)
	}
	if t := rep.Training; t != nil {
		fmt.Printf("Training: %s score %.2f failure %d%% supports %v hint %v\n",
			t.Stat, t.Score, t.Failure, t.SupportCounts, t.Hint)
	}
	return 0
}
