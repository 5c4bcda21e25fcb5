// Package device talks to the phone or emulator running the game.
//
// Key Responsibilities:
//   - Connection: list devices, auto-connect to the configured address
//   - Capture: full-screen screenshots decoded into image.Image
//   - Input: tap, swipe, long press (see action.go)
//
// Two backends exist. ADB drives an Android device through the adb CLI;
// Desktop drives a mirrored window on the local display through robotgo.
package device

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"uma-bot/internal/config"
	"uma-bot/internal/logger"
)

// ErrNoDevice is returned when adb lists no usable device.
var ErrNoDevice = errors.New("no adb device connected")

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// ADB drives a device through the adb command line tool.
type ADB struct {
	path       string
	serial     string
	inputDelay time.Duration
	run        runner
	sleep      func(time.Duration)
}

// Info describes the connected device.
type Info struct {
	Width          int
	Height         int
	Model          string
	AndroidVersion string
}

// NewADB creates an ADB backend from the adb_config section.
func NewADB(cfg config.ADB) *ADB {
	path := cfg.Path
	if path == "" {
		path = "adb"
	}
	return &ADB{
		path:       path,
		serial:     cfg.DeviceAddress,
		inputDelay: time.Duration(cfg.InputDelay * float64(time.Second)),
		run:        execRunner,
		sleep:      time.Sleep,
	}
}

// command runs adb with the device selector prepended.
func (a *ADB) command(ctx context.Context, args ...string) ([]byte, error) {
	full := make([]string, 0, len(args)+2)
	if a.serial != "" {
		full = append(full, "-s", a.serial)
	}
	full = append(full, args...)

	out, err := a.run(ctx, a.path, full...)
	if err != nil {
		return nil, fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

func (a *ADB) shell(ctx context.Context, args ...string) (string, error) {
	out, err := a.command(ctx, append([]string{"shell"}, args...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Devices returns the serials adb reports in the "device" state.
func (a *ADB) Devices(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, a.path, "devices")
	if err != nil {
		return nil, fmt.Errorf("failed to list adb devices: %w", err)
	}
	return parseDevices(out), nil
}

func parseDevices(out []byte) []string {
	var serials []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if header {
			header = false
			continue
		}
		if serial, state, ok := strings.Cut(line, "\t"); ok && strings.TrimSpace(state) == "device" {
			serials = append(serials, serial)
		}
	}
	return serials
}

// Connect makes sure a device is reachable. When none is listed and a
// device address is configured, "adb connect" is tried once.
func (a *ADB) Connect(ctx context.Context) error {
	serials, err := a.Devices(ctx)
	if err != nil {
		return err
	}
	if len(serials) == 0 {
		logger.LogWarn("No ADB devices connected!")
		if a.serial == "" {
			return fmt.Errorf("%w: set adb_config.device_address or plug in a device", ErrNoDevice)
		}

		logger.LogInfo("Attempting to connect to: %s", a.serial)
		out, err := a.run(ctx, a.path, "connect", a.serial)
		if msg := strings.TrimSpace(string(out)); msg != "" {
			logger.LogInfo("%s", msg)
		}
		if err != nil {
			logger.LogError("adb connect failed: %v", err)
		}

		if serials, err = a.Devices(ctx); err != nil {
			return err
		}
		if len(serials) == 0 {
			return fmt.Errorf("%w: could not connect to %s", ErrNoDevice, a.serial)
		}
	}

	logger.LogInfo("Connected devices: %d", len(serials))
	for _, s := range serials {
		logger.LogInfo("  %s", s)
	}
	return nil
}

// Info reads the screen size, model and Android version.
func (a *ADB) Info(ctx context.Context) (Info, error) {
	var info Info

	size, err := a.shell(ctx, "wm", "size")
	if err != nil {
		return info, fmt.Errorf("failed to read screen size: %w", err)
	}
	info.Width, info.Height, err = parseSize(size)
	if err != nil {
		return info, err
	}

	// Model and version are informational only.
	info.Model, _ = a.shell(ctx, "getprop", "ro.product.model")
	info.AndroidVersion, _ = a.shell(ctx, "getprop", "ro.build.version.release")
	return info, nil
}

// parseSize reads "Physical size: 1080x1920", preferring an override size
// line when the device reports one.
func parseSize(out string) (int, int, error) {
	var w, h int
	found := false
	for _, line := range strings.Split(out, "\n") {
		_, dims, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		var lw, lh int
		if _, err := fmt.Sscanf(strings.TrimSpace(dims), "%dx%d", &lw, &lh); err != nil {
			continue
		}
		if !found || strings.Contains(line, "Override") {
			w, h, found = lw, lh, true
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("unexpected wm size output %q", out)
	}
	return w, h, nil
}

// Screenshot captures the device screen.
func (a *ADB) Screenshot(ctx context.Context) (image.Image, error) {
	out, err := a.command(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screencap: %w", err)
	}
	return img, nil
}
