package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/d2r2/go-hd44780"
	"github.com/gethiox/padshim/internal/pkg/display"
	"github.com/gethiox/padshim/internal/pkg/input"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/shim"
	"github.com/go-ini/ini"
)

type ShimSettings struct {
	Deadzone          float64
	Filter            input.Filter
	ReconnectInterval time.Duration
	PollTimeout       time.Duration
	Grab              bool
}

type WebConfig struct {
	Enabled      bool
	Address      string
	SyncInterval time.Duration
}

type PadshimConfig struct {
	Shim   ShimSettings
	Web    WebConfig
	Screen display.ScreenConfig
}

func keyError(section *ini.Section, name string, err error) error {
	return fmt.Errorf("[%s] %s: %w", section.Name(), name, err)
}

func floatKey(section *ini.Section, name string, def float64) (float64, error) {
	if !section.HasKey(name) {
		return def, nil
	}
	v, err := section.Key(name).Float64()
	if err != nil {
		return 0, keyError(section, name, err)
	}
	return v, nil
}

func intKey(section *ini.Section, name string, def int) (int, error) {
	if !section.HasKey(name) {
		return def, nil
	}
	v, err := strconv.ParseInt(section.Key(name).String(), 0, 64)
	if err != nil {
		return 0, keyError(section, name, err)
	}
	return int(v), nil
}

// uint16Key accepts decimal and 0x prefixed hexadecimal values
func uint16Key(section *ini.Section, name string) (uint16, error) {
	if !section.HasKey(name) || section.Key(name).String() == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(section.Key(name).String(), 0, 16)
	if err != nil {
		return 0, keyError(section, name, err)
	}
	return uint16(v), nil
}

func boolKey(section *ini.Section, name string, def bool) (bool, error) {
	if !section.HasKey(name) {
		return def, nil
	}
	v, err := section.Key(name).Bool()
	if err != nil {
		return false, keyError(section, name, err)
	}
	return v, nil
}

func millisKey(section *ini.Section, name string, def time.Duration) (time.Duration, error) {
	v, err := intKey(section, name, int(def/time.Millisecond))
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, keyError(section, name, fmt.Errorf("positive value expected, got %d", v))
	}
	return time.Millisecond * time.Duration(v), nil
}

// ParseConfig parses ini data, missing keys fall back to defaults
func ParseConfig(data []byte) (PadshimConfig, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return PadshimConfig{}, fmt.Errorf("ini parsing failed: %w", err)
	}

	var c PadshimConfig

	// [shim]
	s := cfg.Section("shim")
	c.Shim.Deadzone, err = floatKey(s, "deadzone", shim.DefaultDeadzone)
	if err != nil {
		return c, err
	}
	if !(c.Shim.Deadzone >= 0 && c.Shim.Deadzone < 1) {
		return c, keyError(s, "deadzone", fmt.Errorf("value out of range [0, 1): %v", c.Shim.Deadzone))
	}
	c.Shim.Filter.Vendor, err = uint16Key(s, "vendor")
	if err != nil {
		return c, err
	}
	c.Shim.Filter.Product, err = uint16Key(s, "product")
	if err != nil {
		return c, err
	}
	c.Shim.ReconnectInterval, err = millisKey(s, "reconnect_interval", shim.DefaultReconnectInterval)
	if err != nil {
		return c, err
	}
	c.Shim.PollTimeout, err = millisKey(s, "poll_timeout", shim.DefaultPollTimeout)
	if err != nil {
		return c, err
	}
	c.Shim.Grab, err = boolKey(s, "grab", false)
	if err != nil {
		return c, err
	}

	// [web]
	w := cfg.Section("web")
	c.Web.Enabled, err = boolKey(w, "enabled", false)
	if err != nil {
		return c, err
	}
	c.Web.Address = w.Key("address").MustString(":8080")
	c.Web.SyncInterval, err = millisKey(w, "sync_interval", time.Second*5)
	if err != nil {
		return c, err
	}

	// [screen]
	screen := cfg.Section("screen")
	c.Screen.Enabled, err = boolKey(screen, "enabled", false)
	if err != nil {
		return c, err
	}

	switch t := screen.Key("type").MustString("20x4"); t {
	case "16x2":
		c.Screen.LcdType = hd44780.LCD_16x2
	case "20x4":
		c.Screen.LcdType = hd44780.LCD_20x4
	default:
		return c, keyError(screen, "type", fmt.Errorf("unsupported screen type %q", t))
	}

	c.Screen.Bus, err = intKey(screen, "bus", 1)
	if err != nil {
		return c, err
	}
	address, err := intKey(screen, "address", 0x27)
	if err != nil {
		return c, err
	}
	if address < 0 || address > 0x7f {
		return c, keyError(screen, "address", fmt.Errorf("invalid i2c address: 0x%x", address))
	}
	c.Screen.Address = uint8(address)

	c.Screen.UpdateRate, err = intKey(screen, "update_rate", 4)
	if err != nil {
		return c, err
	}
	if c.Screen.UpdateRate <= 0 {
		return c, keyError(screen, "update_rate", fmt.Errorf("positive value expected, got %d", c.Screen.UpdateRate))
	}

	for i := range c.Screen.ExitMessage {
		c.Screen.ExitMessage[i] = screen.Key(fmt.Sprintf("exit_message%d", i+1)).String()
	}

	return c, nil
}

// LoadConfig reads the configuration file, any failure is fatal
func LoadConfig(path string) PadshimConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c, err := ParseConfig(data)
	if err != nil {
		panic(err)
	}
	return c
}

//go:embed padshim-config/padshim.config
var templateConfig []byte

const defaultConfigPath = "padshim-config/padshim.config"

// createConfigIfNeeded writes the default configuration if the file does not exist yet,
// existing configuration stays intact
func createConfigIfNeeded(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot stat config file: %w", err)
	}

	log.Info("config not exist, generating...", logger.Info)

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0o777)
	if err != nil {
		return fmt.Errorf("cannot create \"%s\" directory: %w", dir, err)
	}

	err = os.WriteFile(path, templateConfig, 0o666)
	if err != nil {
		return fmt.Errorf("cannot write data into \"%s\" file: %w", path, err)
	}

	log.Info(fmt.Sprintf("Created \"%s\" file", path), logger.Debug)
	return nil
}
