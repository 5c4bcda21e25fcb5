package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays environment variables on c. Unset variables leave the
// file values alone.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("UMA_ADB_PATH"); val != "" {
		c.ADB.Path = val
	}
	if val := os.Getenv("UMA_DEVICE"); val != "" {
		c.ADB.DeviceAddress = val
	}
	if val, ok := getEnvBool("UMA_DEBUG"); ok {
		c.DebugMode = val
	}
	if val := os.Getenv("UMA_HISTORY_DSN"); val != "" {
		c.History.DSN = val
	}
	if val := os.Getenv("UMA_STATUS_ADDR"); val != "" {
		c.Status.HTTPAddr = val
	}
	if val := os.Getenv("UMA_MODE"); val != "" {
		c.Mode = val
		c.ApplyDefaults()
	}
}

func getEnvBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
