// Package config manages the bot configuration file.
//
// The file is read once at startup. JSON is the default format; a .yaml or
// .yml extension switches to YAML. Tools that wrap the whole document in a
// top-level "config" key are supported, as are the older flat layouts that
// kept training keys at the top level.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Game modes.
const (
	ModeURA   = "ura"
	ModeUnity = "unity"
)

// Skill purchase modes.
const (
	SkillPurchaseManual = "manual"
	SkillPurchaseAuto   = "auto"
)

// Moods ordered from worst to best.
var Moods = []string{"AWFUL", "BAD", "NORMAL", "GOOD", "GREAT"}

// MoodIndex returns the position of mood in Moods, or -1 when unknown.
func MoodIndex(mood string) int {
	for i, m := range Moods {
		if strings.EqualFold(m, mood) {
			return i
		}
	}
	return -1
}

// Config is the whole configuration tree.
type Config struct {
	Mode      string `yaml:"mode" json:"mode"`
	DebugMode bool   `yaml:"debug_mode" json:"debug_mode"`
	AssetsDir string `yaml:"assets_dir" json:"assets_dir"`
	LogPath   string `yaml:"log" json:"log"`

	Training Training      `yaml:"training" json:"training"`
	Racing   Racing        `yaml:"racing" json:"racing"`
	Skills   Skills        `yaml:"skills" json:"skills"`
	Event    Event         `yaml:"event" json:"event"`
	Restart  RestartCareer `yaml:"restart_career" json:"restart_career"`
	ADB      ADB           `yaml:"adb_config" json:"adb_config"`
	Status   Status        `yaml:"status" json:"status"`
	History  History       `yaml:"history" json:"history"`

	// StopOnEventDetectionFailure is kept at the top level for older files;
	// Event.StopOnDetectionFailure is the preferred key.
	StopOnEventDetectionFailure bool `yaml:"stop_on_event_detection_failure,omitempty" json:"stop_on_event_detection_failure,omitempty"`

	path string
}

// Training holds the training decision thresholds.
type Training struct {
	MaxFailure             int            `yaml:"maximum_failure" json:"maximum_failure"`
	MinScore               MinScore       `yaml:"min_score" json:"min_score"`
	MinWitScore            *float64       `yaml:"min_wit_score,omitempty" json:"min_wit_score,omitempty"`
	PriorityStat           []string       `yaml:"priority_stat" json:"priority_stat"`
	StatCaps               map[string]int `yaml:"stat_caps" json:"stat_caps"`
	MinEnergy              int            `yaml:"min_energy" json:"min_energy"`
	MinimumMood            string         `yaml:"minimum_mood" json:"minimum_mood"`
	DoRaceWhenBadTraining  bool           `yaml:"do_race_when_bad_training" json:"do_race_when_bad_training"`
	SpiritBurstEnabledStat []string       `yaml:"spirit_burst_enabled_stats" json:"spirit_burst_enabled_stats"`
	ScoreFile              string         `yaml:"score_file" json:"score_file"`
	UnityScoreFile         string         `yaml:"unity_score_file" json:"unity_score_file"`
}

// Racing holds race selection settings.
type Racing struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	RetryRace        bool     `yaml:"retry_race" json:"retry_race"`
	DoCustomRace     bool     `yaml:"do_custom_race" json:"do_custom_race"`
	CustomRaceFile   string   `yaml:"custom_race_file" json:"custom_race_file"`
	RaceDataFile     string   `yaml:"race_data_file" json:"race_data_file"`
	AllowedGrades    []string `yaml:"allowed_grades" json:"allowed_grades"`
	AllowedTracks    []string `yaml:"allowed_tracks" json:"allowed_tracks"`
	AllowedDistances []string `yaml:"allowed_distances" json:"allowed_distances"`

	// Strategy is the running style set before each race (front, pace,
	// late, end). Empty leaves the game's choice alone.
	Strategy string `yaml:"strategy,omitempty" json:"strategy,omitempty"`
}

// Skills holds skill point settings.
type Skills struct {
	EnableSkillPointCheck bool   `yaml:"enable_skill_point_check" json:"enable_skill_point_check"`
	SkillPointCap         int    `yaml:"skill_point_cap" json:"skill_point_cap"`
	SkillPurchase         string `yaml:"skill_purchase" json:"skill_purchase"`
	SkillFile             string `yaml:"skill_file" json:"skill_file"`
}

// Event holds event handling settings.
type Event struct {
	PriorityFile           string   `yaml:"priority_file" json:"priority_file"`
	Databases              []string `yaml:"databases" json:"databases"`
	StopOnDetectionFailure bool     `yaml:"stop_on_detection_failure" json:"stop_on_detection_failure"`
}

// RestartCareer holds the automatic career restart settings.
type RestartCareer struct {
	Enabled              bool `yaml:"restart_enabled" json:"restart_enabled"`
	RestartTimes         int  `yaml:"restart_times" json:"restart_times"`
	TotalFansRequirement int  `yaml:"total_fans_requirement" json:"total_fans_requirement"`
}

// ADB holds the device bridge settings.
type ADB struct {
	Path          string  `yaml:"adb_path" json:"adb_path"`
	DeviceAddress string  `yaml:"device_address" json:"device_address"`
	InputDelay    float64 `yaml:"input_delay" json:"input_delay"` // seconds after each input
}

// Status holds the status snapshot settings.
type Status struct {
	Path     string `yaml:"path" json:"path"`
	HTTPAddr string `yaml:"http_addr" json:"http_addr"`
}

// History holds the career history store settings. An empty DSN disables it.
type History struct {
	DSN string `yaml:"dsn" json:"dsn"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:      ModeURA,
		AssetsDir: "assets",
		LogPath:   "bot.log",
		Training: Training{
			MaxFailure:            15,
			MinScore:              MinScore{PerStat: map[string]float64{}},
			PriorityStat:          []string{"spd", "sta", "wit", "pwr", "guts"},
			StatCaps:              map[string]int{},
			MinEnergy:             30,
			MinimumMood:           "GREAT",
			DoRaceWhenBadTraining: true,
			ScoreFile:             "training_score.json",
			UnityScoreFile:        "training_score_unity.json",
		},
		Racing: Racing{
			Enabled:          true,
			RetryRace:        true,
			CustomRaceFile:   "template/races/custom_races.json",
			RaceDataFile:     "assets/races/clean_race_data.json",
			AllowedGrades:    []string{"G1", "G2", "G3", "OP", "PRE-OP"},
			AllowedTracks:    []string{"Turf", "Dirt"},
			AllowedDistances: []string{"Sprint", "Mile", "Medium", "Long"},
		},
		Skills: Skills{
			EnableSkillPointCheck: true,
			SkillPointCap:         9999,
			SkillPurchase:         SkillPurchaseManual,
			SkillFile:             "template/skills/skills.json",
		},
		Event: Event{
			PriorityFile: "event_priority.json",
			Databases: []string{
				"assets/events/support_card.json",
				"assets/events/uma_data.json",
				"assets/events/ura_finale.json",
			},
		},
		Restart: RestartCareer{
			RestartTimes: 5,
		},
		ADB: ADB{
			Path:       "adb",
			InputDelay: 0.5,
		},
		Status: Status{
			Path: "status.json",
		},
	}
}

// Load reads the configuration at path. A missing file is created with the
// defaults and the defaults are returned. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	cfg := Default()
	cfg.path = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.parse(data, isYAML(path)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

// Parse decodes a configuration document on top of the defaults.
func Parse(data []byte, yamlDoc bool) (*Config, error) {
	cfg := Default()
	if err := cfg.parse(data, yamlDoc); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *Config) parse(data []byte, yamlDoc bool) error {
	doc, err := toJSON(data, yamlDoc)
	if err != nil {
		return err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return err
	}
	if nested, ok := top["config"]; ok && len(nested) > 0 && nested[0] == '{' {
		doc = nested
		top = nil
		if err := json.Unmarshal(doc, &top); err != nil {
			return err
		}
	}

	if err := json.Unmarshal(doc, c); err != nil {
		return err
	}
	return c.applyLegacy(top)
}

// ApplyDefaults fills zero values that would make the bot misbehave.
func (c *Config) ApplyDefaults() {
	d := Default()

	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode != ModeUnity {
		c.Mode = ModeURA
	}
	if c.AssetsDir == "" {
		c.AssetsDir = d.AssetsDir
	}
	if c.Training.MaxFailure < 0 {
		c.Training.MaxFailure = d.Training.MaxFailure
	}
	if len(c.Training.PriorityStat) == 0 {
		c.Training.PriorityStat = d.Training.PriorityStat
	}
	if MoodIndex(c.Training.MinimumMood) < 0 {
		c.Training.MinimumMood = d.Training.MinimumMood
	}
	if c.Skills.SkillPointCap <= 0 {
		c.Skills.SkillPointCap = d.Skills.SkillPointCap
	}
	c.Skills.SkillPurchase = strings.ToLower(c.Skills.SkillPurchase)
	if c.Skills.SkillPurchase != SkillPurchaseAuto {
		c.Skills.SkillPurchase = SkillPurchaseManual
	}
	if c.ADB.Path == "" {
		c.ADB.Path = d.ADB.Path
	}
	if c.ADB.InputDelay < 0 {
		c.ADB.InputDelay = 0
	}
	if c.Status.Path == "" {
		c.Status.Path = d.Status.Path
	}
	if c.StopOnEventDetectionFailure {
		c.Event.StopOnDetectionFailure = true
	}
}

// Unity reports whether the Unity cup mode is selected.
func (c *Config) Unity() bool {
	return c.Mode == ModeUnity
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	var (
		data []byte
		err  error
	)
	if isYAML(c.path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// toJSON normalizes a YAML document to JSON so both formats share one decoder.
func toJSON(data []byte, yamlDoc bool) ([]byte, error) {
	if !yamlDoc {
		return data, nil
	}
	var v map[string]any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = map[string]any{}
	}
	return json.Marshal(v)
}
