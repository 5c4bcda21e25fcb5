package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uma-bot/internal/scoring"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeURA, cfg.Mode)
	assert.Equal(t, 15, cfg.Training.MaxFailure)
	assert.FileExists(t, path)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Training.PriorityStat, again.Training.PriorityStat)
	assert.Equal(t, cfg.Skills.SkillPointCap, again.Skills.SkillPointCap)
}

func TestLoad_JSONKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"mode": "Unity",
		"training": {"maximum_failure": 20, "min_energy": 45},
		"racing": {"retry_race": false}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Unity())
	assert.Equal(t, 20, cfg.Training.MaxFailure)
	assert.Equal(t, 45, cfg.Training.MinEnergy)
	assert.Equal(t, "GREAT", cfg.Training.MinimumMood)
	assert.True(t, cfg.Training.DoRaceWhenBadTraining)
	assert.False(t, cfg.Racing.RetryRace)
	assert.True(t, cfg.Racing.Enabled)
	assert.Equal(t, 9999, cfg.Skills.SkillPointCap)
}

func TestLoad_NestedConfigKey(t *testing.T) {
	path := writeFile(t, "config.json", `{"config": {"debug_mode": true, "adb_config": {"device_address": "127.0.0.1:5555"}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, "127.0.0.1:5555", cfg.ADB.DeviceAddress)
	assert.Equal(t, "adb", cfg.ADB.Path)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
mode: unity
training:
  min_score:
    wit: 0.5
  stat_caps:
    spd: 1100
restart_career:
  restart_enabled: true
  restart_times: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Unity())
	assert.Equal(t, map[string]float64{"wit": 0.5}, cfg.Training.MinScore.PerStat)
	assert.Equal(t, 1100, cfg.Training.StatCaps["spd"])
	assert.True(t, cfg.Restart.Enabled)
	assert.Equal(t, 3, cfg.Restart.RestartTimes)
}

func TestLoad_YAMLDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	_, err := Load(path)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Racing.AllowedGrades, cfg.Racing.AllowedGrades)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"mode": `)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestParse_LegacyTopLevelTrainingKeys(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"maximum_failure": 10,
		"min_score": 2,
		"min_wit_score": 0.4,
		"retry_race": false,
		"training": {"maximum_failure": 12}
	}`), false)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Training.MaxFailure, "nested key wins")
	require.NotNil(t, cfg.Training.MinScore.All)
	assert.Equal(t, 2.0, *cfg.Training.MinScore.All)
	require.NotNil(t, cfg.Training.MinWitScore)
	assert.False(t, cfg.Racing.RetryRace)
}

func TestParse_Normalizes(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"mode": "something",
		"training": {"minimum_mood": "happy", "maximum_failure": -5},
		"skills": {"skill_purchase": "AUTO", "skill_point_cap": 0},
		"stop_on_event_detection_failure": true
	}`), false)
	require.NoError(t, err)

	assert.Equal(t, ModeURA, cfg.Mode)
	assert.Equal(t, "GREAT", cfg.Training.MinimumMood)
	assert.Equal(t, 15, cfg.Training.MaxFailure, "negative ceilings reset")
	assert.Equal(t, SkillPurchaseAuto, cfg.Skills.SkillPurchase)
	assert.Equal(t, 9999, cfg.Skills.SkillPointCap)
	assert.True(t, cfg.Event.StopOnDetectionFailure)
}

func TestParse_ZeroMaxFailure(t *testing.T) {
	cfg, err := Parse([]byte(`{"training": {"maximum_failure": 0}}`), false)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Training.MaxFailure)
	assert.Equal(t, 0, cfg.Training.Selector().MaxFailure)

	cfg, err = Parse([]byte(`{"training": {}}`), false)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Training.MaxFailure)
}

func TestMinScore_Forms(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantAll *float64
		wantMap map[string]float64
	}{
		{"scalar", `{"training": {"min_score": 1.5}}`, ptr(1.5), map[string]float64{}},
		{"map", `{"training": {"min_score": {"spd": 2}}}`, nil, map[string]float64{"spd": 2}},
		{"null", `{"training": {"min_score": null}}`, nil, map[string]float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.body), false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAll, cfg.Training.MinScore.All)
			assert.Equal(t, tt.wantMap, cfg.Training.MinScore.PerStat)
		})
	}
}

func TestTrainingSelector(t *testing.T) {
	t.Run("scalar with wit override", func(t *testing.T) {
		tr := Default().Training
		tr.MinScore = MinScore{All: ptr(2)}
		tr.MinWitScore = ptr(0.5)

		sel := tr.Selector()
		assert.Equal(t, 2.0, sel.MinScore[scoring.Speed])
		assert.Equal(t, 0.5, sel.MinScore[scoring.Wit])
	})

	t.Run("map ignores wit override", func(t *testing.T) {
		tr := Default().Training
		tr.MinScore = MinScore{PerStat: map[string]float64{scoring.Guts: 0.2}}
		tr.MinWitScore = ptr(0.5)
		tr.StatCaps = map[string]int{scoring.Speed: 900}
		tr.MaxFailure = 20

		sel := tr.Selector()
		assert.Equal(t, 0.2, sel.MinScore[scoring.Guts])
		_, hasWit := sel.MinScore[scoring.Wit]
		assert.False(t, hasWit)
		assert.Equal(t, 900, sel.StatCaps[scoring.Speed])
		assert.Equal(t, 20, sel.MaxFailure)
	})
}

func TestMoodBelowMinimum(t *testing.T) {
	tr := Training{MinimumMood: "GOOD"}
	assert.True(t, tr.MoodBelowMinimum("NORMAL"))
	assert.False(t, tr.MoodBelowMinimum("GOOD"))
	assert.False(t, tr.MoodBelowMinimum("GREAT"))
	assert.False(t, tr.MoodBelowMinimum("UNKNOWN"))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("UMA_DEVICE", "emulator-5554")
	t.Setenv("UMA_DEBUG", "true")
	t.Setenv("UMA_STATUS_ADDR", ":8088")
	t.Setenv("UMA_MODE", "unity")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "emulator-5554", cfg.ADB.DeviceAddress)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, ":8088", cfg.Status.HTTPAddr)
	assert.True(t, cfg.Unity())
	assert.Equal(t, "adb", cfg.ADB.Path)
}

func TestRules_PicksModeFile(t *testing.T) {
	dir := t.TempDir()
	ura := filepath.Join(dir, "ura.json")
	unity := filepath.Join(dir, "unity.json")
	require.NoError(t, os.WriteFile(ura, []byte(`{"scoring_rules":{"hint":{"points":0.1}}}`), 0644))
	require.NoError(t, os.WriteFile(unity, []byte(`{"scoring_rules":{"hint":{"points":0.9}}}`), 0644))

	cfg := Default()
	cfg.Training.ScoreFile = ura
	cfg.Training.UnityScoreFile = unity
	cfg.Training.SpiritBurstEnabledStat = []string{scoring.Speed}

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, 0.1, rules.Hint)

	cfg.Mode = ModeUnity
	rules, err = cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, 0.9, rules.Hint)
	assert.Equal(t, []string{scoring.Speed}, rules.SpiritBurstStats)
}

func TestRules_UnityFallsBackToRegularFile(t *testing.T) {
	dir := t.TempDir()
	ura := filepath.Join(dir, "ura.json")
	require.NoError(t, os.WriteFile(ura, []byte(`{"scoring_rules":{"hint":{"points":0.1}}}`), 0644))

	cfg := Default()
	cfg.Mode = ModeUnity
	cfg.Training.ScoreFile = ura
	cfg.Training.UnityScoreFile = filepath.Join(dir, "missing.json")

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, 0.1, rules.Hint)
}

func ptr(v float64) *float64 { return &v }
