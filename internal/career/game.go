package career

import (
	"fmt"
	"image"
	"strings"

	"uma-bot/internal/config"
	"uma-bot/internal/logger"
	"uma-bot/internal/ocr"
	"uma-bot/internal/races"
	"uma-bot/internal/scoring"
	"uma-bot/internal/screen"
	"uma-bot/internal/status"
)

// Reader reads text fields off a screenshot.
type Reader interface {
	Text(img image.Image, box screen.Box, opts ocr.Options) string
	Failure(img image.Image, box screen.Box, label string, recapture func() (image.Image, error)) (int, float64, error)
	Turn(img image.Image, box screen.Box) ocr.Turn
	Year(img image.Image, box screen.Box) string
	Criteria(img image.Image, box screen.Box) string
	Goal(img image.Image, box screen.Box) string
	Stat(img image.Image, box screen.Box) int
	SkillPoints(img image.Image, box screen.Box) int
	Number(img image.Image, box screen.Box) int
	EventTitle(img image.Image, box screen.Box) string
	SkillName(img image.Image, box screen.Box) string
	SkillPrice(img image.Image, box screen.Box) int
}

// UnknownMood is the mood when no template is confident enough.
const UnknownMood = "UNKNOWN"

const (
	moodThreshold = 0.55

	// infirmaryBrightness separates the lit infirmary button from the
	// greyed out one.
	infirmaryBrightness = 170
)

// GameState is what the lobby shows on one tick.
type GameState struct {
	Year        string
	Turn        ocr.Turn
	Mood        string
	Goal        string
	Criteria    string
	CriteriaMet bool
	// Energy is the energy bar percentage, or -1 when the bar was not found.
	Energy      float64
	Stats       map[string]int
	SkillPoints int
	// Infirmary is set when the infirmary button is lit.
	Infirmary    bool
	InfirmaryBox screen.Box
}

// DayKey identifies a turn of the career.
func (gs GameState) DayKey() string {
	return fmt.Sprintf("%s|%s", gs.Year, gs.Turn)
}

// PreDebut reports whether the career is still before the debut race.
func (gs GameState) PreDebut() bool {
	return races.IsPreDebut(gs.Year)
}

// Finale reports whether this is a race day of the URA finale.
func (gs GameState) Finale() bool {
	return gs.Year == scoring.FinaleYear && gs.Turn.RaceDay
}

func (gs GameState) status() status.Game {
	return status.Game{
		Year:        gs.Year,
		Turn:        gs.Turn.String(),
		Mood:        gs.Mood,
		Goal:        gs.Goal,
		Criteria:    gs.Criteria,
		CriteriaMet: gs.CriteriaMet,
		Energy:      gs.Energy,
		Stats:       gs.Stats,
	}
}

// ReadGame reads every lobby field from img.
func ReadGame(img image.Image, m Matcher, r Reader) GameState {
	gs := GameState{
		Year:        r.Year(img, yearRegion),
		Turn:        r.Turn(img, turnRegion),
		Mood:        Mood(img, m),
		Goal:        r.Goal(img, goalRegion),
		Criteria:    r.Criteria(img, criteriaRegion),
		Stats:       make(map[string]int, len(scoring.Stats)),
		SkillPoints: r.SkillPoints(img, lobbySkillPointsRegion),
	}
	gs.CriteriaMet = ocr.CriteriaMet(gs.Criteria)

	for _, stat := range scoring.Stats {
		gs.Stats[stat] = r.Stat(img, statRegions[stat])
	}

	energy, err := m.Energy(img)
	if err != nil {
		logger.LogDebug("Energy bar not found: %v", err)
		energy = -1
	}
	gs.Energy = energy

	if box, ok := m.Locate(img, "buttons/infirmary_btn2", 0.9, Everywhere); ok {
		gs.InfirmaryBox = box
		gs.Infirmary = screen.MeanBrightness(img, box) > infirmaryBrightness
	}
	return gs
}

// Mood picks the mood template that matches best in the mood region. Ties
// keep the worse mood.
func Mood(img image.Image, m Matcher) string {
	best, bestScore := UnknownMood, -1.0
	for _, mood := range config.Moods {
		score := m.MaxConfidence(img, "mood/"+strings.ToLower(mood), moodRegion)
		if score > bestScore {
			best, bestScore = mood, score
		}
	}
	if bestScore < moodThreshold {
		logger.LogDebug("Mood unreadable, best %s at %.2f", best, bestScore)
		return UnknownMood
	}
	return best
}
