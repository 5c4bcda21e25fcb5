package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

// RaceDay is the turn label shown on scheduled race days.
const RaceDay = "Race Day"

// UnknownYear is returned when the year banner cannot be read.
const UnknownYear = "Unknown Year"

// UnknownCriteria is returned when the goal criteria cannot be read.
const UnknownCriteria = "Unknown Criteria"

// Turn is either a turn counter or a race day.
type Turn struct {
	Number  int
	RaceDay bool
}

func (t Turn) String() string {
	if t.RaceDay {
		return RaceDay
	}
	return strconv.Itoa(t.Number)
}

var (
	failurePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,3})\s*%`),
		regexp.MustCompile(`%\s*(\d{1,3})`),
		regexp.MustCompile(`(\d{1,3})`),
	}
	digitRun   = regexp.MustCompile(`\d+`)
	spaceRun   = regexp.MustCompile(`\s+`)
	nameJunk   = regexp.MustCompile(`[^\w\s\-()'"&]`)
	leadDigits = regexp.MustCompile(`^[0-9]+`)

	turnFixes = strings.NewReplacer(
		"y", "9", "]", "1", "l", "1", "I", "1",
		"o", "8", "O", "0", "/", "7", "®", "9",
	)
	criteriaFixes = strings.NewReplacer(
		"Entrycriteriamet", "Entry criteria met",
		"Entrycriteria", "Entry criteria",
		"criteriamet", "criteria met",
		"Goalachieved", "Goal achieved",
	)
)

// ParseFailure extracts a failure percentage in 0..100. The patterns are
// tried in order and the first in-range match wins.
func ParseFailure(text string) (int, bool) {
	for _, p := range failurePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		rate, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if rate >= 0 && rate <= 100 {
			return rate, true
		}
	}
	return 0, false
}

// ParseTurn reads the turn counter. Race day labels are recognized before
// the digit fixes are applied. Unreadable text gives turn 1.
func ParseTurn(text string) Turn {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "Race Day") || strings.Contains(text, "RaceDay") || strings.Contains(text, "Race Da") {
		return Turn{RaceDay: true}
	}

	fixed := turnFixes.Replace(text)
	if m := digitRun.FindString(fixed); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return Turn{Number: n}
		}
	}
	return Turn{Number: 1}
}

// NormalizeYear cleans the year banner text.
func NormalizeYear(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return UnknownYear
	}
	if strings.Contains(text, "Pre-Debu") && !strings.Contains(text, "Pre-Debut") {
		text = strings.Replace(text, "Pre-Debu", "Pre-Debut", 1)
	}
	return text
}

// NormalizeCriteria applies the usual spacing fixes to the criteria line.
func NormalizeCriteria(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return UnknownCriteria
	}
	return criteriaFixes.Replace(text)
}

// CriteriaMet reports whether the criteria line says the goal is satisfied.
func CriteriaMet(text string) bool {
	first, _, _ := strings.Cut(text, " ")
	lower := strings.ToLower(text)
	return first == "criteria" ||
		strings.Contains(lower, "criteria met") ||
		strings.Contains(lower, "goal achieved")
}

// FirstNumber returns the first run of digits in text.
func FirstNumber(text string) (int, bool) {
	m := digitRun.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AllDigits joins every digit in text and parses the result. Separators such
// as commas in "12,345" are dropped. No digits gives 0.
func AllDigits(text string) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// CleanSkillName tidies an OCR'd skill name.
func CleanSkillName(text string) string {
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	text = nameJunk.ReplaceAllString(text, "")
	text = strings.TrimSpace(leadDigits.ReplaceAllString(text, ""))

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "1") && strings.Contains(lower, "can see"),
		strings.Contains(lower, "can see right through you"):
		text = "I Can See Right Through You"
	case lower == "umastan" || lower == "uma stan" || lower == "umestan":
		text = "Uma Stan"
	}

	if text == "" {
		return "Unknown Skill"
	}
	return text
}

// CleanSkillPrice returns the first number in an OCR'd price, or 0.
func CleanSkillPrice(text string) int {
	n, _ := FirstNumber(text)
	return n
}
