package career

import (
	"uma-bot/internal/scoring"
	"uma-bot/internal/screen"
)

// Screen layout for a 1080x1920 portrait device.

// Lobby banner and status fields.
var (
	yearRegion     = screen.Corners(12, 30, 372, 78)
	turnRegion     = screen.Corners(12, 90, 225, 190)
	goalRegion     = screen.Corners(372, 113, 912, 152)
	criteriaRegion = screen.Corners(372, 152, 912, 200)
	moodRegion     = screen.Corners(774, 203, 1080, 287)

	statRegions = map[string]screen.Box{
		scoring.Speed:   screen.Corners(60, 1296, 200, 1346),
		scoring.Stamina: screen.Corners(236, 1296, 376, 1346),
		scoring.Power:   screen.Corners(412, 1296, 552, 1346),
		scoring.Guts:    screen.Corners(588, 1296, 728, 1346),
		scoring.Wit:     screen.Corners(764, 1296, 904, 1346),
	}
	lobbySkillPointsRegion = screen.Corners(930, 1296, 1060, 1346)
)

// Training screen.
var (
	trainingButtons = map[string]screen.Point{
		scoring.Speed:   screen.Pt(165, 1557),
		scoring.Stamina: screen.Pt(357, 1563),
		scoring.Power:   screen.Pt(546, 1557),
		scoring.Guts:    screen.Pt(735, 1566),
		scoring.Wit:     screen.Pt(936, 1572),
	}
	// trainingOrder is the order the training buttons are hovered in.
	trainingOrder = []string{scoring.Speed, scoring.Stamina, scoring.Power, scoring.Guts, scoring.Wit}

	failureRegions = map[string]screen.Box{
		scoring.Speed:   screen.Corners(60, 1370, 270, 1420),
		scoring.Stamina: screen.Corners(252, 1370, 462, 1420),
		scoring.Power:   screen.Corners(441, 1370, 651, 1420),
		scoring.Guts:    screen.Corners(630, 1370, 840, 1420),
		scoring.Wit:     screen.Corners(831, 1370, 1041, 1420),
	}
	supportRegion = screen.Corners(876, 255, 1080, 1170)

	hoverLift  = 200
	bondOffset = screen.Pt(-2, 116)

	// Spirit icons used after a burst carry a marker in this box below the
	// icon center.
	burstMarkOffset = screen.Pt(-28, 24)
	burstMarkSize   = screen.Pt(66, 117)
)

// bondPalette maps a bond gauge color to its level.
var bondPalette = []struct {
	level int
	color screen.Color
}{
	{5, screen.RGB(255, 235, 120)},
	{4, screen.RGB(255, 173, 30)},
	{3, screen.RGB(162, 230, 30)},
	{2, screen.RGB(42, 192, 255)},
	{1, screen.RGB(109, 108, 117)},
}

// Events.
var (
	eventChoiceRegion = screen.NewBox(6, 450, 126, 1776)
	eventTitleRegion  = screen.Corners(180, 300, 900, 370)
)

// Races.
var (
	raceListRegion   = screen.NewBox(390, 1138, 513, 1495)
	raceTextOffset   = screen.NewBox(-37, -120, 580, 69)
	raceSwipeFrom    = screen.Pt(381, 1415)
	raceSwipeTo      = screen.Pt(381, 1223)
	strategyRegion   = screen.NewBox(660, 974, 378, 120)
	screenMiddle     = screen.Pt(540, 960)
	raceBackFallback = screen.Pt(78, 138)

	strategyButtons = map[string]screen.Point{
		"front": screen.Pt(882, 1159),
		"pace":  screen.Pt(645, 1159),
		"late":  screen.Pt(414, 1159),
		"end":   screen.Pt(186, 1162),
	}
)

// Skill list.
var (
	skillPointsRegion = screen.Corners(825, 605, 936, 656)
	skillAnchor       = screen.Pt(946, 809)
	skillNameBox      = screen.Corners(204, 719, 732, 788)
	skillPriceBox     = screen.Corners(834, 803, 927, 854)
	skillSwipeFrom    = screen.Pt(504, 1490)
	skillSwipeTo      = screen.Pt(504, 926)
)

// Career complete screen.
var (
	careerFansRegion   = screen.Corners(735, 335, 939, 401)
	careerPointsRegion = screen.Corners(327, 1609, 441, 1651)
	legacyConfirmTap   = screen.Pt(213, 939)
)

// Unity cup.
var (
	teamRankRegion     = screen.Corners(0, 48, 270, 201)
	opponentRankRegion = screen.Corners(3, 217, 387, 1465)
)
