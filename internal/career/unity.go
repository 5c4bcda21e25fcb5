package career

import (
	"context"
	"image"
	"strings"
	"time"

	"uma-bot/internal/logger"
	"uma-bot/internal/screen"
)

// Ranks from strongest to weakest. The team banner has no F or G template.
var (
	rankOrder     = []string{"S", "A", "B", "C", "D", "E", "F", "G"}
	teamRanks     = []string{"S", "A", "B", "C", "D", "E"}
	opponentRanks = []string{"A", "B", "C", "D", "E", "F", "G"}
)

const (
	unityStepWait = 20 * time.Second
	unityPoll     = 500 * time.Millisecond
)

func rankIndex(rank string) int {
	for i, r := range rankOrder {
		if r == rank {
			return i
		}
	}
	return -1
}

// RankedBox is a rank badge found on the opponent screen.
type RankedBox struct {
	Rank string
	Box  screen.Box
}

// DetectRanks finds the rank badges of one kind ("team" or "opponent")
// inside region.
func DetectRanks(img image.Image, m Matcher, kind string, ranks []string, region screen.Box) []RankedBox {
	var out []RankedBox
	for _, rank := range ranks {
		name := "unity/" + kind + "_" + strings.ToLower(rank)
		for _, box := range screen.Dedupe(m.Find(img, name, 0.8, region), iconDedupe) {
			out = append(out, RankedBox{Rank: rank, Box: box})
		}
	}
	return out
}

// PickOpponent returns the strongest opponent that is not stronger than the
// team.
func PickOpponent(team string, opponents []RankedBox) (RankedBox, bool) {
	teamIdx := rankIndex(team)
	if teamIdx < 0 {
		return RankedBox{}, false
	}
	best, bestIdx := RankedBox{}, -1
	for _, o := range opponents {
		idx := rankIndex(o.Rank)
		if idx < teamIdx {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = o, idx
		}
	}
	return best, bestIdx >= 0
}

func (b *Bot) unityCup(ctx context.Context, _ image.Image, _ screen.Box) (bool, error) {
	b.decide("Unity cup race")
	ok, err := b.ctl.WaitAndDoubleTap(ctx, "unity/unity_race", 8*time.Second)
	if err != nil || !ok {
		return false, err
	}

	var (
		img               image.Image
		selectBox, zenBox screen.Box
		selectOK, zenOK   bool
	)
	for i := 0; i < int(unityStepWait/unityPoll); i++ {
		if img, err = b.ctl.Capture(ctx); err != nil {
			return true, err
		}
		selectBox, selectOK = b.match.Locate(img, "unity/select_opponent", 0.8, Everywhere)
		zenBox, zenOK = b.match.Locate(img, "unity/zenith_race_btn", 0.8, Everywhere)
		if selectOK || zenOK {
			break
		}
		if err := b.ctl.Wait(ctx, unityPoll); err != nil {
			return true, err
		}
	}

	switch {
	case selectOK:
		team := DetectRanks(img, b.match, "team", teamRanks, teamRankRegion)
		opponents := DetectRanks(img, b.match, "opponent", opponentRanks, opponentRankRegion)
		if len(team) > 0 {
			logger.LogInfo("Team rank %s, %d opponents", team[0].Rank, len(opponents))
			if o, ok := PickOpponent(team[0].Rank, opponents); ok {
				logger.LogInfo("Racing the rank %s team", o.Rank)
				if err := b.ctl.DoubleTap(ctx, o.Box.Center(), "opponent "+o.Rank); err != nil {
					return true, err
				}
			} else {
				logger.LogWarn("No opponent at or below rank %s", team[0].Rank)
			}
		} else {
			logger.LogWarn("Team rank not found")
		}
		if err := b.ctl.DoubleTap(ctx, selectBox.Center(), "select opponent"); err != nil {
			return true, err
		}
	case zenOK:
		if err := b.ctl.DoubleTap(ctx, zenBox.Center(), "zenith race"); err != nil {
			return true, err
		}
	default:
		logger.LogWarn("Neither opponent selection nor zenith race showed up")
		return false, nil
	}

	b.status.Count("unity_race")
	for _, name := range []string{
		"unity/begin_showdown",
		"unity/see_all_race_btn",
		"buttons/skip_btn",
		"buttons/next_btn",
		"unity/next_unity",
		"buttons/next_btn",
	} {
		if _, err := b.ctl.WaitAndDoubleTap(ctx, name, unityStepWait); err != nil {
			return true, err
		}
	}
	return true, nil
}
