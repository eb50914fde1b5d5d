package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/headtohead"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
)

// ComputeStandings builds the ranked table for one (league, season) from its
// matches. Every team in teamNames gets a row even without a completed
// match; teams seen only in matches are added too.
func ComputeStandings(leagueID, seasonID int64, matches []match.Match, teamNames map[int64]string) []standing.Row {
	rows := make(map[int64]*standing.Row, len(teamNames))
	row := func(teamID int64) *standing.Row {
		r, ok := rows[teamID]
		if !ok {
			r = &standing.Row{
				LeagueID: leagueID,
				SeasonID: seasonID,
				TeamID:   teamID,
				TeamName: teamNames[teamID],
			}
			rows[teamID] = r
		}
		return r
	}
	for teamID := range teamNames {
		row(teamID)
	}

	for _, m := range matches {
		home := row(m.HomeTeamID)
		away := row(m.AwayTeamID)
		if !m.IsCompleted() {
			continue
		}
		hs, as := *m.HomeScore, *m.AwayScore
		applyResult(home, hs, as)
		applyResult(away, as, hs)
	}

	out := make([]standing.Row, 0, len(rows))
	for _, r := range rows {
		r.PointsDiff = r.PointsFor - r.PointsAgainst
		r.CompetitionPoints = standing.PointsWin*r.Wins +
			standing.PointsDraw*r.Draws +
			standing.PointsLosingBonus*r.LosingBonusPoints +
			r.TryBonusPoints
		out = append(out, *r)
	}
	return RankStandings(out)
}

func applyResult(r *standing.Row, scored, conceded int) {
	r.GamesPlayed++
	r.PointsFor += scored
	r.PointsAgainst += conceded
	switch {
	case scored > conceded:
		r.Wins++
	case scored == conceded:
		r.Draws++
	default:
		r.Losses++
		if conceded-scored <= standing.LosingBonusMargin {
			r.LosingBonusPoints++
		}
	}
}

// RankStandings sorts rows into table order and numbers them from 1.
func RankStandings(rows []standing.Row) []standing.Row {
	sort.SliceStable(rows, func(i, j int) bool {
		return standing.Less(rows[i], rows[j])
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

// ComputeHeadToHead compares two identities over the given matches. Only
// completed meetings count toward the record; unscored meetings after now
// are listed as upcoming. recentLimit caps the recent list only.
func ComputeHeadToHead(
	matches []match.Summary,
	idsA, idsB []int64,
	nameA, nameB string,
	now time.Time,
	recentLimit int,
) headtohead.Record {
	setA := idSet(idsA)
	setB := idSet(idsB)

	out := headtohead.Record{
		TeamAIDs:  idsA,
		TeamBIDs:  idsB,
		TeamAName: nameA,
		TeamBName: nameB,
		Recent:    []match.Summary{},
		Upcoming:  []match.Summary{},
	}

	completed := make([]match.Summary, 0, len(matches))
	for _, m := range matches {
		if !m.Involves(setA, setB) {
			continue
		}
		switch {
		case m.IsCompleted():
			completed = append(completed, m)
		case m.IsUpcoming(now):
			out.Upcoming = append(out.Upcoming, m)
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return kickoffAfter(completed[i].Match, completed[j].Match)
	})
	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		return kickoffAfter(out.Upcoming[j].Match, out.Upcoming[i].Match)
	})

	for _, m := range completed {
		switch winner(m.Match, setA) {
		case headtohead.SideA:
			out.WinsA++
		case headtohead.SideB:
			out.WinsB++
		default:
			out.Draws++
		}
	}
	out.Total = len(completed)
	if out.Total > 0 {
		total := float64(out.Total)
		out.WinRateA = round1(100 * float64(out.WinsA) / total)
		out.WinRateB = round1(100 * float64(out.WinsB) / total)
		out.DrawRate = round1(100 * float64(out.Draws) / total)
	}

	out.Streak = currentStreak(completed, setA, nameA, nameB)

	if recentLimit > 0 && len(completed) > recentLimit {
		completed = completed[:recentLimit]
	}
	out.Recent = append(out.Recent, completed...)
	return out
}

// currentStreak expects completed meetings most recent first.
func currentStreak(completed []match.Summary, setA map[int64]struct{}, nameA, nameB string) *headtohead.Streak {
	if len(completed) == 0 {
		return nil
	}
	seed := winner(completed[0].Match, setA)
	if seed == headtohead.SideDraw {
		return &headtohead.Streak{Side: headtohead.SideDraw, Label: "Draw", Length: 1}
	}

	length := 0
	for _, m := range completed {
		if winner(m.Match, setA) != seed {
			break
		}
		length++
	}

	name := nameA
	if seed == headtohead.SideB {
		name = nameB
	}
	return &headtohead.Streak{Side: seed, Label: name + " win", Length: length}
}

// winner assumes m is completed and involves both identities.
func winner(m match.Match, setA map[int64]struct{}) headtohead.Side {
	hs, as := *m.HomeScore, *m.AwayScore
	if hs == as {
		return headtohead.SideDraw
	}
	_, homeIsA := setA[m.HomeTeamID]
	if (hs > as) == homeIsA {
		return headtohead.SideA
	}
	return headtohead.SideB
}

// kickoffAfter orders a before b when a kicked off later. Unknown kickoffs
// sort as oldest; equal kickoffs fall back to the higher id.
func kickoffAfter(a, b match.Match) bool {
	switch {
	case a.KickoffTime == nil && b.KickoffTime == nil:
		return a.ID > b.ID
	case a.KickoffTime == nil:
		return false
	case b.KickoffTime == nil:
		return true
	case !a.KickoffTime.Equal(*b.KickoffTime):
		return a.KickoffTime.After(*b.KickoffTime)
	default:
		return a.ID > b.ID
	}
}

func idSet(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
