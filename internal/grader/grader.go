// Package grader orchestrates the full multi-factor analysis for a single
// prop: context resolution, context weighting, all eight factors, composite
// scoring and suspicious-line detection.
package grader

import (
	"PropScout/internal/config"
	"PropScout/internal/factors"
	"PropScout/internal/model"
	"PropScout/internal/weighting"
)

// GameLogProvider supplies player game logs and roster assignments. Lookups
// fail closed: an empty result on provider failure, never an error into the
// grading pass.
type GameLogProvider interface {
	PlayerGameLog(playerID int, season string) []model.GameLogRow
	PlayerCurrentTeam(playerID int) string
}

// TeamStatsProvider supplies team-level context. All lookups are best-effort
// and return defined neutral values on failure.
type TeamStatsProvider interface {
	RecentForm(teamID int, season string) model.TeamForm
	H2HRecord(teamID int, opponentAbbr, season string) model.TeamH2H
	AvgWinMargin(teamID int, season string) float64
	PaceRank(teamID int, season string) model.PaceRank
}

// SpreadProvider supplies the point spread for a game, when available.
type SpreadProvider interface {
	GameSpread(eventID string) (float64, bool)
}

// Grader grades props. It holds no mutable state; one Grader is safe for
// concurrent use.
type Grader struct {
	cfg   *config.Config
	logs  GameLogProvider
	teams TeamStatsProvider
	odds  SpreadProvider
}

// New creates a Grader over the given providers.
func New(cfg *config.Config, logs GameLogProvider, teams TeamStatsProvider, odds SpreadProvider) *Grader {
	return &Grader{cfg: cfg, logs: logs, teams: teams, odds: odds}
}

// Grade runs the full pipeline for one (prop, side) pair.
//
// A nil result is an abandonment, not an error: insufficient sample or a
// ruled-out player yields no grade at all, so a missing evaluation can never
// be mistaken for a neutral one.
func (g *Grader) Grade(prop model.PlayerProp, side model.Side, injuries []model.InjuryReport, season string) *model.ValuedProp {
	if !prop.Market.Known() {
		return nil
	}

	log := g.logs.PlayerGameLog(prop.NBAPlayerID, season)
	if len(log) < g.cfg.MinGamesPlayed {
		return nil
	}

	ctx := g.resolveContext(&prop, side, season, log)

	weighted := weighting.Apply(log, ctx.PlayerTeam, ctx.TonightB2B, g.cfg)

	playerTeamID := prop.Game.HomeTeamID
	if !ctx.TonightHome {
		playerTeamID = prop.Game.AwayTeamID
	}

	teamH2H := g.teams.H2HRecord(playerTeamID, ctx.Opponent, season)

	fConsistency := factors.Consistency(weighted, prop.Market, prop.Line, side, g.cfg)
	fVsOpp := factors.VsOpponent(log, prop.Market, prop.Line, side, ctx.Opponent, ctx.PlayerTeam, teamH2H, g.cfg)
	fHomeAway := factors.HomeAway(log, prop.Market, prop.Line, ctx.TonightHome, side, g.cfg)
	fInjury := factors.Injury(prop.PlayerName, ctx.PlayerTeam, ctx.Opponent, prop.Market, side, injuries, g.cfg)

	if factors.Avoid(fInjury) {
		return nil
	}

	form := g.teams.RecentForm(playerTeamID, season)
	pace := g.teams.PaceRank(playerTeamID, season)
	fTeam := factors.TeamContext(form, pace, side, g.cfg)
	fSeason := factors.SeasonAvg(log, prop.Market, prop.Line, side, g.cfg)

	spread, hasSpread := 0.0, false
	if prop.Game.OddsEventID != "" {
		spread, hasSpread = g.odds.GameSpread(prop.Game.OddsEventID)
	}
	fBlowout := factors.Blowout(factors.BlowoutInputs{
		Spread:         spread,
		HasSpread:      hasSpread,
		H2HAvgMargin:   teamH2H.AvgMargin,
		TeamWinMargin:  g.teams.AvgWinMargin(playerTeamID, season),
		TeamIsFavorite: teamIsFavorite(spread, hasSpread, ctx.TonightHome),
		IsStarter:      true, // lineup data would refine this
	}, prop.Market, side, g.cfg)

	fVolume := factors.Volume(log, prop.Market, prop.Line, side, g.cfg)

	results := []model.FactorResult{
		fConsistency, fVsOpp, fHomeAway, fInjury, fTeam, fSeason, fBlowout, fVolume,
	}

	valueScore := CompositeScore(results)

	seasonAvg, _ := fSeason.Data["primary_avg"].(float64)
	suspicious, reason := DetectSuspiciousLine(prop.Line, seasonAvg, g.cfg)

	return &model.ValuedProp{
		Prop:             prop,
		Side:             side,
		ValueScore:       valueScore,
		Factors:          results,
		Recommendation:   Recommend(valueScore),
		SeasonAvg:        seasonAvg,
		Opponent:         ctx.Opponent,
		TonightHome:      ctx.TonightHome,
		BackToBack:       ctx.TonightB2B,
		SuspiciousLine:   suspicious,
		SuspiciousReason: reason,
	}
}

// resolveContext determines the player's team and tonight's matchup facts.
func (g *Grader) resolveContext(prop *model.PlayerProp, side model.Side, season string, log []model.GameLogRow) model.GameContext {
	team := g.resolveTeam(prop, log)
	tonightHome := team == prop.Game.HomeTeam
	opponent := prop.Game.AwayTeam
	teamID := prop.Game.HomeTeamID
	if !tonightHome {
		opponent = prop.Game.HomeTeam
		teamID = prop.Game.AwayTeamID
	}
	form := g.teams.RecentForm(teamID, season)

	return model.GameContext{
		PlayerTeam:  team,
		Opponent:    opponent,
		TonightHome: tonightHome,
		TonightB2B:  form.BackToBack,
		Side:        side,
		Season:      season,
	}
}

// resolveTeam determines which of tonight's two teams the player plays for.
//
// Three-tier priority: the authoritative roster source first (catches
// mid-season trades even when the cached log is stale), then a most-recent-
// first scan of the game log matchups, then the home team as a last resort.
func (g *Grader) resolveTeam(prop *model.PlayerProp, log []model.GameLogRow) string {
	home, away := prop.Game.HomeTeam, prop.Game.AwayTeam

	if current := g.logs.PlayerCurrentTeam(prop.NBAPlayerID); current != "" {
		if current == home {
			return home
		}
		if current == away {
			return away
		}
		// Roster source names a third team: stale data, or the player is
		// not in this game. Fall through to the log scan.
	}

	for _, row := range model.SortLogByDateDesc(log) {
		team := row.Team()
		if team == home || team == away {
			return team
		}
	}

	return home
}

// teamIsFavorite interprets the spread from the home team's perspective
// (negative = home favourite). Assumes favourite when unknown.
func teamIsFavorite(spread float64, hasSpread, playerIsHome bool) bool {
	if !hasSpread {
		return true
	}
	if playerIsHome {
		return spread < 0
	}
	return spread > 0
}
