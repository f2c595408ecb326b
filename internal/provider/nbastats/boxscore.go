package nbastats

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"PropScout/internal/model"
)

// boxScoreV3 is the traditional box score envelope. Unlike the resultSet
// endpoints, V3 returns nested JSON directly.
type boxScoreV3 struct {
	BoxScoreTraditional struct {
		HomeTeam boxTeam `json:"homeTeam"`
		AwayTeam boxTeam `json:"awayTeam"`
	} `json:"boxScoreTraditional"`
}

type boxTeam struct {
	Players []struct {
		FirstName  string `json:"firstName"`
		FamilyName string `json:"familyName"`
		Statistics struct {
			Points            float64 `json:"points"`
			ReboundsTotal     float64 `json:"reboundsTotal"`
			Assists           float64 `json:"assists"`
			ThreePointersMade float64 `json:"threePointersMade"`
			BlocksTotal       float64 `json:"blocksTotal"`
			Steals            float64 `json:"steals"`
			Turnovers         float64 `json:"turnovers"`
		} `json:"statistics"`
	} `json:"players"`
}

// gameIDsForDate returns the game IDs for a past date ("YYYY-MM-DD").
func (c *Client) gameIDsForDate(date string) []string {
	// scoreboardv2 wants MM/DD/YYYY
	if parts := strings.Split(date, "-"); len(parts) == 3 {
		date = parts[1] + "/" + parts[2] + "/" + parts[0]
	}

	params := url.Values{}
	params.Set("GameDate", date)
	params.Set("LeagueID", "00")
	params.Set("DayOffset", "0")
	t := c.resultSet("scoreboardv2", params, "GameHeader")
	if t == nil {
		return nil
	}

	ids := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if id := t.str(row, "GAME_ID"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// BoxScores fetches every player's final stat line for all games on a date.
// Keys are lowercased full names. Players absent from the map did not play.
func (c *Client) BoxScores(date string) map[string]model.GameLogRow {
	key := "boxscores_" + date
	var lines map[string]model.GameLogRow
	if c.cache.Get(key, c.ttlGameLog, &lines) {
		return lines
	}

	lines = make(map[string]model.GameLogRow)
	for _, gid := range c.gameIDsForDate(date) {
		box, err := c.fetchBoxScore(gid)
		if err != nil {
			log.Printf("[WARN] nba stats box score %s: %v", gid, err)
			continue
		}
		for _, team := range []boxTeam{box.BoxScoreTraditional.HomeTeam, box.BoxScoreTraditional.AwayTeam} {
			for _, p := range team.Players {
				name := strings.ToLower(strings.TrimSpace(p.FirstName + " " + p.FamilyName))
				if name == "" {
					continue
				}
				s := p.Statistics
				lines[name] = model.GameLogRow{
					Points:     s.Points,
					Rebounds:   s.ReboundsTotal,
					Assists:    s.Assists,
					ThreesMade: s.ThreePointersMade,
					Blocks:     s.BlocksTotal,
					Steals:     s.Steals,
					Turnovers:  s.Turnovers,
				}
			}
		}
	}

	if len(lines) > 0 {
		c.cache.Put(key, lines)
	}
	return lines
}

func (c *Client) fetchBoxScore(gameID string) (*boxScoreV3, error) {
	u := c.baseURL + "/boxscoretraditionalv3?GameID=" + url.QueryEscape(gameID) +
		"&StartPeriod=0&EndPeriod=10&StartRange=0&EndRange=28800&RangeType=0"
	body, err := c.do(u)
	if err != nil {
		return nil, err
	}

	var box boxScoreV3
	if err := json.Unmarshal(body, &box); err != nil {
		return nil, fmt.Errorf("box score decode: %w", err)
	}
	return &box, nil
}
