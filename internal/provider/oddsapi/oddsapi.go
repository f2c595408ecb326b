// Package oddsapi fetches game spreads and player props from The Odds API.
// The API is quota-billed, so every request is cached and charged against
// the monthly credit tracker.
package oddsapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PropScout/internal/cache"
	"PropScout/internal/config"
	"PropScout/internal/model"
)

const sportKey = "basketball_nba"

// Client talks to The Odds API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	regions    string
	preferred  string
	cache      *cache.FileCache
	credits    *cache.CreditTracker
	propsTTL   time.Duration
}

// New creates an odds client. A missing API key is tolerated: calls return
// empty results so the rest of the pipeline can run against cached data.
func New(cfg *config.Config, fc *cache.FileCache, credits *cache.CreditTracker) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.Providers.OddsAPIBaseURL,
		apiKey:     cfg.Providers.OddsAPIKey,
		regions:    cfg.Providers.OddsRegions,
		preferred:  cfg.Providers.PreferredBookmaker,
		cache:      fc,
		credits:    credits,
		propsTTL:   cfg.Cache.TTL.Props,
	}
}

func (c *Client) get(path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("odds api: no API key configured")
	}
	if !c.credits.Spend(1) {
		return fmt.Errorf("odds api: monthly credit budget exhausted")
	}

	params.Set("apiKey", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	resp, err := c.httpClient.Get(u)
	if err != nil {
		return fmt.Errorf("odds api fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("odds api read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odds api: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("odds api decode: %w", err)
	}
	return nil
}

// Event is one game listing from the events endpoint.
type Event struct {
	ID       string `json:"id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// Events fetches today's NBA events.
func (c *Client) Events() []Event {
	var events []Event
	if c.cache.Get("odds_events", c.propsTTL, &events) {
		return events
	}

	params := url.Values{}
	params.Set("regions", c.regions)
	if err := c.get("/sports/"+sportKey+"/events", params, &events); err != nil {
		log.Printf("[WARN] odds api events: %v", err)
		return nil
	}
	c.cache.Put("odds_events", events)
	return events
}

// MatchEvent finds the event ID for a game by team name containment in
// either direction. Returns "" when no event matches.
func MatchEvent(game *model.NBAGame, events []Event) string {
	home := strings.ToLower(game.HomeTeam)
	away := strings.ToLower(game.AwayTeam)
	for _, e := range events {
		eh := strings.ToLower(e.HomeTeam)
		ea := strings.ToLower(e.AwayTeam)
		if (strings.Contains(eh, home) || strings.Contains(home, eh)) &&
			(strings.Contains(ea, away) || strings.Contains(away, ea)) {
			return e.ID
		}
	}
	return ""
}

type oddsResponse struct {
	Bookmakers []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key     string      `json:"key"`
	Markets []oddMarket `json:"markets"`
}

type oddMarket struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name        string   `json:"name"`        // "Over" / "Under" or a team name
	Description string   `json:"description"` // player name on prop markets
	Point       *float64 `json:"point"`
	Price       float64  `json:"price"`
}

// GameSpread returns the home team's spread (negative means home favourite).
// Preferred bookmaker first, then any bookmaker in the region plus US.
func (c *Client) GameSpread(eventID string) (float64, bool) {
	key := "spread_" + eventID
	var cached float64
	if c.cache.Get(key, c.propsTTL, &cached) {
		return cached, true
	}

	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", "spreads")
	params.Set("bookmakers", c.preferred)
	var resp oddsResponse
	spread, ok := 0.0, false
	if err := c.get("/sports/"+sportKey+"/events/"+eventID+"/odds", params, &resp); err == nil {
		spread, ok = extractSpread(resp.Bookmakers)
	}
	if !ok {
		params = url.Values{}
		params.Set("regions", c.regions+",us")
		params.Set("markets", "spreads")
		resp = oddsResponse{}
		if err := c.get("/sports/"+sportKey+"/events/"+eventID+"/odds", params, &resp); err != nil {
			log.Printf("[WARN] odds api spread %s: %v", eventID, err)
			return 0, false
		}
		spread, ok = extractSpread(resp.Bookmakers)
	}
	if ok {
		c.cache.Put(key, spread)
	}
	return spread, ok
}

func extractSpread(bms []bookmaker) (float64, bool) {
	for _, bm := range bms {
		for _, m := range bm.Markets {
			if m.Key != "spreads" {
				continue
			}
			for _, o := range m.Outcomes {
				if o.Point != nil {
					return *o.Point, true
				}
			}
		}
	}
	return 0, false
}

// propEntry accumulates both books' quotes for one (player, market).
type propEntry struct {
	player    string
	market    model.Market
	line      *float64
	prefOver  float64
	prefUnder float64
	bestOver  float64
	bestUnder float64
	bestBook  string
}

// PlayerProps fetches all prop outcomes for an event across the configured
// markets. One prop per (player, market): the preferred bookmaker's quote
// when it carries the market, otherwise the best available line.
// playerIDs maps lowercased player names to NBA player IDs; unknown players
// are skipped.
func (c *Client) PlayerProps(eventID string, game *model.NBAGame, playerIDs map[string]int) []model.PlayerProp {
	markets := make([]string, 0, len(model.AllMarkets()))
	for _, m := range model.AllMarkets() {
		markets = append(markets, string(m))
	}
	sort.Strings(markets)

	key := "props_" + eventID + "_" + strings.Join(markets, "_")
	var resp oddsResponse
	if !c.cache.Get(key, c.propsTTL, &resp) {
		params := url.Values{}
		params.Set("regions", c.regions)
		params.Set("markets", strings.Join(markets, ","))
		if err := c.get("/sports/"+sportKey+"/events/"+eventID+"/odds", params, &resp); err != nil {
			log.Printf("[WARN] odds api props %s: %v", eventID, err)
			return nil
		}
		c.cache.Put(key, resp)
	}

	return c.buildProps(resp.Bookmakers, game, playerIDs)
}

type propKey struct {
	player string
	market model.Market
}

func (c *Client) buildProps(bms []bookmaker, game *model.NBAGame, playerIDs map[string]int) []model.PlayerProp {
	index := make(map[propKey]*propEntry)
	order := make([]propKey, 0)

	for _, bm := range bms {
		for _, m := range bm.Markets {
			mkt := model.Market(m.Key)
			if !mkt.Known() {
				continue
			}
			for _, players := range groupByPlayer(m.Outcomes) {
				entryKey := propKey{player: players.name, market: mkt}
				entry, ok := index[entryKey]
				if !ok {
					entry = &propEntry{player: players.name, market: mkt}
					index[entryKey] = entry
					order = append(order, entryKey)
				}

				if bm.Key == c.preferred {
					entry.prefOver = players.over
					entry.prefUnder = players.under
					if players.line != nil {
						entry.line = players.line
					}
				}
				if players.over > entry.bestOver {
					entry.bestOver = players.over
					entry.bestBook = bm.Key
					if entry.line == nil && players.line != nil {
						entry.line = players.line
					}
				}
				if players.under > entry.bestUnder {
					entry.bestUnder = players.under
				}
			}
		}
	}

	var props []model.PlayerProp
	for _, k := range order {
		e := index[k]
		if e.line == nil {
			continue
		}
		pid, ok := playerIDs[strings.ToLower(e.player)]
		if !ok {
			continue
		}

		usePref := e.prefOver > 0
		over, under, book := e.bestOver, e.bestUnder, e.bestBook
		if usePref {
			over, under, book = e.prefOver, e.prefUnder, c.preferred
		}
		if over <= 0 {
			continue
		}

		props = append(props, model.PlayerProp{
			PlayerName:  e.player,
			NBAPlayerID: pid,
			Market:      e.market,
			Line:        *e.line,
			OverOdds:    decimal.NewFromFloat(over).Round(3),
			UnderOdds:   decimal.NewFromFloat(under).Round(3),
			Bookmaker:   book,
			Preferred:   usePref,
			Game:        *game,
		})
	}
	return props
}

type playerQuotes struct {
	name  string
	line  *float64
	over  float64
	under float64
}

func groupByPlayer(outcomes []outcome) []playerQuotes {
	byName := make(map[string]*playerQuotes)
	var order []string
	for _, o := range outcomes {
		if o.Description == "" {
			continue
		}
		q, ok := byName[o.Description]
		if !ok {
			q = &playerQuotes{name: o.Description}
			byName[o.Description] = q
			order = append(order, o.Description)
		}
		switch o.Name {
		case "Over":
			if o.Price > 0 {
				q.over = o.Price
			}
			q.line = o.Point
		case "Under":
			if o.Price > 0 {
				q.under = o.Price
			}
		}
	}
	out := make([]playerQuotes, 0, len(byName))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}
