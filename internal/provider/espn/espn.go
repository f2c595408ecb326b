// Package espn fetches the league injury report from ESPN's unofficial
// injuries endpoint. Raw status strings are normalised to the internal
// vocabulary before they reach the grading pass.
package espn

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"PropScout/internal/cache"
	"PropScout/internal/config"
	"PropScout/internal/model"
)

const cacheKey = "espn_injuries"

// statusMap normalises ESPN's status vocabulary. Unmapped statuses pass
// through lowercased, where SeverityScore treats them as healthy.
var statusMap = map[string]string{
	"out":             model.StatusOut,
	"doubtful":        model.StatusDoubtful,
	"questionable":    model.StatusQuestionable,
	"probable":        model.StatusProbable,
	"day-to-day":      model.StatusQuestionable,
	"injured reserve": model.StatusOut,
	"suspension":      model.StatusOut,
}

// Client fetches NBA injury reports.
type Client struct {
	httpClient *http.Client
	url        string
	cache      *cache.FileCache
	ttl        time.Duration
}

// New creates an injury client.
func New(cfg *config.Config, fc *cache.FileCache) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        cfg.Providers.ESPNInjuryURL,
		cache:      fc,
		ttl:        cfg.Cache.TTL.Injuries,
	}
}

type injuryResponse struct {
	Injuries []struct {
		Team struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"team"`
		Injuries []struct {
			Athlete struct {
				DisplayName string `json:"displayName"`
			} `json:"athlete"`
			Status string `json:"status"`
		} `json:"injuries"`
	} `json:"injuries"`
}

// InjuryReport returns the current league-wide injury report. Failures are
// logged and yield an empty report (all players assumed healthy).
func (c *Client) InjuryReport() []model.InjuryReport {
	var reports []model.InjuryReport
	if c.cache.Get(cacheKey, c.ttl, &reports) {
		return reports
	}

	data, err := c.fetch()
	if err != nil {
		log.Printf("[WARN] espn injuries: %v", err)
		return nil
	}

	for _, team := range data.Injuries {
		abbr := team.Team.Abbreviation
		if abbr == "" {
			abbr = "UNK"
		}
		for _, entry := range team.Injuries {
			name := entry.Athlete.DisplayName
			raw := strings.ToLower(strings.TrimSpace(entry.Status))
			if name == "" || raw == "" {
				continue
			}
			status := raw
			if mapped, ok := statusMap[raw]; ok {
				status = mapped
			}
			reports = append(reports, model.InjuryReport{
				PlayerName: name,
				Team:       abbr,
				Status:     status,
			})
		}
	}

	c.cache.Put(cacheKey, reports)
	return reports
}

func (c *Client) fetch() (*injuryResponse, error) {
	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("espn fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("espn read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("espn: status %d", resp.StatusCode)
	}

	var data injuryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("espn decode: %w", err)
	}
	return &data, nil
}
