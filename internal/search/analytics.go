package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/usestring/propsearch-mcp/internal/store"
)

const topSearchCount = 10

// Analytics summarizes a user's recent search activity.
type Analytics struct {
	TotalSearches       int         `json:"total_searches"`
	SearchesWithResults int         `json:"searches_with_results"`
	TotalProperties     int         `json:"total_properties"`
	AveragePerSearch    float64     `json:"average_properties_per_search"`
	Activity            []DayCount  `json:"activity"`
	TopSearches         []TopSearch `json:"top_searches"`
}

// DayCount is the number of searches made on one day.
type DayCount struct {
	Date     string `json:"date"`
	Searches int    `json:"searches"`
}

// TopSearch is one of the searches that found the most properties.
type TopSearch struct {
	SearchID        string `json:"search_id"`
	Address         string `json:"address"`
	PropertiesFound int    `json:"properties_found"`
	Date            string `json:"date"`
}

// Analytics computes activity statistics over the user's most recent
// Config.AnalyticsLimit searches.
func (s *Service) Analytics(ctx context.Context, userID string) (*Analytics, error) {
	searches, err := s.repo.ListSearches(ctx, userID, store.ListOptions{Limit: s.cfg.AnalyticsLimit})
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}

	a := &Analytics{
		TotalSearches: len(searches),
		Activity:      []DayCount{},
		TopSearches:   []TopSearch{},
	}
	perDay := make(map[string]int)
	for _, search := range searches {
		perDay[search.SearchDate.UTC().Format(dateLayout)]++

		pd, _ := search.Map()["property_data"].(map[string]any)
		results := PropertyResults(pd)
		if len(results) == 0 {
			continue
		}
		a.SearchesWithResults++
		a.TotalProperties += len(results)
		a.TopSearches = append(a.TopSearches, TopSearch{
			SearchID:        search.ID,
			Address:         SearchAddress(pd),
			PropertiesFound: len(results),
			Date:            search.SearchDate.Format("2006-01-02 15:04"),
		})
	}

	if a.SearchesWithResults > 0 {
		avg := float64(a.TotalProperties) / float64(a.SearchesWithResults)
		a.AveragePerSearch = math.Round(avg*10) / 10
	}

	for date, n := range perDay {
		a.Activity = append(a.Activity, DayCount{Date: date, Searches: n})
	}
	sort.Slice(a.Activity, func(i, j int) bool {
		return a.Activity[i].Date < a.Activity[j].Date
	})

	// Searches arrive newest first; a stable sort keeps that order for ties.
	sort.SliceStable(a.TopSearches, func(i, j int) bool {
		return a.TopSearches[i].PropertiesFound > a.TopSearches[j].PropertiesFound
	})
	if len(a.TopSearches) > topSearchCount {
		a.TopSearches = a.TopSearches[:topSearchCount]
	}
	return a, nil
}
