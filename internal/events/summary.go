package events

import (
	"math"
	"time"

	"reviewgate/internal/models"
)

// DefaultRecent is the number of rated events a Summary keeps.
const DefaultRecent = 6

// Summary is the dashboard view over a window of events.
type Summary struct {
	Since         time.Time            `json:"since"`
	Scans         int                  `json:"scans"`
	Redirects     int                  `json:"redirects"`
	Intercepted   int                  `json:"intercepted"`
	Rated         int                  `json:"rated"`
	AverageRating float64              `json:"averageRating"`
	RedirectRate  *int                 `json:"redirectRate,omitempty"` // percent of scans
	Sources       []SourceStats        `json:"sources"`
	Recent        []models.ReviewEvent `json:"recent"`
}

// SourceStats counts the events of one attribution source.
type SourceStats struct {
	Source      string `json:"source"`
	Label       string `json:"label,omitempty"`
	Scans       int    `json:"scans"`
	Redirects   int    `json:"redirects"`
	Intercepted int    `json:"intercepted"`
}

// Summarize aggregates events (newest first, as List returns them) created
// at or after now-window. recent caps Summary.Recent; zero uses DefaultRecent.
func Summarize(events []models.ReviewEvent, now time.Time, window time.Duration, recent int) Summary {
	if recent <= 0 {
		recent = DefaultRecent
	}
	s := Summary{
		Since:   now.Add(-window),
		Sources: []SourceStats{},
		Recent:  []models.ReviewEvent{},
	}

	index := map[string]int{}
	ratingTotal := 0
	for _, e := range events {
		if e.CreatedAt.Before(s.Since) {
			continue
		}

		pos, ok := index[e.Source]
		if !ok {
			pos = len(s.Sources)
			index[e.Source] = pos
			s.Sources = append(s.Sources, SourceStats{Source: e.Source})
		}
		src := &s.Sources[pos]

		switch e.Type {
		case models.EventScan:
			s.Scans++
			src.Scans++
		case models.EventRedirect:
			s.Redirects++
			src.Redirects++
		case models.EventInternal:
			s.Intercepted++
			src.Intercepted++
		}

		if rating, ok := e.RatingValue(); ok {
			s.Rated++
			ratingTotal += rating
		}
		if (e.Type == models.EventRedirect || e.Type == models.EventInternal) && len(s.Recent) < recent {
			s.Recent = append(s.Recent, e)
		}
	}

	if s.Rated > 0 {
		s.AverageRating = math.Round(float64(ratingTotal)/float64(s.Rated)*10) / 10
	}
	if s.Scans > 0 {
		rate := int(math.Round(float64(s.Redirects) / float64(s.Scans) * 100))
		s.RedirectRate = &rate
	}
	return s
}

// Label fills SourceStats.Label from a source → label map.
func (s *Summary) Label(labels map[string]string) {
	for i := range s.Sources {
		if label, ok := labels[s.Sources[i].Source]; ok {
			s.Sources[i].Label = label
		}
	}
}
