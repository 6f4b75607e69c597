package analytics

import (
	"time"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// ForecastWeeklyNet projects the weekly net series horizon weeks into the
// future using an exponentially weighted moving average with smoothing
// factor alpha = 2/(min(N,12)+1), seeded with the oldest net. Every horizon
// point holds the final smoothed value flat; points are dated 7 days apart
// starting one week after the last historical week.
//
// An empty history yields a flat zero forecast anchored at the Monday of the
// current week; a single historical week yields that week's net for every
// horizon point.
func ForecastWeeklyNet(weekly []domain.WeeklyPoint, horizon int) []domain.ForecastPoint {
	if horizon <= 0 {
		return []domain.ForecastPoint{}
	}

	var base time.Time
	var level float64

	if len(weekly) == 0 {
		base = weekStart(time.Now().UTC())
	} else {
		n := len(weekly)
		if n > 12 {
			n = 12
		}
		alpha := 2.0 / float64(n+1)

		level = weekly[0].Net
		for _, p := range weekly[1:] {
			level = alpha*p.Net + (1-alpha)*level
		}
		base = weekly[len(weekly)-1].WeekStart
	}

	points := make([]domain.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		points = append(points, domain.ForecastPoint{
			WeekStart: base.AddDate(0, 0, 7*i),
			Net:       round2(level),
		})
	}
	return points
}
