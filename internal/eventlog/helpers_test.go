package eventlog

import (
	"time"

	"jira-wip/internal/stats"
)

func statsTimeline(h stats.ItemHistory) []stats.StageInterval {
	return stats.BuildTimeline(h, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
}
