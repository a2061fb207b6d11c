package report

import (
	"fmt"
	"io"
	"time"

	"jira-wip/internal/stats"

	"github.com/parquet-go/parquet-go"
)

// IntervalRecord is the Parquet row layout of a stage interval.
type IntervalRecord struct {
	IssueKey   string    `parquet:"issue_key,snappy,dict"`
	Status     string    `parquet:"status,snappy,dict"`
	StartDate  time.Time `parquet:"start_date,snappy"`
	EndDate    time.Time `parquet:"end_date,snappy"`
	HoursSpent float64   `parquet:"hours_spent,snappy"`
}

// ConvertIntervals maps stage intervals onto Parquet records.
func ConvertIntervals(intervals []stats.StageInterval) []IntervalRecord {
	records := make([]IntervalRecord, len(intervals))
	for i, iv := range intervals {
		records[i] = IntervalRecord{
			IssueKey:   iv.ItemKey,
			Status:     iv.Status,
			StartDate:  iv.Start.UTC(),
			EndDate:    iv.End.UTC(),
			HoursSpent: iv.Hours(),
		}
	}
	return records
}

// WriteIntervalsParquet writes the intervals as a Parquet file to w.
func WriteIntervalsParquet(w io.Writer, intervals []stats.StageInterval) error {
	// The schema is derived from the IntervalRecord struct tags
	writer := parquet.NewGenericWriter[IntervalRecord](w)

	if _, err := writer.Write(ConvertIntervals(intervals)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
