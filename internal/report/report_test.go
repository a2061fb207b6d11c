package report

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jira-wip/internal/stats"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleIntervals() []stats.StageInterval {
	return []stats.StageInterval{
		{ItemKey: "PROJ-1", Status: "To Do", Start: t0, End: t0.Add(time.Hour)},
		{ItemKey: "PROJ-1", Status: "In Progress", Start: t0.Add(time.Hour), End: t0.Add(5 * time.Hour)},
	}
}

func TestWriteIntervalsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIntervalsCSV(&buf, sampleIntervals()))

	want := "issueKey,status,startDate,endDate,hoursSpent\n" +
		"PROJ-1,To Do,2024-03-01T09:00:00.000Z,2024-03-01T10:00:00.000Z,1.00\n" +
		"PROJ-1,In Progress,2024-03-01T10:00:00.000Z,2024-03-01T14:00:00.000Z,4.00\n"
	assert.Equal(t, want, buf.String())
}

func TestReadIntervalsCSV_RoundTripAndOpenEnd(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIntervalsCSV(&buf, sampleIntervals()))
	buf.WriteString("PROJ-2,In Progress,2024-03-02T00:00:00.000Z,,\n")
	buf.WriteString("PROJ-3,In Progress,not-a-date,,\n")

	now := t0.Add(48 * time.Hour)
	got, err := ReadIntervalsCSV(&buf, now)
	require.NoError(t, err)

	require.Len(t, got, 3, "rows with unparsable dates are skipped")
	assert.True(t, got[0].Start.Equal(t0))
	assert.Equal(t, 4.0, got[1].Hours())
	assert.Equal(t, "PROJ-2", got[2].ItemKey)
	assert.True(t, got[2].End.Equal(now), "an empty endDate means still active")
}

func TestReadIntervalsCSV_ColumnsByName(t *testing.T) {
	in := "status,endDate,issueKey,startDate\nDone,2024-03-01T12:00:00Z,A-1,2024-03-01T10:00:00Z\n"
	got, err := ReadIntervalsCSV(strings.NewReader(in), t0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stats.StageInterval{ItemKey: "A-1", Status: "Done", Start: t0.Add(time.Hour), End: t0.Add(3 * time.Hour)}, got[0])

	_, err = ReadIntervalsCSV(strings.NewReader("issueKey,status\n"), t0)
	assert.Error(t, err)

	empty, err := ReadIntervalsCSV(strings.NewReader(""), t0)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadIntervalsCSV_DropsNonPositiveRows(t *testing.T) {
	in := "issueKey,status,startDate,endDate\n" +
		"A,In Progress,2024-03-01T00:00:00Z,2024-03-01T10:00:00Z\n" +
		"C,In Progress,2024-03-01T05:00:00Z,2024-03-01T02:00:00Z\n" +
		"D,In Progress,2024-03-01T05:00:00Z,2024-03-01T05:00:00Z\n" +
		"E,In Progress,2024-03-09T00:00:00Z,\n" +
		"F,,2024-03-01T00:00:00Z,2024-03-01T10:00:00Z\n"

	got, err := ReadIntervalsCSV(strings.NewReader(in), t0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ItemKey)
}

func TestSummaryCSVs(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteStagesCSV(&buf, []stats.StageStats{{Status: "Review", TotalHours: 10, Count: 4, MaxHours: 6}}))
	assert.Equal(t, "status,totalHours,count,maxHours,avgHours\nReview,10.00,4,6.00,2.50\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteItemStagesCSV(&buf, []stats.ItemStageStats{{ItemKey: "A-1", Stages: []stats.StageStats{{Status: "Review", TotalHours: 2, Count: 1, MaxHours: 2}}}}))
	assert.Equal(t, "issueKey,status,totalHours,count,maxHours,avgHours\nA-1,Review,2.00,1,2.00,2.00\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteContinuousCSV(&buf, []stats.ViolationSummary{{Status: "In Progress", Limit: 6, Violations: 1, LongestDays: 2}}))
	assert.Equal(t, "status,violationCount,longestViolationDurationDays\nIn Progress,1,2.00\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSpansCSV(&buf, []stats.ViolationSpan{{Status: "In Progress", Start: t0, End: t0.Add(12 * time.Hour), OpenEnded: true}}))
	assert.Equal(t, "status,start,end,durationDays,openEnded\nIn Progress,2024-03-01T09:00:00.000Z,2024-03-01T21:00:00.000Z,0.50,true\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteMonthlyCSV(&buf, []stats.MonthlyViolation{{Month: "2024-03", Status: "In Progress", ViolatingDays: 2}}))
	assert.Equal(t, "month,status,violatingDayCount\n2024-03,In Progress,2\n", buf.String())
}

func TestPrinter_Tables(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	review := stats.StageStats{Status: "Review", TotalHours: 48, Count: 1, MaxHours: 48}
	require.NoError(t, p.Stages([]stats.StageStats{review}, &review, &review))
	out := buf.String()
	assert.Contains(t, out, "Review")
	assert.Contains(t, out, "Longest stage: Review (2.00 days on average)")
	assert.Contains(t, out, "Max task age: Review (2.00 days in a single stay)")

	buf.Reset()
	require.NoError(t, p.Violations([]stats.ViolationSummary{{Status: "In Progress", Limit: 6, Violations: 3, LongestDays: 1.5, Peak: 8}}))
	assert.Contains(t, buf.String(), "1.50")

	buf.Reset()
	require.NoError(t, p.Monthly(nil))
	assert.Contains(t, buf.String(), "No WIP limit violations found.")

	buf.Reset()
	require.NoError(t, p.Monthly([]stats.MonthlyViolation{{Month: "2024-03", Status: "In Progress", ViolatingDays: 2}}))
	assert.Contains(t, buf.String(), "Mar 2024")
}

func TestWriteIntervalsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervals.parquet")
	err := WriteWithFile(path, func(w io.Writer) error {
		return WriteIntervalsParquet(w, sampleIntervals())
	}, "Intervals written")
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[IntervalRecord](file)
	defer reader.Close()

	rows := make([]IntervalRecord, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "In Progress", rows[1].Status)
	assert.Equal(t, 4.0, rows[1].HoursSpent)
	assert.WithinDuration(t, t0, rows[0].StartDate, time.Millisecond)
}

func TestWriteWithFile_ReportsCloseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.csv")

	err := WriteWithFile(path, func(w io.Writer) error {
		if err := WriteStagesCSV(w, nil); err != nil {
			return err
		}
		// Closing underneath the writer makes the final close fail.
		return w.(*os.File).Close()
	}, "Stage statistics written")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to close output file")

	require.NoError(t, WriteWithFile(path, func(w io.Writer) error {
		return WriteStagesCSV(w, nil)
	}, "Stage statistics written"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "status,totalHours,count,maxHours,avgHours\n", string(data))
}

func TestPrinter_ItemStages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	require.NoError(t, p.ItemStages(stats.AggregateByItem(sampleIntervals())))
	out := buf.String()
	assert.Contains(t, out, "PROJ-1")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "4.00")
}
