// Package report renders analysis results as CSV, console tables and Parquet.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// TimeFormat is the timestamp layout used in CSV files.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// WriteWithFile opens outputFile (or uses stdout for "" and "-"), runs writer on it and
// reports where the output went.
func WriteWithFile(outputFile string, writer func(io.Writer) error, successMsg string) (err error) {
	file, err := selectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return writer(file)
	}

	// A failed close can mean buffered data never reached the disk.
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %q: %w", outputFile, cerr)
		}
	}()

	if err := writer(file); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, outputFile)
	return nil
}

func selectOutputFile(outputFile string) (*os.File, error) {
	if outputFile == "" || outputFile == "-" {
		return os.Stdout, nil
	}
	file, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", outputFile, err)
	}
	return file, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
