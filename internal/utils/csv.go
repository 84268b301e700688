package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"breakoutScanner/internal/domain"
)

// WriteSeriesToCSV dumps a candle series to filename. When trendline is non-nil
// a resistance column is added, and touch rows are flagged.
func WriteSeriesToCSV(series domain.CandleSeries, trendline *domain.Trendline, touches []domain.Touch, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	isTouch := make(map[int]bool, len(touches))
	for _, t := range touches {
		isTouch[t.Index] = true
	}

	header := []string{"open_time", "symbol", "interval", "open", "high", "low", "close", "volume"}
	if trendline != nil {
		header = append(header, "resistance", "touch")
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, k := range series.Candles {
		row := []string{
			k.Timestamp.UTC().Format(time.RFC3339),
			series.Symbol,
			series.Interval,
			formatFloat(k.Open),
			formatFloat(k.High),
			formatFloat(k.Low),
			formatFloat(k.Close),
			formatFloat(k.Volume),
		}
		if trendline != nil {
			row = append(row, formatFloat(trendline.At(i)), strconv.FormatBool(isTouch[i]))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
