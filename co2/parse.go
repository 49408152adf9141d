package co2

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// Sentinel used by the NOAA data files for a missing monthly average.
const missingValue = -99.99

// ParseMonthly reads the NOAA monthly mean CO2 text format: comment lines
// start with '#', data lines carry whitespace-separated columns
//
//	year  month  decimal-date  average  deseasonalized  ndays  sdev  unc
//
// A missing monthly average (-99.99) falls back to the de-seasonalized
// column; if that is missing too the month is a gap and parsing fails, since
// the returned series must cover every month without holes.
func ParseMonthly(r io.Reader) (*timeseries.Series, error) {
	var obs []timeseries.Observation

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("line %d: expected at least 5 columns, got %d", lineNo, len(fields))
		}

		year, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad year %q: %w", lineNo, fields[0], err)
		}
		month, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad month %q: %w", lineNo, fields[1], err)
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("line %d: month %d out of range", lineNo, month)
		}

		value, err := parseColumn(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad average %q: %w", lineNo, fields[3], err)
		}
		if value == missingValue {
			value, err = parseColumn(fields[4])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad de-seasonalized value %q: %w", lineNo, fields[4], err)
			}
			if value == missingValue {
				return nil, fmt.Errorf("line %d: %d-%02d has no usable value", lineNo, year, month)
			}
		}

		obs = append(obs, timeseries.Observation{
			Time:  time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			Value: value,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading co2 data: %w", err)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("no data rows found: %w", timeseries.ErrInsufficientData)
	}

	series, err := timeseries.FromObservations(obs)
	if err != nil {
		return nil, fmt.Errorf("co2 record is not gap-free: %w", err)
	}
	return series, nil
}

func parseColumn(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// LoadFile parses a local copy of the NOAA monthly mean file.
func LoadFile(path string) (*timeseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening co2 data file: %w", err)
	}
	defer f.Close()

	series, err := ParseMonthly(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return series, nil
}
