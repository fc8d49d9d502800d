// Package record holds the memory time series of a monitoring run and its
// line-oriented text representation.
//
// A record file looks like:
//
//	Command line: /usr/bin/python3 server.py --port 8080
//	1760797335.42s: 41.27MB
//	1760797336.43s: 41.30MB
//
// Values are written with exactly two decimals, so reading a record back
// yields the written values rounded to that precision.
package record

import "strconv"

const (
	headerLabel = "Command line"
	separator   = ": "
	tsSuffix    = "s"
	memSuffix   = "MB"
	precision   = 2
)

// Sample is a single resident memory observation.
type Sample struct {
	// Timestamp is expressed in seconds since the Unix epoch.
	Timestamp  float64 `json:"timestamp"`
	ResidentMB float64 `json:"resident_mb"`
}

// SeriesRecord is the command line of the monitored process together with
// its samples in chronological order.
type SeriesRecord struct {
	CommandLine string   `json:"command_line"`
	Samples     []Sample `json:"samples"`
}

// FormatSample renders s the way it appears in a record file.
func FormatSample(s Sample) string {
	return formatFloat(s.Timestamp) + tsSuffix + separator + formatFloat(s.ResidentMB) + memSuffix
}

// Round returns a copy of rec with every value rounded to the precision
// used by the text format.
func Round(rec SeriesRecord) SeriesRecord {
	out := SeriesRecord{CommandLine: rec.CommandLine}
	if len(rec.Samples) == 0 {
		return out
	}

	out.Samples = make([]Sample, len(rec.Samples))
	for i, s := range rec.Samples {
		out.Samples[i] = Sample{
			Timestamp:  round(s.Timestamp),
			ResidentMB: round(s.ResidentMB),
		}
	}

	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// round goes through the formatter so that it agrees with what Encode writes.
func round(v float64) float64 {
	r, err := strconv.ParseFloat(formatFloat(v), 64)
	if err != nil {
		return v
	}

	return r
}
