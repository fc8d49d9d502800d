package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const filePermission = 0o644

var (
	ErrWrite           = errors.New("failed to write record")
	ErrRead            = errors.New("failed to read record")
	ErrMissingHeader   = errors.New("record is missing the command line header")
	ErrMalformedRecord = errors.New("malformed record")
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Write persists rec to path. The file is synced and closed before Write
// returns, whatever the outcome.
func Write(path string, rec SeriesRecord) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWrite, cerr)
		}
	}()

	if err := Encode(f, rec); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

// Encode writes the text form of rec to w.
func Encode(w io.Writer, rec SeriesRecord) error {
	bw := bufio.NewWriter(w)

	cmdline := newlineReplacer.Replace(rec.CommandLine)
	if _, err := bw.WriteString(headerLabel + separator + cmdline + "\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	for _, s := range rec.Samples {
		if _, err := bw.WriteString(FormatSample(s) + "\n"); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

// Read loads the record stored at path.
func Read(path string) (SeriesRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeriesRecord{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses the text form of a record from r.
func Decode(r io.Reader) (SeriesRecord, error) {
	br := bufio.NewReader(r)

	header, ok, err := readLine(br)
	if err != nil {
		return SeriesRecord{}, err
	}
	if !ok {
		return SeriesRecord{}, ErrMissingHeader
	}

	label, cmdline, found := strings.Cut(header, separator)
	if !found || label != headerLabel {
		return SeriesRecord{}, fmt.Errorf("%w: line 1: expected %q header", ErrMalformedRecord, headerLabel+separator)
	}

	rec := SeriesRecord{CommandLine: cmdline}

	for line := 2; ; line++ {
		text, ok, err := readLine(br)
		if err != nil {
			return SeriesRecord{}, err
		}
		if !ok {
			break
		}

		s, err := parseSample(text)
		if err != nil {
			return SeriesRecord{}, fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, line, err)
		}
		rec.Samples = append(rec.Samples, s)
	}

	return rec, nil
}

// readLine returns the next line without its terminator. Lines have no
// length limit since command lines can exceed any fixed buffer. ok is false
// once the input is exhausted.
func readLine(br *bufio.Reader) (string, bool, error) {
	text, err := br.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF):
		if text == "" {
			return "", false, nil
		}
	case err != nil:
		return "", false, fmt.Errorf("%w: %w", ErrRead, err)
	}

	return trimCR(strings.TrimSuffix(text, "\n")), true, nil
}

func parseSample(line string) (Sample, error) {
	parts := strings.Split(line, separator)
	if len(parts) != 2 {
		return Sample{}, fmt.Errorf("expected 2 fields separated by %q, got %d", separator, len(parts))
	}

	tsToken, ok := strings.CutSuffix(parts[0], tsSuffix)
	if !ok {
		return Sample{}, fmt.Errorf("timestamp %q lacks the %q suffix", parts[0], tsSuffix)
	}
	memToken, ok := strings.CutSuffix(parts[1], memSuffix)
	if !ok {
		return Sample{}, fmt.Errorf("memory %q lacks the %q suffix", parts[1], memSuffix)
	}

	ts, err := strconv.ParseFloat(tsToken, 64)
	if err != nil {
		return Sample{}, err
	}
	mb, err := strconv.ParseFloat(memToken, 64)
	if err != nil {
		return Sample{}, err
	}

	return Sample{Timestamp: ts, ResidentMB: mb}, nil
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
