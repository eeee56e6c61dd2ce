package tio

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/wyg1997/tino/internal/domain"
)

// tokenLen is the length of the section separator that prefixes every
// run API response.
const tokenLen = 16

// ExecOptions is everything the run API accepts for one execution
type ExecOptions struct {
	Language      string
	Code          string
	Input         string
	CompilerFlags []string
	Options       []string
	Args          []string
}

// encodeRequest builds the raw-deflate request body. Each non-empty field
// becomes a record: "F<name>\0<len>\0<data>\0" for files and
// "V<name>\0<count>\0<v1>\0...\0" for variables; "R" asks for a run.
func encodeRequest(opts ExecOptions) ([]byte, error) {
	var raw bytes.Buffer
	writeVar(&raw, "lang", []string{opts.Language})
	writeFile(&raw, ".code.tio", opts.Code)
	writeFile(&raw, ".input.tio", opts.Input)
	writeVar(&raw, "TIO_CFLAGS", opts.CompilerFlags)
	writeVar(&raw, "TIO_OPTIONS", opts.Options)
	writeVar(&raw, "args", opts.Args)
	raw.WriteByte('R')

	var out bytes.Buffer
	w, err := flate.NewWriter(&out, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("deflate request: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate request: %w", err)
	}
	return out.Bytes(), nil
}

func writeFile(buf *bytes.Buffer, name, data string) {
	if data == "" {
		return
	}
	fmt.Fprintf(buf, "F%s\x00%d\x00%s\x00", name, len(data), data)
}

func writeVar(buf *bytes.Buffer, name string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(buf, "V%s\x00%d\x00%s\x00", name, len(values), strings.Join(values, "\x00"))
}

var (
	realTimeRe = regexp.MustCompile(`(?m)^Real time: ([0-9]+(?:\.[0-9]+)?) s$`)
	exitCodeRe = regexp.MustCompile(`(?m)^Exit code: (-?[0-9]+)$`)
	notFoundRe = regexp.MustCompile(`The language '([^']+)' could not be found on the server`)
)

// parseResponse splits a decoded run API response into the result. The
// first section is stdout; the second is the debug stream ending in the
// timing block. Debug text before the timing block (stderr) is appended to
// the output.
func parseResponse(body string) (*domain.ExecutionResult, error) {
	if len(body) < tokenLen {
		return nil, fmt.Errorf("%w: response shorter than separator", domain.ErrMalformedResult)
	}

	token := body[:tokenLen]
	sections := strings.Split(body[tokenLen:], token)
	stdout := sections[0]
	debug := ""
	if len(sections) > 1 {
		debug = sections[1]
	}

	timings := realTimeRe.FindAllStringSubmatchIndex(debug, -1)
	if len(timings) == 0 {
		if m := notFoundRe.FindStringSubmatch(strings.ReplaceAll(body, token, "")); m != nil {
			return nil, &domain.LanguageNotFoundError{Language: m[1]}
		}
		return nil, fmt.Errorf("%w: no timing block", domain.ErrMalformedResult)
	}
	last := timings[len(timings)-1]
	stats := debug[last[0]:]

	realTime, err := strconv.ParseFloat(debug[last[2]:last[3]], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: real time: %v", domain.ErrMalformedResult, err)
	}

	m := exitCodeRe.FindStringSubmatch(stats)
	if m == nil {
		return nil, fmt.Errorf("%w: no exit code", domain.ErrMalformedResult)
	}
	exitCode, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: exit code: %v", domain.ErrMalformedResult, err)
	}

	stderr := strings.TrimSuffix(debug[:last[0]], "\n")

	return &domain.ExecutionResult{
		Output:          stdout + stderr,
		ExitCode:        exitCode,
		WallTimeSeconds: realTime,
	}, nil
}
