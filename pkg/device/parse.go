package device

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// labelled matches the "v1=<num>,v2=<num>" form printed by some sketches.
var labelled = regexp.MustCompile(`^v1\s*=\s*([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)\s*,\s*v2\s*=\s*([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)$`)

// ParseRecord parses a single record into the two channel values.
// Accepted forms: "a,b", "a b", "a, b" and "v1=a,v2=b".
func ParseRecord(line string) (float64, float64, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, 0, &RecordError{Line: line, Reason: "empty"}
	}

	if m := labelled.FindStringSubmatch(line); m != nil {
		return parsePair(line, m[1], m[2])
	}

	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ','
	})
	if len(tokens) == 1 {
		tokens = strings.Fields(line)
	}
	// A trailing or doubled delimiter ("12," or "1,,2") leaves a missing field
	if strings.Count(line, ",") >= len(tokens) && strings.Contains(line, ",") {
		return 0, 0, &RecordError{Line: line, Reason: "empty field"}
	}
	if len(tokens) != 2 {
		return 0, 0, &RecordError{Line: line, Reason: "expected 2 values, got " + strconv.Itoa(len(tokens))}
	}

	return parsePair(line, strings.TrimSpace(tokens[0]), strings.TrimSpace(tokens[1]))
}

func parsePair(line, a, b string) (float64, float64, error) {
	va, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, &RecordError{Line: line, Reason: "invalid channel 1 value " + strconv.Quote(a)}
	}
	vb, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, &RecordError{Line: line, Reason: "invalid channel 2 value " + strconv.Quote(b)}
	}
	if !finite(va) || !finite(vb) {
		return 0, 0, &RecordError{Line: line, Reason: "non-finite value"}
	}
	return va, vb, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
