package report

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// PassRecord is one algorithm reported as PASS.
type PassRecord struct {
	Num  int    `json:"num"`
	Code string `json:"code"`
}

// Summary holds the counts from a report's "Verification Finished" line
// and the weak_filter run option in effect when it was written.
type Summary struct {
	Pass       int  `json:"pass"`
	Fail       int  `json:"fail"`
	Incomplete int  `json:"incomplete"`
	Errors     int  `json:"errors"`
	Total      int  `json:"total"`
	WeakFilter bool `json:"weak_filter"`
}

// NeedsAttention reports whether the run had errors or incomplete searches.
func (s Summary) NeedsAttention() bool {
	return s.Errors > 0 || s.Incomplete > 0
}

// Example lines:
//
//	  12 : PASS S0_S0_S1_S1_S1_S0_O1_H0
//	Run options: Cli { category: External, n_colors: 3, class_L: true, weak_filter: false, ramdisk: None }
//	Verification Finished with 10 pass, 2 fail, 0 incomplete, 0 errors (12 algorithms)
var (
	passLineRe      = regexp.MustCompile(`^\s*(\d+)\s*: PASS ([0-9sdSOH_]+)`)
	runOptionsRe    = regexp.MustCompile(`^Run options: Cli \{(.*)\}`)
	verifFinishedRe = regexp.MustCompile(`^Verification Finished with (\d+) pass, (\d+) fail, (\d+) incomplete, (\d+) errors \((\d+) algorithms\)`)
)

func lines(content string) []string {
	ls := strings.Split(content, "\n")
	for i, l := range ls {
		ls[i] = strings.TrimSuffix(l, "\r")
	}
	return ls
}

// ParsePassList returns every PASS record in content, in file order.
func ParsePassList(content string) []PassRecord {
	var out []PassRecord
	for _, line := range lines(content) {
		m := passLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, PassRecord{Num: num, Code: m[2]})
	}
	return out
}

// ParseRunOptions parses a "Run options: Cli {...}" line into its key/value
// pairs. It returns false if the line is not a run-options line or if any
// pair lacks a colon.
func ParseRunOptions(line string) (map[string]string, bool) {
	m := runOptionsRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	opts := make(map[string]string)
	for _, kv := range strings.Split(m[1], ",") {
		k, v, ok := strings.Cut(kv, ":")
		if !ok {
			return nil, false
		}
		opts[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return opts, true
}

// ParseSummary scans content for the first "Verification Finished" line.
//
// Every well-formed run-options line resets the weak filter flag, which is
// then set only if the line carries weak_filter: true. A run-options line
// without that key therefore clears an earlier true value.
func ParseSummary(content string) (Summary, bool) {
	weak := false
	for _, line := range lines(content) {
		if opts, ok := ParseRunOptions(line); ok {
			weak = opts["weak_filter"] == "true"
			continue
		}
		m := verifFinishedRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var n [5]int
		for i := range n {
			v, err := strconv.Atoi(m[i+1])
			if err != nil {
				return Summary{}, false
			}
			n[i] = v
		}
		return Summary{
			Pass:       n[0],
			Fail:       n[1],
			Incomplete: n[2],
			Errors:     n[3],
			Total:      n[4],
			WeakFilter: weak,
		}, true
	}
	return Summary{}, false
}

// ReadPassList reads the report at path and returns its PASS records.
func ReadPassList(path string) ([]PassRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return ParsePassList(string(data)), nil
}

// ReadSummary reads the report at path and returns its summary, if any.
func ReadSummary(path string) (Summary, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, false, fmt.Errorf("reading report: %w", err)
	}
	s, ok := ParseSummary(string(data))
	return s, ok, nil
}
