package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseYears accepts an inclusive range ("2015-2024") or a comma-separated
// list ("2019,2020"). Every year must be plausible. An empty string yields nil.
func ParseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if from, to, ok := strings.Cut(s, "-"); ok {
		lo, err := parseYear(from)
		if err != nil {
			return nil, err
		}
		hi, err := parseYear(to)
		if err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		years := make([]int, 0, hi-lo+1)
		for y := lo; y <= hi; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		y, err := parseYear(part)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	y, err := strconv.Atoi(s)
	if err != nil || !PlausibleYear(y) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}
