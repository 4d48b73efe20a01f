package repository

import (
	"strconv"
	"time"
)

// Machine-compared dates are stored canonically; the human-readable layout is
// accepted on read for rows edited by hand in the backing store.
const (
	wireTimeLayout  = time.RFC3339
	humanTimeLayout = "2006-01-02 15:04:05"
)

func encodeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(wireTimeLayout)
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(wireTimeLayout, value); err == nil {
		return &t
	}
	if t, err := time.Parse(humanTimeLayout, value); err == nil {
		return &t
	}
	return nil
}

func encodeRating(rating *int) string {
	if rating == nil {
		return ""
	}
	return strconv.Itoa(*rating)
}

func parseRating(value string) *int {
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}
