package utils

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// RoundMoney rounds to 2 decimal places, half-up. All ledger amounts pass
// through here before they are written.
func RoundMoney(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// ParseDate parses a calendar date in YYYY-MM-DD form. Time of day is
// ignored everywhere bookings are concerned.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// GenerateBookingRef creates a unique human-readable booking reference
func GenerateBookingRef() string {
	rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	// Format: STAY-YYYYMMDD-HHMMSS-RANDOM
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("STAY-%s-%s-%s", datePart, timePart, randomPart)
}
