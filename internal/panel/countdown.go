package panel

import (
	"strconv"
	"strings"
	"time"

	"bellalarm/internal/models"
)

// Remaining renders the seconds left until alarmTime today, or Placeholder
// when no usable alarm time is displayed.
func Remaining(alarmTime string, now time.Time) string {
	secs, ok := RemainingSeconds(alarmTime, now)
	if !ok {
		return Placeholder
	}
	return strconv.FormatInt(secs, 10)
}

// RemainingSeconds is the whole seconds from now until alarmTime on now's
// date, truncated toward zero. The alarm is always taken on the same day, so
// once it has passed the result is negative.
func RemainingSeconds(alarmTime string, now time.Time) (int64, bool) {
	if strings.TrimSpace(alarmTime) == "" {
		return 0, false
	}
	hour, minute, err := models.ParseAlarmTime(alarmTime)
	if err != nil {
		return 0, false
	}
	alarm := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	return int64(alarm.Sub(now) / time.Second), true
}
