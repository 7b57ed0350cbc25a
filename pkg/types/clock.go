package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ClockLayout is the wall-clock wire format.
const ClockLayout = "15:04"

// ClockTime is an hour and minute of the day with no date or timezone.
type ClockTime struct {
	minutes int
}

// NewClockTime validates and builds a ClockTime.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %02d:%02d", hour, minute)
	}
	return ClockTime{minutes: hour*60 + minute}, nil
}

// ParseClockTime accepts HH:MM and HH:MM:SS; seconds are dropped.
func ParseClockTime(value string) (ClockTime, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return ClockTime{minutes: parsed.Hour()*60 + parsed.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time %q: expected HH:MM", value)
}

func (c ClockTime) Hour() int { return c.minutes / 60 }
func (c ClockTime) Minute() int { return c.minutes % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON implements json.Marshaler.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return fmt.Errorf("invalid time: %w", err)
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner.
func (c *ClockTime) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*c = ClockTime{minutes: v.Hour()*60 + v.Minute()}
		return nil
	case string:
		return c.scanString(v)
	case []byte:
		return c.scanString(string(v))
	default:
		return fmt.Errorf("unsupported time type %T", value)
	}
}

func (c *ClockTime) scanString(v string) error {
	parsed, err := ParseClockTime(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// GormDataType declares the column type used by auto-migration.
func (ClockTime) GormDataType() string {
	return "time"
}

// GormDBDataType keeps sqlite columns as text. The sqlite dialector maps
// "time" to datetime, which reads HH:MM back as the zero time.
func (ClockTime) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "time"
}

// NullableClockTime tracks whether a time field was explicitly present in JSON,
// so partial updates can tell "absent" from "cleared". An empty string is
// read as null: blank form inputs arrive as "".
type NullableClockTime struct {
	Valid bool
	Value *ClockTime
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableClockTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) || isBlankString(trimmed) {
		n.Valid = true
		n.Value = nil
		return nil
	}
	var parsed ClockTime
	if err := parsed.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// Ptr returns the parsed time, or nil when absent or cleared.
func (n NullableClockTime) Ptr() *ClockTime {
	if !n.Valid {
		return nil
	}
	return n.Value
}

func isBlankString(data []byte) bool {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	return strings.TrimSpace(raw) == ""
}
