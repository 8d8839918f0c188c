package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshavmohta09/RosterPulse/pkg/validate"
)

// Clock 一天中的时刻（自零点起的秒数），对应 PostgreSQL TIME
// 零值表示 00:00:00，是合法时刻
type Clock int32

const secondsPerDay = 24 * 60 * 60

// NewClock 由时分秒构造
func NewClock(hour, minute, second int) Clock {
	return Clock(hour*3600 + minute*60 + second)
}

// ParseClock 解析 HH:MM 或 HH:MM:SS
func ParseClock(s string) (Clock, error) {
	t, err := validate.ParseClock(s)
	if err != nil {
		return 0, err
	}
	return clockOf(t), nil
}

// MustParseClock 解析失败时 panic，仅用于常量与测试
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func clockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

// Valid 是否位于 [00:00:00, 24:00:00)
func (c Clock) Valid() bool { return c >= 0 && c < secondsPerDay }

// String 格式化为 HH:MM:SS
func (c Clock) String() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Short 格式化为 HH:MM
func (c Clock) Short() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d", s/3600, (s%3600)/60)
}

// Scan 实现 sql.Scanner，兼容驱动返回的字符串与 time.Time
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = clockOf(v)
		return nil
	case string:
		return c.parseInto(v)
	case []byte:
		return c.parseInto(string(v))
	case nil:
		*c = 0
		return nil
	default:
		return fmt.Errorf("Clock.Scan: unsupported type %T", src)
	}
}

func (c *Clock) parseInto(s string) error {
	parsed, err := ParseClock(s)
	if err != nil {
		return fmt.Errorf("Clock.Scan: %w", err)
	}
	*c = parsed
	return nil
}

// Value 实现 driver.Valuer
func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// MarshalJSON 输出 "HH:MM:SS"
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON 接受 "HH:MM" 或 "HH:MM:SS"
func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
