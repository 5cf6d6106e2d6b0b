package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidDateFormat возвращается при некорректном формате даты
	ErrInvalidDateFormat = errors.New("invalid date string format, expected YYYY-MM-DD")
)

// DateString календарная дата без времени в формате "YYYY-MM-DD"
// Используется для ключей инвентаря и дат заезда/выезда,
// где время суток и часовой пояс не имеют значения
type DateString string

// NewDateString создает DateString из time.Time (время отбрасывается)
func NewDateString(t time.Time) DateString {
	return DateString(t.Format(dateLayout))
}

// NewDateStringFromString парсит строку "YYYY-MM-DD" с валидацией
func NewDateStringFromString(s string) (DateString, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return DateString(s), nil
}

// String возвращает дату в формате "YYYY-MM-DD"
func (d DateString) String() string {
	return string(d)
}

// IsZero возвращает true, если дата не задана
func (d DateString) IsZero() bool {
	return d == ""
}

// Validate проверяет формат даты
func (d DateString) Validate() error {
	_, err := d.Time()
	return err
}

// Time возвращает дату как time.Time в UTC (полночь)
func (d DateString) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, string(d))
	}
	return t, nil
}

// AddDays возвращает дату, сдвинутую на n дней
func (d DateString) AddDays(n int) (DateString, error) {
	t, err := d.Time()
	if err != nil {
		return "", err
	}
	return NewDateString(t.AddDate(0, 0, n)), nil
}

// Before возвращает true, если d раньше other
func (d DateString) Before(other DateString) bool {
	return string(d) < string(other)
}

// After возвращает true, если d позже other
func (d DateString) After(other DateString) bool {
	return string(d) > string(other)
}

// DaysUntil возвращает количество дней от d до other
func (d DateString) DaysUntil(other DateString) (int, error) {
	from, err := d.Time()
	if err != nil {
		return 0, err
	}
	to, err := other.Time()
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}

// DatesUntil возвращает все даты [d, other), дата выезда не включается
func (d DateString) DatesUntil(other DateString) ([]DateString, error) {
	nights, err := d.DaysUntil(other)
	if err != nil {
		return nil, err
	}
	if nights <= 0 {
		return []DateString{}, nil
	}

	dates := make([]DateString, 0, nights)
	cur := d
	for i := 0; i < nights; i++ {
		dates = append(dates, cur)
		cur, err = cur.AddDays(1)
		if err != nil {
			return nil, err
		}
	}
	return dates, nil
}

// Scan реализует sql.Scanner для чтения DATE колонок
func (d *DateString) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = NewDateString(v)
		return nil
	case []byte:
		parsed, err := NewDateStringFromString(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := NewDateStringFromString(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("types.DateString: cannot scan value of type %T", value)
	}
}

// Value реализует driver.Valuer для записи DATE колонок
func (d DateString) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return string(d), nil
}
