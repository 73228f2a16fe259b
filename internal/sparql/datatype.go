package sparql

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// XSD datatype IRIs recognised by Convert
const (
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDate     = "http://www.w3.org/2001/XMLSchema#date"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

var datePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// Row is a result binding with values converted to native types
type Row map[string]any

// Convert turns a typed literal into int64, float64, time.Time or string
func Convert(t Term) (any, error) {
	switch t.Datatype {
	case XSDInteger:
		n, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("convert integer %q: %w", t.Value, err)
		}
		return n, nil
	case XSDDecimal:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("convert decimal %q: %w", t.Value, err)
		}
		return f, nil
	case XSDDate:
		d, err := time.Parse(dateLayout, t.Value)
		if err != nil {
			return nil, fmt.Errorf("convert date %q: %w", t.Value, err)
		}
		return d, nil
	case XSDDateTime:
		return CheckDate(t.Value)
	default:
		return t.Value, nil
	}
}

// CheckDate parses a dateTime literal and keeps the date part.
// Values that do not parse, e.g. 29 February of a common year, fall back to
// day 28 of the same month.
func CheckDate(v string) (time.Time, error) {
	if ts, err := time.Parse(dateTimeLayout, v); err == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	m := datePrefix.FindStringSubmatch(v)
	if m == nil {
		return time.Time{}, fmt.Errorf("convert dateTime %q: no date prefix", v)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("convert dateTime %q: month out of range", v)
	}
	return time.Date(year, time.Month(month), 28, 0, 0, 0, 0, time.UTC), nil
}

// ConvertBindings converts every binding of a result set
func ConvertBindings(res *Results) ([]Row, error) {
	rows := make([]Row, 0, len(res.Results.Bindings))
	for i, b := range res.Results.Bindings {
		row := make(Row, len(b))
		for k, term := range b {
			v, err := Convert(term)
			if err != nil {
				return nil, fmt.Errorf("binding %d, variable %s: %w", i, k, err)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// String returns a string-valued variable
func (r Row) String(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", fmt.Errorf("missing variable %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("variable %q is %T, not a string", key, v)
	}
	return s, nil
}

// Date returns a date-valued variable
func (r Row) Date(key string) (time.Time, error) {
	v, ok := r[key]
	if !ok {
		return time.Time{}, fmt.Errorf("missing variable %q", key)
	}
	d, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("variable %q is %T, not a date", key, v)
	}
	return d, nil
}
