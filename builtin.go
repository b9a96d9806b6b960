package odd

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Italy is the Julian day number of the Gregorian calendar reform in Italy,
// the default calendar start of Date and DateTime.
const Italy = 2299161

// SecondsPerDay scales day fractions to seconds.
const SecondsPerDay = 86400

// Built-in class and target names.
const (
	ClassRational = "Rational"
	ClassDate     = "Date"
	ClassDateTime = "DateTime"
	ClassRange    = "Range"
	ModuleKernel  = "Kernel"
)

// Date is a calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
	Start float64 // Julian day of the calendar reform
}

// DateOf returns the date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Start: Italy}
}

// DateTime is a calendar date with a time of day and a UTC offset.
type DateTime struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Min         int
	Sec         int
	SecFraction *big.Rat // fraction of a second in [0, 1), nil for zero
	Offset      *big.Rat // UTC offset as a fraction of a day, nil for UTC
	Start       float64  // Julian day of the calendar reform
}

// DateTimeOf converts t, keeping its offset and sub-second precision.
func DateTimeOf(t time.Time) DateTime {
	_, off := t.Zone()
	dt := DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Min:    t.Minute(),
		Sec:    t.Second(),
		Offset: big.NewRat(int64(off), SecondsPerDay),
		Start:  Italy,
	}
	if ns := t.Nanosecond(); ns != 0 {
		dt.SecFraction = big.NewRat(int64(ns), int64(time.Second))
	}
	return dt
}

// Equal reports whether dt and o hold the same fields. Nil rationals equal zero.
func (dt DateTime) Equal(o DateTime) bool {
	return dt.Year == o.Year && dt.Month == o.Month && dt.Day == o.Day &&
		dt.Hour == o.Hour && dt.Min == o.Min && dt.Sec == o.Sec &&
		ratCmp(dt.SecFraction, o.SecFraction) == 0 &&
		ratCmp(dt.Offset, o.Offset) == 0 &&
		dt.Start == o.Start
}

func ratCmp(a, b *big.Rat) int {
	zero := new(big.Rat)
	if a == nil {
		a = zero
	}
	if b == nil {
		b = zero
	}
	return a.Cmp(b)
}

// Time converts dt to a time.Time in a fixed zone at dt's offset.
// Precision below a nanosecond is truncated.
func (dt DateTime) Time() time.Time {
	var offset int
	if dt.Offset != nil {
		secs := new(big.Rat).Mul(dt.Offset, big.NewRat(SecondsPerDay, 1))
		offset = int(new(big.Int).Quo(secs.Num(), secs.Denom()).Int64())
	}
	var nanos int
	if dt.SecFraction != nil {
		ns := new(big.Rat).Mul(dt.SecFraction, big.NewRat(int64(time.Second), 1))
		nanos = int(new(big.Int).Quo(ns.Num(), ns.Denom()).Int64())
	}
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Min, dt.Sec, nanos,
		time.FixedZone("", offset))
}

// Range is an interval between two values.
type Range struct {
	Begin      any
	End        any
	ExcludeEnd bool `odd:"exclude_end?"`
}

// StdHost returns a host defining the built-in classes and the Kernel module.
func StdHost() *Host {
	return NewHost(
		NewModule(ModuleKernel).Define("Rational", newRational),
		ClassOf[*big.Rat](ClassRational),
		ClassOf[Date](ClassDate).Define("new", newDate),
		ClassOf[DateTime](ClassDateTime).Define("new", newDateTime),
		ClassOf[Range](ClassRange).Define("new", newRange),
	)
}

// builtin describes one descriptor inserted by NewTable.
type builtin struct {
	class   string
	target  string // defaults to the class
	op      string
	attrs   []string
	getters map[string]Getter
}

var builtins = []builtin{
	{
		class:  ClassRational,
		target: ModuleKernel,
		op:     "Rational",
		attrs:  []string{"numerator", "denominator"},
		getters: map[string]Getter{
			"numerator":   rationalNumerator,
			"denominator": rationalDenominator,
		},
	},
	{
		class: ClassDate,
		op:    "new",
		attrs: []string{"year", "month", "day", "start"},
	},
	{
		class: ClassDateTime,
		op:    "new",
		attrs: []string{"year", "month", "day", "hour", "min", "sec", "offset", "start"},
		getters: map[string]Getter{
			"sec": SecondsGetter(false),
		},
	},
	{
		class: ClassRange,
		op:    "new",
		attrs: []string{"begin", "end", "exclude_end?"},
	},
}

// IsBuiltinClass returns true if name is one of the classes NewTable registers.
func IsBuiltinClass(name string) bool {
	for _, b := range builtins {
		if b.class == name {
			return true
		}
	}
	return false
}

func (t *Table) registerBuiltins(host *Host) error {
	if host == nil {
		return fmt.Errorf("%w: nil host", ErrMissingClass)
	}
	for _, b := range builtins {
		class, ok := host.Class(b.class)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingClass, b.class)
		}
		var target Target = class
		if b.target != "" {
			if target, ok = host.Target(b.target); !ok {
				return fmt.Errorf("%w: %s", ErrMissingClass, b.target)
			}
		}

		attrs := make([]any, len(b.attrs))
		for i, a := range b.attrs {
			attrs[i] = a
		}
		opts := make([]RegisterOption, 0, len(b.getters))
		for name, g := range b.getters {
			opts = append(opts, WithGetter(name, g))
		}

		if _, err := t.Register(class, target, b.op, attrs, opts...); err != nil {
			return fmt.Errorf("builtin %s: %w", b.class, err)
		}
	}
	return nil
}

func rationalNumerator(obj any) (any, error) {
	r, _ := obj.(*big.Rat)
	if r == nil {
		return nil, nil
	}
	return intValue(r.Num()), nil
}

func rationalDenominator(obj any) (any, error) {
	r, _ := obj.(*big.Rat)
	if r == nil {
		return nil, nil
	}
	return intValue(r.Denom()), nil
}

// SecondsGetter returns the getter for DateTime's sec attribute. It folds the whole
// seconds and the fractional second into one rational, (sec*den + num) / den.
// When fractionInDays is set the fraction is read as a fraction of a day and its
// numerator is scaled by SecondsPerDay first.
func SecondsGetter(fractionInDays bool) Getter {
	return func(obj any) (any, error) {
		var dt DateTime
		switch v := obj.(type) {
		case DateTime:
			dt = v
		case *DateTime:
			if v == nil {
				return nil, nil
			}
			dt = *v
		default:
			return nil, fmt.Errorf("%w: want DateTime, got %T", ErrClassMismatch, obj)
		}

		num := big.NewInt(0)
		den := big.NewInt(1)
		if dt.SecFraction != nil {
			num.Set(dt.SecFraction.Num())
			den.Set(dt.SecFraction.Denom())
		}
		if fractionInDays {
			num.Mul(num, big.NewInt(SecondsPerDay))
		}
		num.Add(num, new(big.Int).Mul(big.NewInt(int64(dt.Sec)), den))

		return new(big.Rat).SetFrac(num, den), nil
	}
}

// newRational is Kernel.Rational(numerator, denominator).
func newRational(args []any) (any, error) {
	nv := arg(args, 0)
	if nv == nil {
		return nil, fmt.Errorf("%w: numerator is required", ErrConstruct)
	}
	num, err := toRat(nv)
	if err != nil {
		return nil, err
	}
	den := big.NewRat(1, 1)
	if dv := arg(args, 1); dv != nil {
		if den, err = toRat(dv); err != nil {
			return nil, err
		}
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("%w: divided by 0", ErrConstruct)
	}
	return num.Quo(num, den), nil
}

// newDate is Date.new(year, month, day, start).
func newDate(args []any) (any, error) {
	y, m, d, err := dateArgs(args)
	if err != nil {
		return nil, err
	}
	start, err := floatArg(args, 3, Italy)
	if err != nil {
		return nil, err
	}
	return Date{Year: y, Month: m, Day: d, Start: start}, nil
}

// newDateTime is DateTime.new(year, month, day, hour, min, sec, offset, start).
func newDateTime(args []any) (any, error) {
	y, m, d, err := dateArgs(args)
	if err != nil {
		return nil, err
	}
	hour, err := clockArg(args, 3, 24, "hour")
	if err != nil {
		return nil, err
	}
	minute, err := clockArg(args, 4, 60, "min")
	if err != nil {
		return nil, err
	}

	dt := DateTime{Year: y, Month: m, Day: d, Hour: hour, Min: minute, Start: Italy}

	if v := arg(args, 5); v != nil {
		sec, err := toRat(v)
		if err != nil {
			return nil, err
		}
		whole := new(big.Int).Quo(sec.Num(), sec.Denom())
		if sec.Sign() < 0 || !whole.IsInt64() || whole.Int64() > 59 {
			return nil, fmt.Errorf("%w: invalid sec %v", ErrConstruct, sec)
		}
		dt.Sec = int(whole.Int64())
		if frac := new(big.Rat).Sub(sec, new(big.Rat).SetInt(whole)); frac.Sign() != 0 {
			dt.SecFraction = frac
		}
	}

	if v := arg(args, 6); v != nil {
		if dt.Offset, err = offsetArg(v); err != nil {
			return nil, err
		}
	}

	if dt.Start, err = floatArg(args, 7, Italy); err != nil {
		return nil, err
	}
	return dt, nil
}

// newRange is Range.new(begin, end, exclude_end).
func newRange(args []any) (any, error) {
	r := Range{Begin: arg(args, 0), End: arg(args, 1)}
	if v := arg(args, 2); v != nil {
		excl, err := toBool(v)
		if err != nil {
			return nil, err
		}
		r.ExcludeEnd = excl
	}
	return r, nil
}

// dateArgs reads year, month and day. Negative months and days count from the end.
func dateArgs(args []any) (year, month, day int, err error) {
	if year, err = intArg(args, 0, -4712); err != nil {
		return 0, 0, 0, err
	}
	if month, err = intArg(args, 1, 1); err != nil {
		return 0, 0, 0, err
	}
	if day, err = intArg(args, 2, 1); err != nil {
		return 0, 0, 0, err
	}

	if month < 0 {
		month += 13
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("%w: invalid month %d", ErrConstruct, month)
	}

	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 0 {
		day += last + 1
	}
	if day < 1 || day > last {
		return 0, 0, 0, fmt.Errorf("%w: invalid day %d", ErrConstruct, day)
	}
	return year, month, day, nil
}

// clockArg reads an hour or minute. Negative values count back from limit.
func clockArg(args []any, i, limit int, name string) (int, error) {
	v, err := intArg(args, i, 0)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v += limit
	}
	if v < 0 || v >= limit {
		return 0, fmt.Errorf("%w: invalid %s %d", ErrConstruct, name, v)
	}
	return v, nil
}

// offsetArg reads a UTC offset given as a day fraction or as "+HH:MM".
func offsetArg(v any) (*big.Rat, error) {
	s, ok := v.(string)
	if !ok {
		return toRat(v)
	}

	// "+HH:MM" or whole hours "+HH".
	sign := int64(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	hh, mm, hasMin := strings.Cut(s, ":")
	h, err := strconv.ParseUint(hh, 10, 8)
	if err != nil || h > 23 {
		return nil, fmt.Errorf("%w: invalid offset %q", ErrConstruct, v)
	}
	var m uint64
	if hasMin {
		m, err = strconv.ParseUint(mm, 10, 8)
		if err != nil || m > 59 {
			return nil, fmt.Errorf("%w: invalid offset %q", ErrConstruct, v)
		}
	}
	return big.NewRat(sign*int64(h*60+m), 24*60), nil
}
