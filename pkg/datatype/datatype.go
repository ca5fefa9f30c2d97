// Package datatype defines the closed set of element types the generator can
// produce, including the two unit-parametrized temporal types. The enumeration
// is deliberately closed: selection filters (allowed minus excluded) are plain
// set differences over it, and the value-source registry is a lookup table
// keyed by base type.
package datatype

import (
	"fmt"
	"strings"
)

// Kind identifies one member of the element-type enumeration.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBoolean
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindUtf8
	KindCategorical
	KindDate
	KindTime
	KindDatetime
	KindDuration
)

// TimeUnit is the resolution of a Datetime or Duration column.
// UnitUnset on those kinds means "pick a random unit at draw time".
type TimeUnit uint8

const (
	UnitUnset TimeUnit = iota
	Milliseconds
	Microseconds
	Nanoseconds
)

// TemporalUnits lists the units a unit-less temporal dtype may resolve to.
var TemporalUnits = []TimeUnit{Milliseconds, Microseconds, Nanoseconds}

// String returns the short unit suffix used in dtype names.
func (u TimeUnit) String() string {
	switch u {
	case Milliseconds:
		return "ms"
	case Microseconds:
		return "us"
	case Nanoseconds:
		return "ns"
	default:
		return ""
	}
}

// DType is one element type. The zero value is "unset" and means the dtype
// will be resolved (drawn or inferred) before use.
type DType struct {
	Kind Kind
	Unit TimeUnit // meaningful only for Datetime and Duration
}

// Canonical dtype values. Datetime and Duration carry no unit here; use
// DatetimeWith/DurationWith for an explicit unit.
var (
	Boolean     = DType{Kind: KindBoolean}
	Int8        = DType{Kind: KindInt8}
	Int16       = DType{Kind: KindInt16}
	Int32       = DType{Kind: KindInt32}
	Int64       = DType{Kind: KindInt64}
	UInt8       = DType{Kind: KindUInt8}
	UInt16      = DType{Kind: KindUInt16}
	UInt32      = DType{Kind: KindUInt32}
	UInt64      = DType{Kind: KindUInt64}
	Float32     = DType{Kind: KindFloat32}
	Float64     = DType{Kind: KindFloat64}
	Utf8        = DType{Kind: KindUtf8}
	Categorical = DType{Kind: KindCategorical}
	Date        = DType{Kind: KindDate}
	Time        = DType{Kind: KindTime}
	Datetime    = DType{Kind: KindDatetime}
	Duration    = DType{Kind: KindDuration}
)

// DatetimeWith returns a Datetime dtype with an explicit unit.
func DatetimeWith(u TimeUnit) DType { return DType{Kind: KindDatetime, Unit: u} }

// DurationWith returns a Duration dtype with an explicit unit.
func DurationWith(u TimeUnit) DType { return DType{Kind: KindDuration, Unit: u} }

// All returns the canonical enumeration of base dtypes, in a fixed order.
// The order is load-bearing: random dtype selection indexes into it, so it
// must be deterministic across processes.
func All() []DType {
	return []DType{
		Boolean,
		Int8, Int16, Int32, Int64,
		UInt8, UInt16, UInt32, UInt64,
		Float32, Float64,
		Utf8, Categorical,
		Date, Time, Datetime, Duration,
	}
}

// IsZero reports whether the dtype is unset.
func (d DType) IsZero() bool { return d.Kind == KindInvalid }

// Base strips any temporal unit, yielding the enumeration member used for
// registry lookups and set arithmetic.
func (d DType) Base() DType { return DType{Kind: d.Kind} }

// IsFloat reports whether the dtype is a floating-point type.
func (d DType) IsFloat() bool { return d.Kind == KindFloat32 || d.Kind == KindFloat64 }

// IsInteger reports whether the dtype is a signed or unsigned integer type.
func (d DType) IsInteger() bool {
	return d.Kind >= KindInt8 && d.Kind <= KindUInt64
}

// IsTemporal reports whether the dtype is one of Date, Time, Datetime, Duration.
func (d DType) IsTemporal() bool {
	return d.Kind >= KindDate && d.Kind <= KindDuration
}

// HasUnit reports whether the dtype's kind is unit-parametrized.
func (d DType) HasUnit() bool { return d.Kind == KindDatetime || d.Kind == KindDuration }

var kindNames = map[Kind]string{
	KindBoolean:     "Boolean",
	KindInt8:        "Int8",
	KindInt16:       "Int16",
	KindInt32:       "Int32",
	KindInt64:       "Int64",
	KindUInt8:       "UInt8",
	KindUInt16:      "UInt16",
	KindUInt32:      "UInt32",
	KindUInt64:      "UInt64",
	KindFloat32:     "Float32",
	KindFloat64:     "Float64",
	KindUtf8:        "Utf8",
	KindCategorical: "Categorical",
	KindDate:        "Date",
	KindTime:        "Time",
	KindDatetime:    "Datetime",
	KindDuration:    "Duration",
}

// String renders the dtype name, with the unit suffix for parametrized
// temporal types, e.g. "Int64", "Datetime[us]".
func (d DType) String() string {
	name, ok := kindNames[d.Kind]
	if !ok {
		return "Invalid"
	}
	if d.HasUnit() && d.Unit != UnitUnset {
		return fmt.Sprintf("%s[%s]", name, d.Unit)
	}
	return name
}

// Parse converts a dtype name back into a DType. Names are matched
// case-insensitively; temporal units use the "Datetime[us]" form. Common
// aliases from config files (int, string, float, bool) are accepted.
func Parse(s string) (DType, error) {
	name := strings.TrimSpace(s)
	unit := UnitUnset
	if i := strings.IndexByte(name, '['); i >= 0 && strings.HasSuffix(name, "]") {
		switch strings.ToLower(name[i+1 : len(name)-1]) {
		case "ms":
			unit = Milliseconds
		case "us":
			unit = Microseconds
		case "ns":
			unit = Nanoseconds
		default:
			return DType{}, fmt.Errorf("datatype: unknown time unit in %q", s)
		}
		name = name[:i]
	}
	lower := strings.ToLower(name)
	for kind, kn := range kindNames {
		if strings.ToLower(kn) == lower {
			d := DType{Kind: kind}
			if unit != UnitUnset {
				if !d.HasUnit() {
					return DType{}, fmt.Errorf("datatype: %s does not take a time unit", kn)
				}
				d.Unit = unit
			}
			return d, nil
		}
	}
	switch lower {
	case "bool":
		return Boolean, nil
	case "int":
		return Int64, nil
	case "uint":
		return UInt64, nil
	case "float", "double":
		return Float64, nil
	case "string", "str":
		return Utf8, nil
	case "cat":
		return Categorical, nil
	}
	return DType{}, fmt.Errorf("datatype: unknown dtype %q", s)
}

// Selectable returns allowed minus excluded, in canonical order. A nil
// allowed set means the full enumeration. Comparison is by base type, so
// excluding Datetime also excludes Datetime[ns].
func Selectable(allowed, excluded []DType) []DType {
	pool := allowed
	if pool == nil {
		pool = All()
	}
	out := make([]DType, 0, len(pool))
	for _, d := range pool {
		skip := false
		for _, e := range excluded {
			if d.Base() == e.Base() {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, d)
		}
	}
	return out
}
