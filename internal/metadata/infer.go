package metadata

import (
	"strconv"
	"strings"
	"time"
)

// DatetimeFormat pairs the strftime pattern stored in documents with the Go
// layout used for parsing. Candidates are tried in order; the first pattern
// that parses every sampled value wins.
type DatetimeFormat struct {
	Pattern string
	Layout  string
}

var datetimeFormats = []DatetimeFormat{
	{"%Y-%m-%d %H:%M:%S", "2006-01-02 15:04:05"},
	{"%Y-%m-%dT%H:%M:%S", "2006-01-02T15:04:05"},
	{"%Y-%m-%d", "2006-01-02"},
	{"%d/%m/%Y %H:%M:%S", "02/01/2006 15:04:05"},
	{"%d/%m/%Y", "02/01/2006"},
	{"%m/%d/%Y", "01/02/2006"},
	{"%H:%M:%S", "15:04:05"},
}

// Two-valued encodings accepted as boolean. The bare digit pair requires
// both values to occur, otherwise the column falls through to numerical.
var booleanDomains = []struct {
	truthy, falsy string
	needBoth      bool
}{
	{"true", "false", false},
	{"t", "f", false},
	{"yes", "no", false},
	{"y", "n", false},
	{"1", "0", true},
}

// classifier inspects the non-null sample of a column and either claims it
// or passes. Classifiers run in priority order; categorical is the fallback
// when none claims the column.
type classifier func(values []string) (FieldDescriptor, bool)

var classifiers = []classifier{
	classifyDatetime,
	classifyBoolean,
	classifyNumerical,
}

// Infer derives a field descriptor from a column's name and sampled values.
// It is pure: the same input always yields the same descriptor, and a column
// that no classifier can claim degrades to categorical rather than erroring.
func Infer(name string, values []string) FieldDescriptor {
	if KeyLikeName(name) {
		return InferKey(values)
	}

	sample := nonNull(values)
	if len(sample) == 0 {
		return FieldDescriptor{Type: TypeCategorical}
	}
	for _, classify := range classifiers {
		if desc, ok := classify(sample); ok {
			return desc
		}
	}
	return FieldDescriptor{Type: TypeCategorical}
}

// InferKey classifies a column that is known to be a primary or foreign key:
// type id, subtype integer when every sampled value parses as an integer,
// string otherwise.
func InferKey(values []string) FieldDescriptor {
	desc := FieldDescriptor{Type: TypeID, Subtype: SubtypeString}
	sample := nonNull(values)
	if len(sample) > 0 && allIntegers(sample) {
		desc.Subtype = SubtypeInteger
	}
	return desc
}

func nonNull(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func classifyDatetime(values []string) (FieldDescriptor, bool) {
	for _, f := range datetimeFormats {
		ok := true
		for _, v := range values {
			if _, err := time.Parse(f.Layout, strings.TrimSpace(v)); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return FieldDescriptor{Type: TypeDatetime, Format: f.Pattern}, true
		}
	}
	return FieldDescriptor{}, false
}

func classifyBoolean(values []string) (FieldDescriptor, bool) {
	for _, domain := range booleanDomains {
		sawTruthy, sawFalsy := false, false
		ok := true
		for _, v := range values {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case domain.truthy:
				sawTruthy = true
			case domain.falsy:
				sawFalsy = true
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok && (!domain.needBoth || (sawTruthy && sawFalsy)) {
			return FieldDescriptor{Type: TypeBoolean}, true
		}
	}
	return FieldDescriptor{}, false
}

func classifyNumerical(values []string) (FieldDescriptor, bool) {
	if allIntegers(values) {
		return FieldDescriptor{Type: TypeNumerical, Subtype: SubtypeInteger}, true
	}
	for _, v := range values {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return FieldDescriptor{}, false
		}
	}
	return FieldDescriptor{Type: TypeNumerical, Subtype: SubtypeFloat}, true
}

func allIntegers(values []string) bool {
	for _, v := range values {
		if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
			return false
		}
	}
	return true
}
