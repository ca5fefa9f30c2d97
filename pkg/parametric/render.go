package parametric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/frame"
	"github.com/bertiewooster/polars/pkg/value"
)

// renderRepro renders the exact inputs of a failed construction as a
// standalone frame.Construct call. The output is valid Go so a failing
// frame can be rebuilt by pasting the block into a test.
func renderRepro(data [][]any, schema frame.Schema, layout frame.Layout) string {
	var b strings.Builder
	b.WriteString("\n// failed frame init: reproduce with...\nframe.Construct(\n")

	if len(data) == 0 {
		b.WriteString("\t[][]any{},\n")
	} else {
		b.WriteString("\t[][]any{\n")
		for _, group := range data {
			b.WriteString("\t\t{")
			for i, v := range group {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(renderValue(v))
			}
			b.WriteString("},\n")
		}
		b.WriteString("\t},\n")
	}

	if len(schema) == 0 {
		b.WriteString("\tframe.Schema{},\n")
	} else {
		b.WriteString("\tframe.Schema{\n")
		for _, f := range schema {
			fmt.Fprintf(&b, "\t\t{Name: %q, DType: %s},\n", f.Name, renderDType(f.DType))
		}
		b.WriteString("\t},\n")
	}

	if layout == frame.RowMajor {
		b.WriteString("\tframe.RowMajor,\n")
	} else {
		b.WriteString("\tframe.ColumnMajor,\n")
	}
	b.WriteString(")\n\n")
	return b.String()
}

// renderValue renders one logical value as a Go literal with its exact
// type, so pasted data rebuilds the same physical column.
func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case int8:
		return fmt.Sprintf("int8(%d)", x)
	case int16:
		return fmt.Sprintf("int16(%d)", x)
	case int32:
		return fmt.Sprintf("int32(%d)", x)
	case int64:
		return fmt.Sprintf("int64(%d)", x)
	case int:
		return fmt.Sprintf("int64(%d)", x)
	case uint8:
		return fmt.Sprintf("uint8(%d)", x)
	case uint16:
		return fmt.Sprintf("uint16(%d)", x)
	case uint32:
		return fmt.Sprintf("uint32(%d)", x)
	case uint64:
		return fmt.Sprintf("uint64(%d)", x)
	case float32:
		return fmt.Sprintf("float32(%s)", renderFloat(float64(x), 32))
	case float64:
		return fmt.Sprintf("float64(%s)", renderFloat(x, 64))
	case string:
		return strconv.Quote(x)
	case time.Time:
		return fmt.Sprintf("time.Unix(0, %d).UTC()", x.UnixNano())
	case time.Duration:
		return fmt.Sprintf("time.Duration(%d)", int64(x))
	case value.Date:
		return fmt.Sprintf("value.Date(%d)", int32(x))
	case value.TimeOfDay:
		return fmt.Sprintf("value.TimeOfDay(%d)", int64(x))
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func renderFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "math.NaN()"
	case math.IsInf(f, 1):
		return "math.Inf(1)"
	case math.IsInf(f, -1):
		return "math.Inf(-1)"
	default:
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
}

// renderDType renders a dtype as the datatype package expression that
// produces it.
func renderDType(dt datatype.DType) string {
	if dt.HasUnit() && dt.Unit != datatype.UnitUnset {
		ctor := "DatetimeWith"
		if dt.Kind == datatype.KindDuration {
			ctor = "DurationWith"
		}
		return fmt.Sprintf("datatype.%s(datatype.%s)", ctor, renderUnit(dt.Unit))
	}
	return "datatype." + dt.String()
}

func renderUnit(u datatype.TimeUnit) string {
	switch u {
	case datatype.Milliseconds:
		return "Milliseconds"
	case datatype.Nanoseconds:
		return "Nanoseconds"
	default:
		return "Microseconds"
	}
}
