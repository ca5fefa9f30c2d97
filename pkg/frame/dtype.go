package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/bertiewooster/polars/pkg/datatype"
)

// arrowType maps a logical dtype to its physical Arrow storage type.
// Unit-less Datetime and Duration default to microseconds. Time is always
// stored as Time64 nanoseconds; Arrow's Time64 does not go coarser than
// microseconds and we want the full resolution of the drawn values.
func arrowType(dt datatype.DType) (arrow.DataType, error) {
	switch dt.Kind {
	case datatype.KindBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case datatype.KindInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case datatype.KindInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case datatype.KindInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case datatype.KindInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case datatype.KindUInt8:
		return arrow.PrimitiveTypes.Uint8, nil
	case datatype.KindUInt16:
		return arrow.PrimitiveTypes.Uint16, nil
	case datatype.KindUInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case datatype.KindUInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case datatype.KindFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case datatype.KindFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case datatype.KindUtf8:
		return arrow.BinaryTypes.String, nil
	case datatype.KindCategorical:
		return &arrow.DictionaryType{
			IndexType: arrow.PrimitiveTypes.Uint32,
			ValueType: arrow.BinaryTypes.String,
		}, nil
	case datatype.KindDate:
		return arrow.FixedWidthTypes.Date32, nil
	case datatype.KindTime:
		return &arrow.Time64Type{Unit: arrow.Nanosecond}, nil
	case datatype.KindDatetime:
		return &arrow.TimestampType{Unit: arrowUnit(dt.Unit), TimeZone: "UTC"}, nil
	case datatype.KindDuration:
		return &arrow.DurationType{Unit: arrowUnit(dt.Unit)}, nil
	default:
		return nil, fmt.Errorf("frame: no storage type for %s", dt)
	}
}

func arrowUnit(u datatype.TimeUnit) arrow.TimeUnit {
	switch u {
	case datatype.Milliseconds:
		return arrow.Millisecond
	case datatype.Nanoseconds:
		return arrow.Nanosecond
	default:
		return arrow.Microsecond
	}
}
