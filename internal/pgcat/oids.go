package pgcat

// Well-known Postgres type OIDs, from pg_type.dat in the server source.
// pgtc resolves these without a catalog round trip; anything else falls
// back to a pg_type (and, for enums, pg_enum) query (see catalog.go).
const (
	oidBool        = 16
	oidBytea       = 17
	oidInt8        = 20
	oidInt2        = 21
	oidInt4        = 23
	oidText        = 25
	oidOID         = 26
	oidJSON        = 114
	oidFloat4      = 700
	oidFloat8      = 701
	oidUnknown     = 705
	oidCircle      = 718
	oidVarchar     = 1043
	oidDate        = 1082
	oidTime        = 1083
	oidTimestamp   = 1114
	oidTimestamptz = 1184
	oidInterval    = 1186
	oidNumeric     = 1700
	oidUUID        = 2950
	oidJSONB       = 3802

	oidBoolArray        = 1000
	oidByteaArray       = 1001
	oidInt8Array        = 1016
	oidInt2Array        = 1005
	oidInt4Array        = 1007
	oidTextArray        = 1009
	oidFloat4Array      = 1021
	oidFloat8Array      = 1022
	oidVarcharArray     = 1015
	oidDateArray        = 1182
	oidTimestampArray   = 1115
	oidTimestamptzArray = 1185
	oidNumericArray     = 1231
	oidUUIDArray        = 2951
	oidJSONArray        = 199
	oidJSONBArray       = 3807
)

var timePkg = "time"
var uuidPkg = "github.com/google/uuid"

// wellKnown maps a base (non-array) OID to the scalar TargetType pgtc
// emits for it. Array OIDs are derived in Registry.Resolve by wrapping the
// corresponding element type.
var wellKnown = map[uint32]TargetType{
	oidBool:        Primitive{Name: "bool"},
	oidBytea:       Primitive{Name: "[]byte"},
	oidInt8:        Primitive{Name: "int64"},
	oidInt2:        Primitive{Name: "int16"},
	oidInt4:        Primitive{Name: "int32"},
	oidText:        Primitive{Name: "string"},
	oidOID:         Primitive{Name: "uint32"},
	oidJSON:        Primitive{Name: "[]byte"},
	oidJSONB:       Primitive{Name: "[]byte"},
	oidFloat4:      Primitive{Name: "float32"},
	oidFloat8:      Primitive{Name: "float64"},
	oidVarchar:     Primitive{Name: "string"},
	oidDate:        Primitive{Name: "time.Time", Import: timePkg},
	oidTime:        Primitive{Name: "time.Time", Import: timePkg},
	oidTimestamp:   Primitive{Name: "time.Time", Import: timePkg},
	oidTimestamptz: Primitive{Name: "time.Time", Import: timePkg},
	oidInterval:    Primitive{Name: "string"},
	oidNumeric:     Primitive{Name: "float64"},
	oidUUID:        Primitive{Name: "uuid.UUID", Import: uuidPkg},
}

// arrayOf maps a Postgres array OID to its element OID, for the built-in
// array types pgtc resolves without a pg_type lookup.
var arrayOf = map[uint32]uint32{
	oidBoolArray:        oidBool,
	oidByteaArray:       oidBytea,
	oidInt8Array:        oidInt8,
	oidInt2Array:        oidInt2,
	oidInt4Array:        oidInt4,
	oidTextArray:        oidText,
	oidFloat4Array:      oidFloat4,
	oidFloat8Array:      oidFloat8,
	oidVarcharArray:     oidVarchar,
	oidDateArray:        oidDate,
	oidTimestampArray:   oidTimestamp,
	oidTimestamptzArray: oidTimestamptz,
	oidNumericArray:     oidNumeric,
	oidUUIDArray:        oidUUID,
	oidJSONArray:        oidJSON,
	oidJSONBArray:       oidJSONB,
}
