package parse

// FieldID identifies one canonical job-record field.
type FieldID int

const (
	FieldUnknown FieldID = iota
	FieldJobID
	FieldAccount
	FieldPartition
	FieldUser
	FieldState
	FieldSubmit
	FieldStart
	FieldEnd
	FieldReqCPUs
	FieldAllocCPUs
	FieldReqMem
	FieldMaxRSS
	FieldAllocTRES
	FieldCPUTimeRaw
)

// DefaultFieldMapping maps sacct header names to canonical fields. It is an
// explicit table so the parser's contract stays auditable; columns with
// header names outside the mapping are ignored.
var DefaultFieldMapping = map[string]FieldID{
	"JobID":      FieldJobID,
	"Account":    FieldAccount,
	"Partition":  FieldPartition,
	"User":       FieldUser,
	"State":      FieldState,
	"Submit":     FieldSubmit,
	"Start":      FieldStart,
	"End":        FieldEnd,
	"ReqCPUS":    FieldReqCPUs,
	"AllocCPUS":  FieldAllocCPUs,
	"ReqMem":     FieldReqMem,
	"MaxRSS":     FieldMaxRSS,
	"AllocTRES":  FieldAllocTRES,
	"CPUTimeRAW": FieldCPUTimeRaw,
}
