package ledger

import "github.com/hotteokboki/lseed-project/internal/domain/shared"

// Ledger error codes
const (
	CodeMissingFields     = "MISSING_FIELDS"
	CodeDuplicatePeriod   = "DUPLICATE_PERIOD"
	CodeMultiMonthPayload = "MULTI_MONTH_PAYLOAD"
	CodeInvalidSplit      = "INVALID_SPLIT"
	CodeInvalidUnit       = "INVALID_UNIT"
	CodeInvalidKind       = "INVALID_REPORT_KIND"
	CodeInvalidMonth      = "INVALID_MONTH"
	CodeInvalidProgramID  = "INVALID_PROGRAM_ID"
	CodeInvalidUnitID     = "INVALID_UNIT_ID"
)

var (
	ErrMissingFields     = shared.NewDomainError(CodeMissingFields, "Missing unit or period month")
	ErrDuplicatePeriod   = shared.NewDomainError(CodeDuplicatePeriod, "Report for this unit and month already exists")
	ErrMultiMonthPayload = shared.NewDomainError(CodeMultiMonthPayload, "Multiple months detected in one inventory upload; split by month")
	ErrInvalidSplit      = shared.NewDomainError(CodeInvalidSplit, "Split rows cannot also carry consolidated bucket amounts")
	ErrInvalidUnit       = shared.NewDomainError(CodeInvalidUnit, "Unit does not exist")
	ErrInvalidKind       = shared.NewDomainError(CodeInvalidKind, "Unknown report kind")
	ErrInvalidMonth      = shared.NewDomainError(CodeInvalidMonth, "Invalid month")
	ErrInvalidProgramID  = shared.NewDomainError(CodeInvalidProgramID, "Invalid program id")
	ErrInvalidUnitID     = shared.NewDomainError(CodeInvalidUnitID, "Invalid unit id")
)
