package domain

// Field identifies one extracted invoice attribute.
type Field string

const (
	FieldTaxID            Field = "tax_id"
	FieldTotalAmount      Field = "total_amount"
	FieldTotalVolume      Field = "total_volume"
	FieldIssueDate        Field = "issue_date"
	FieldPeriodStart      Field = "period_start"
	FieldPeriodEnd        Field = "period_end"
	FieldInvoiceNumber    Field = "invoice_number"
	FieldTaxAmount        Field = "tax_amount"
	FieldCorrectionFactor Field = "correction_factor"
)

// RequiredFields lists every field a record needs before it can be ledgered,
// in ledger column order.
var RequiredFields = []Field{
	FieldTaxID,
	FieldTotalAmount,
	FieldTotalVolume,
	FieldIssueDate,
	FieldPeriodStart,
	FieldPeriodEnd,
	FieldInvoiceNumber,
	FieldTaxAmount,
	FieldCorrectionFactor,
}

// DecimalFields are parsed as locale decimals during normalization.
var DecimalFields = map[Field]bool{
	FieldTotalAmount: true,
	FieldTotalVolume: true,
	FieldTaxAmount:   true,
}

// SourceFormat is the container format of an inbound document.
type SourceFormat string

const (
	SourceFormatPDF SourceFormat = "pdf"
	SourceFormatXML SourceFormat = "xml"
)

// AllowedExtensions maps file extensions (without dot, lowercase) to SourceFormat.
var AllowedExtensions = map[string]SourceFormat{
	"pdf": SourceFormatPDF,
	"xml": SourceFormatXML,
}

// Outcome is the terminal status of a single document in a batch.
type Outcome string

const (
	OutcomeInserted      Outcome = "inserted"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeMissingFields Outcome = "missing_fields"
	OutcomeReadError     Outcome = "read_error"
)

// Outcomes lists all terminal statuses in reporting order.
var Outcomes = []Outcome{
	OutcomeInserted,
	OutcomeDuplicate,
	OutcomeMissingFields,
	OutcomeReadError,
}

// ValidationSeverity defines the severity of a validation check.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// ValidationRuleType categorizes a validation check.
type ValidationRuleType string

const (
	ValidationRuleRequired ValidationRuleType = "required"
	ValidationRuleRegex    ValidationRuleType = "regex"
	ValidationRuleLogical  ValidationRuleType = "logical"
)
