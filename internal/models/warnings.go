package models

// WarningCode categorizes warnings by subsystem.
// W2xxx = numeric normalization, W3xxx = rate providers.
type WarningCode string

const (
	WarnUnmappedCurrency WarningCode = "W2001" // currency missing from the rate table, 1.0 used
	WarnNAVDefaulted     WarningCode = "W2002" // NAV missing or zero, 1 substituted for division
	WarnNonFiniteValue   WarningCode = "W2003" // NaN or Inf coerced to zero
	WarnFXFallback       WarningCode = "W3001" // live rate unavailable, desk rate used
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
