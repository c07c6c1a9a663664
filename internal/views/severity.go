package views

// Severity bands a numeric cell for highlighting.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "none"
	}
}

// OpenQtySeverity bands a summary row's open quantity.
func OpenQtySeverity(v int64) Severity {
	switch {
	case v > 10000:
		return SeverityHigh
	case v > 5000:
		return SeverityMedium
	default:
		return SeverityNone
	}
}

// UnallocatedSeverity bands a summary row's unallocated quantity.
func UnallocatedSeverity(v int64) Severity {
	if v > 1000 {
		return SeverityHigh
	}
	return SeverityNone
}

// CellSeverity bands a numeric detail cell. Non-numeric values are never
// banded.
func CellSeverity(v any) Severity {
	n, ok := v.(float64)
	if !ok {
		return SeverityNone
	}
	switch {
	case n > 100:
		return SeverityHigh
	case n > 50:
		return SeverityMedium
	default:
		return SeverityNone
	}
}
