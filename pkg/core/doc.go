// Package core defines the shared language of the ageview system.
//
// This package contains:
//   - Domain entities (Filter, Record, Page, SummaryRow, Turn)
//   - Service interfaces (QueryClient)
//   - The error taxonomy for backend calls (NetworkError, ServerError)
//
// The Golden Rule: pkg/core imports ONLY stdlib and small data-structure libraries.
// All other packages depend on core, not the reverse.
package core
