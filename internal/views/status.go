package views

// Status line texts for the details grid.
const (
	InitializingText    = "Initializing dashboard data..."
	NoDataText          = "No data found"
	NoResultsText       = "No results found for your search"
	NoResultsHintText   = "Try using different keywords or clearing the search"
	ScrollForMoreText   = "Scroll down to load more"
	statusLineSeparator = " • "
)

// StatusLine describes how much of the details dataset is loaded.
func StatusLine(loaded, total int, initializing bool) string {
	if initializing {
		return InitializingText
	}
	if total <= 0 {
		return NoDataText
	}

	line := "Showing up to " + FormatCount(min(loaded, total)) + " of " + FormatCount(total) + " rows"
	if loaded < total {
		line += statusLineSeparator + ScrollForMoreText
	}
	return line
}
