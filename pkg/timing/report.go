package timing

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Report renders the timer table, descending by duration, with a trailing
// total row and per-timer percentages.
func (s *Set) Report(w io.Writer) {
	entries := s.Entries()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Timer", "Seconds", "% of total"})
	table.SetAutoFormatHeaders(false)

	var grandTotal time.Duration
	for _, entry := range entries {
		grandTotal += entry.Total
		table.Append([]string{
			entry.Name,
			formatSeconds(entry.Total),
			fmt.Sprintf("%.2f%%", entry.Percent),
		})
	}
	table.Append([]string{"Total Time", formatSeconds(grandTotal), "100.00%"})

	table.Render()
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
