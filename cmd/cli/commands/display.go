package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/rhowell/gradesplit/pkg/core/services"
)

func printPartitionResult(w io.Writer, result *services.PartitionResult) {
	if result.Written {
		fmt.Fprintf(w, "\n✓ Partition written to %s\n\n", result.Destination)
	} else {
		fmt.Fprintf(w, "\nDry run, nothing written\n\n")
	}

	fmt.Fprintf(w, "Run ID:      %s\n", result.RunID)
	fmt.Fprintf(w, "Submissions: %d solo, %d group\n", result.SoloCount, result.GroupCount)
	if result.Shuffled {
		fmt.Fprintf(w, "Seed:        %d\n", result.Seed)
	}
	fmt.Fprintln(w)

	printShareTable(w, result.Workers, true)
	printExcluded(w, result.Excluded)
}

func printQuotas(w io.Writer, soloCount, groupCount int, summaries []services.WorkerSummary, excluded []string) {
	fmt.Fprintf(w, "\nIdeal shares for %d solo and %d group submissions:\n\n", soloCount, groupCount)
	printShareTable(w, summaries, false)
	printExcluded(w, excluded)
}

// printShareTable prints one row per instructor, with assigned counts when withCounts is set
func printShareTable(w io.Writer, summaries []services.WorkerSummary, withCounts bool) {
	nameWidth := len("Instructor")
	for _, s := range summaries {
		nameWidth = max(nameWidth, len(s.Worker))
	}

	if withCounts {
		fmt.Fprintf(w, "  %-*s  %6s  %6s  %11s  %6s  %11s\n", nameWidth, "Instructor", "Hours", "Solo", "Ideal solo", "Group", "Ideal group")
	} else {
		fmt.Fprintf(w, "  %-*s  %6s  %11s  %11s\n", nameWidth, "Instructor", "Hours", "Ideal solo", "Ideal group")
	}
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", nameWidth+40))

	for _, s := range summaries {
		if withCounts {
			fmt.Fprintf(w, "  %-*s  %6s  %6d  %11.2f  %6d  %11.2f\n",
				nameWidth, s.Worker, formatHours(s.Hours), s.Solo, s.IdealSolo, s.Group, s.IdealGroup)
		} else {
			fmt.Fprintf(w, "  %-*s  %6s  %11.2f  %11.2f\n",
				nameWidth, s.Worker, formatHours(s.Hours), s.IdealSolo, s.IdealGroup)
		}
	}
	fmt.Fprintln(w)
}

func printExcluded(w io.Writer, excluded []string) {
	if len(excluded) == 0 {
		return
	}
	fmt.Fprintf(w, "Not allocated (0 hours): %s\n\n", strings.Join(excluded, ", "))
}

// formatHours drops the decimal part for whole hours
func formatHours(hours float64) string {
	if hours == float64(int64(hours)) {
		return fmt.Sprintf("%d", int64(hours))
	}
	return fmt.Sprintf("%.1f", hours)
}
