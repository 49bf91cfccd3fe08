package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/internal/runner"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a boxed command header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// printReport prints the end-of-run summary
func printReport(report *runner.Report) {
	PrintHeader("Screening Run Summary")
	PrintKeyValue("Run ID", report.RunID, 12)
	PrintKeyValue("Universe", fmt.Sprintf("%d", report.Universe), 12)

	if report.Result != nil {
		r := report.Result
		PrintKeyValue("Qualifying", fmt.Sprintf("%d", len(r.Qualifying)), 12)
		PrintKeyValue("Rejected", fmt.Sprintf("%d", r.Count(contracts.VerdictRejected)), 12)
		PrintKeyValue("Errors", fmt.Sprintf("%d", r.Count(contracts.VerdictError)), 12)
		PrintKeyValue("Skipped", fmt.Sprintf("%d", r.Count(contracts.VerdictSkipped)), 12)
	}
	if report.SnapshotPath != "" {
		PrintKeyValue("Snapshot", filepath.Base(report.SnapshotPath), 12)
	}
	if report.Notified {
		PrintKeyValue("Notified", "yes", 12)
	}

	PrintSeparator()
	for _, stage := range contracts.AllStages() {
		if d, ok := report.StageDurations[stage]; ok {
			PrintKeyValue(stage.String(), d.Round(time.Millisecond).String(), 12)
		}
	}
	PrintDoubleSeparator()
	fmt.Printf("✅ Run completed in %.2fs\n", report.Duration.Seconds())
}
