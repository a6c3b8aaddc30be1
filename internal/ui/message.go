// Package ui renders styled terminal output and interactive prompts. All
// formatting lives here; the core packages expose structured data only.
package ui

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/substantialcattle5/mde/internal/report"
	"github.com/substantialcattle5/mde/util"
)

var (
	successPrefix = color.New(color.FgGreen, color.Bold).Sprint("[OK]")
	warningPrefix = color.New(color.FgYellow, color.Bold).Sprint("[!]")
	errorPrefix   = color.New(color.FgRed, color.Bold).Sprint("[X]")
	infoPrefix    = color.New(color.FgBlue, color.Bold).Sprint("[*]")

	pathColor = color.New(color.FgCyan).Sprint
)

// Success prints a green [OK] line.
func Success(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", successPrefix, fmt.Sprintf(format, args...))
}

// Warning prints a yellow [!] line.
func Warning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", warningPrefix, fmt.Sprintf(format, args...))
}

// Error prints a red [X] line.
func Error(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", errorPrefix, fmt.Sprintf(format, args...))
}

// Info prints a blue [*] line.
func Info(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", infoPrefix, fmt.Sprintf(format, args...))
}

// Path styles a filesystem path for inline display.
func Path(p string) string {
	return pathColor(p)
}

// PrintScanSummary renders the classification result of a scan.
func PrintScanSummary(rpt *report.Report, verbose bool) {
	fmt.Println()
	fmt.Println("Scan Summary")
	fmt.Println("============")
	fmt.Printf("Files scanned:     %d\n", rpt.TotalFiles)
	fmt.Printf("Unreadable files:  %d\n", rpt.Errors)
	fmt.Printf("Duplicate groups:  %d (%d exact, %d perceptual, %d mixed)\n",
		len(rpt.Groups),
		rpt.GroupCountByKind(report.KindExact),
		rpt.GroupCountByKind(report.KindPerceptual),
		rpt.GroupCountByKind(report.KindMixed),
	)
	fmt.Printf("Redundant copies:  %d\n", rpt.DuplicateCount())
	fmt.Printf("Reclaimable space: %s\n", util.HumanReadableSize(rpt.WastedBytes()))

	if !verbose {
		return
	}
	for i, group := range rpt.Groups {
		fmt.Printf("\nGroup %d (%s):\n", i+1, group.Kind)
		for _, member := range group.Members {
			marker := " "
			if member.Original {
				marker = "*"
			}
			fmt.Printf("  %s %s (%s)\n", marker, member.Path, util.HumanReadableSize(member.Size))
		}
	}
}
