package editorlog

import (
	"fmt"
	"os"
	"strings"
)

// Markers identify the slice of Editor.log covering the newest
// compilation. Matching is substring based, so each pattern only needs
// to occur somewhere in the line.
type Markers struct {
	// Start marks the beginning of a compilation
	Start string
	// Section marks the end of the build section
	Section string
	// Output marks the start of the diagnostic output block
	Output string
}

// DefaultMarkers returns the lines the Unity editor writes around a
// Bee/Tundra driven compilation.
func DefaultMarkers() Markers {
	return Markers{
		Start:   "EditorCompilation:InvokeCompilationStarted",
		Section: "* Tundra",
		Output:  "# Output",
	}
}

// Window is the located compilation window inside a log.
type Window struct {
	StartLine   int
	SectionLine int
	// OutputLine is -1 when the compilation produced no output block;
	// the editor only emits one when there are diagnostics.
	OutputLine int
	// Entries are the trimmed, non-empty diagnostic lines between the
	// output and section markers.
	Entries []string
}

// MarkerNotFoundError reports which window marker was missing from the log.
type MarkerNotFoundError struct {
	// Marker is "start" or "section"
	Marker string
	// Pattern is the substring that was searched for
	Pattern string
}

func (e *MarkerNotFoundError) Error() string {
	return fmt.Sprintf("%s marker %q not found", e.Marker, e.Pattern)
}

// ExtractWindow locates the newest compilation window in the given log
// lines. All scans run backwards from the end of the log so that only
// the latest compilation is considered, even when the log holds many.
// A missing output marker is not an error: it means the compilation was
// clean, and the window comes back with OutputLine == -1 and no entries.
func ExtractWindow(lines []string, markers Markers) (Window, error) {
	start := scanBackwards(lines, markers.Start, len(lines)-1, -1)
	if start == -1 {
		return Window{}, &MarkerNotFoundError{Marker: "start", Pattern: markers.Start}
	}

	section := scanBackwards(lines, markers.Section, len(lines)-1, start)
	if section == -1 {
		return Window{}, &MarkerNotFoundError{Marker: "section", Pattern: markers.Section}
	}

	output := scanBackwards(lines, markers.Output, section-1, start)
	window := Window{StartLine: start, SectionLine: section, OutputLine: output}
	if output == -1 {
		return window, nil
	}

	for _, line := range lines[output+1 : section] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			window.Entries = append(window.Entries, trimmed)
		}
	}
	return window, nil
}

// scanBackwards walks lines from index from down to, but excluding,
// index until and returns the first line containing pattern, or -1.
func scanBackwards(lines []string, pattern string, from, until int) int {
	for i := from; i > until; i-- {
		if strings.Contains(lines[i], pattern) {
			return i
		}
	}
	return -1
}

// ReadLines reads the whole log file and splits it into lines. Editor
// logs written on Windows carry CRLF endings; the trailing \r does not
// affect substring matching and entry lines are trimmed during
// extraction.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read editor log %s: %w", path, err)
	}
	return strings.Split(string(raw), "\n"), nil
}
