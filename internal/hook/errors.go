package hook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrTaskNotResolved is matched by every *TaskResolutionError.
var ErrTaskNotResolved = errors.New("task cannot be resolved")

// causes lists why a task may fail to resolve, in display order.
var causes = []string{
	"Missing or corrupted plugin",
	"Missing or invalid task alias and/or task map",
	"Missing or invalid custom plugin path(s)",
	"Missing or invalid custom task path(s)",
}

// TaskResolutionError reports a task that is neither registered nor loadable.
type TaskResolutionError struct {
	// Task is the name as originally requested.
	Task string
}

func (e *TaskResolutionError) Error() string {
	return fmt.Sprintf("'%s' task cannot be loaded or is missing!", e.Task)
}

// Is allows errors.Is to match TaskResolutionError with ErrTaskNotResolved.
func (e *TaskResolutionError) Is(target error) bool {
	return target == ErrTaskNotResolved
}

// Causes returns the possible causes of the failure.
func (e *TaskResolutionError) Causes() []string {
	return append([]string(nil), causes...)
}

var (
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("204"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("192"))
	causeStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

// Diagnostic renders the message shown to users.
func (e *TaskResolutionError) Diagnostic() string {
	var b strings.Builder
	b.WriteString(headlineStyle.Render(e.Error()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Possible causes:"))
	for _, c := range causes {
		b.WriteString("\n")
		b.WriteString(causeStyle.Render("- " + c))
	}
	return b.String()
}
