package decision

import (
	"fmt"
	"strings"
)

// DefinitionError reports a structurally invalid case: an unknown node
// reference, a missing or malformed appreciation rule, or a scenario or
// option referencing names that do not exist. Fatal; nothing is evaluated.
type DefinitionError struct {
	Subject string // the node, option, scenario, or rule at fault
	Reason  string
}

func (e *DefinitionError) Error() string {
	if e.Subject == "" {
		return "definition error: " + e.Reason
	}
	return fmt.Sprintf("definition error in %q: %s", e.Subject, e.Reason)
}

func definitionErrorf(subject, format string, args ...any) *DefinitionError {
	return &DefinitionError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// CycleError reports that the dependency graph is not acyclic. Fatal;
// nothing is evaluated. Nodes lists the members of the cycle in the order
// they are visited.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle through %s", strings.Join(e.Nodes, " -> "))
}
