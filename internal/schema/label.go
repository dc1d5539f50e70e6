package schema

import "fmt"

// Label renders a human-readable description of the member for diagnostics,
// qualified by its container: type `User`, field `User.firstname`,
// enum value `Color.RED`, argument `Query.search(filter)`.
func (m *Member) Label() string {
	switch m.Kind {
	case MemberType:
		return fmt.Sprintf("type `%s`", m.Name)
	case MemberArgument:
		return fmt.Sprintf("argument `%s(%s)`", m.Container, m.Name)
	}
	return fmt.Sprintf("%s `%s.%s`", m.Kind, m.Container, m.Name)
}
