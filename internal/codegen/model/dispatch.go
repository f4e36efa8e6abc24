package model

// DispatchEntry pairs the audit and remediation halves of one procedure name.
// A nil half means the procedure has no handler of that kind.
type DispatchEntry struct {
	Name      string
	Audit     *Procedure
	Remediate *Procedure
}

// Dispatch returns one entry per procedure name found in either the audit or
// the remediation map, sorted by name.
func (m *Model) Dispatch() []DispatchEntry {
	names := make(map[string]struct{}, len(m.audits)+len(m.remediations))
	for name := range m.audits {
		names[name] = struct{}{}
	}
	for name := range m.remediations {
		names[name] = struct{}{}
	}

	out := make([]DispatchEntry, 0, len(names))
	for _, name := range sortedKeys(names) {
		out = append(out, DispatchEntry{
			Name:      name,
			Audit:     m.audits[name],
			Remediate: m.remediations[name],
		})
	}
	return out
}

