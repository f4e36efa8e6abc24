package meta

// Options holds the settings shared between the generator orchestrator and
// the language-specific binding generators.
type Options struct {
	GoPackage string // package clause of the Go bindings
	Version   string // generator version stamped into file headers
}

// DefaultGoPackage is used when no Go package name is configured.
const DefaultGoPackage = "procedures"

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.GoPackage == "" {
		o.GoPackage = DefaultGoPackage
	}
	return o
}
