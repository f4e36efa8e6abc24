// Package validator checks the cross references of a fully scanned model.
package validator

import (
	"strings"

	"github.com/osconfig/cegen/internal/codegen/model"
)

const (
	optionalPrefix  = "Optional<"
	separatedPrefix = "Separated<"
)

// Validate checks every audit and then every remediation, each in name
// order. The first violation is returned.
func Validate(m *model.Model) error {
	for _, k := range []model.Kind{model.Audit, model.Remediate} {
		for _, p := range m.Procedures(k) {
			if err := validateProcedure(m, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateProcedure(m *model.Model, proc *model.Procedure) error {
	if proc.ParamsName == "" {
		return nil
	}
	params, ok := m.Parameters(proc.ParamsName)
	if !ok {
		return model.Errorf(model.UnresolvedReference, proc.Pos, proc.Symbol(),
			"unknown parameters struct %s", proc.ParamsName)
	}

	for _, param := range params.Params {
		at := model.Position{File: params.Pos.File, Line: param.Line}
		name := proc.Symbol() + "." + param.Name

		scalar, err := ScalarType(param)
		if err != nil {
			return model.Errorf(model.InconsistentOptionality, at, name, "%v", err)
		}
		if !m.IsSupported(scalar) {
			return model.Errorf(model.UnsupportedType, at, name,
				"%s procedure %s: parameter %s has unsupported type %s",
				proc.Kind, proc.Name, param.Name, param.Type)
		}
	}
	return nil
}

type optionalityError struct {
	typ      string
	optional bool
}

func (e *optionalityError) Error() string {
	if e.optional {
		return "marked as optional but has type " + e.typ
	}
	return "marked as non-optional but has type " + e.typ
}

// ScalarType strips an outer Optional<...> and then an outer
// Separated<X, ...> from the parameter type and returns X. The Optional
// wrapper must be present exactly when the parameter is optional.
func ScalarType(p model.Parameter) (string, error) {
	t := p.Type
	switch {
	case strings.HasPrefix(t, optionalPrefix):
		if !p.Optional {
			return "", &optionalityError{typ: p.Type}
		}
		t = strings.TrimSuffix(t[len(optionalPrefix):], ">")
	case p.Optional:
		return "", &optionalityError{typ: p.Type, optional: true}
	}

	if strings.HasPrefix(t, separatedPrefix) && strings.HasSuffix(t, ">") {
		t = t[len(separatedPrefix) : len(t)-1]
		t, _, _ = strings.Cut(t, ",")
	}
	return strings.TrimSpace(t), nil
}
