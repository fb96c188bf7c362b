// SPDX-License-Identifier: EPL-2.0

package sofa

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DataType identifies the netCDF storage type of a variable.
type DataType uint8

const (
	TypeDouble DataType = iota
	TypeFloat
	TypeInt
	TypeString
)

func (t DataType) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	}
	return "invalid"
}

// Variable describes one netCDF variable as seen through a Container:
// its storage type, dimension names in declaration order, and its
// attributes.
type Variable struct {
	Type  DataType
	Dims  []string
	Attrs map[string]string
}

// Container is the read surface of a SOFA file. It abstracts the
// netCDF group so the validator works against any backing store.
type Container interface {
	// Attr returns the named global attribute.
	Attr(name string) (string, bool)
	// Dimension returns the size of the named dimension.
	Dimension(name string) (int, bool)
	// Variable returns the named variable's description.
	Variable(name string) (Variable, bool)
}

// AttrSpec is a required global attribute. An empty Value only
// requires presence; otherwise the stored value must match exactly.
type AttrSpec struct {
	Name  string
	Value string
}

// DimSpec is a required dimension. Size 0 accepts any positive size;
// otherwise the stored size must match exactly.
type DimSpec struct {
	Name string
	Size int
}

// VarSpec is a variable requirement. Shapes lists the acceptable
// dimension-name sequences; Units, when set, must match the variable's
// Units attribute (compared case-insensitively, ignoring spaces).
// Optional variables are validated only when present.
type VarSpec struct {
	Name     string
	Type     DataType
	Shapes   [][]string
	Units    string
	Optional bool
}

// Spec is a SOFA convention schema: the complete set of global
// attributes, dimensions, and variables a conforming file must carry.
type Spec struct {
	Name       string
	Attributes []AttrSpec
	Dimensions []DimSpec
	Variables  []VarSpec
}

// Validate checks the container against the convention and returns nil
// iff everything required is present with the declared shape, type and
// units. All violations are reported at once, joined with errors.Join.
func (s *Spec) Validate(c Container) error {
	var errs []error

	for _, a := range s.Attributes {
		got, ok := c.Attr(a.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingAttribute, a.Name))
			continue
		}
		if a.Value != "" && got != a.Value {
			errs = append(errs, fmt.Errorf("%w: %s = %q, want %q",
				ErrAttributeValue, a.Name, got, a.Value))
		}
	}

	for _, d := range s.Dimensions {
		size, ok := c.Dimension(d.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingDimension, d.Name))
			continue
		}
		if d.Size != 0 && size != d.Size {
			errs = append(errs, fmt.Errorf("%w: %s = %d, want %d",
				ErrDimensionSize, d.Name, size, d.Size))
		} else if size <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s = %d, want > 0",
				ErrDimensionSize, d.Name, size))
		}
	}

	for _, v := range s.Variables {
		got, ok := c.Variable(v.Name)
		if !ok {
			if !v.Optional {
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingVariable, v.Name))
			}
			continue
		}
		errs = append(errs, validateVariable(v, got)...)
	}

	return errors.Join(errs...)
}

func validateVariable(spec VarSpec, got Variable) []error {
	var errs []error

	if got.Type != spec.Type {
		errs = append(errs, fmt.Errorf("%w: %s is %v, want %v",
			ErrVariableType, spec.Name, got.Type, spec.Type))
	}

	shapeOK := false
	for _, shape := range spec.Shapes {
		if slices.Equal(got.Dims, shape) {
			shapeOK = true
			break
		}
	}
	if !shapeOK {
		errs = append(errs, fmt.Errorf("%w: %s has dimensions %v, want one of %v",
			ErrVariableShape, spec.Name, got.Dims, spec.Shapes))
	}

	if spec.Units != "" {
		units, ok := got.Attrs["Units"]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s has no Units attribute",
				ErrVariableUnits, spec.Name))
		} else if normalizeUnits(units) != normalizeUnits(spec.Units) {
			errs = append(errs, fmt.Errorf("%w: %s has Units %q, want %q",
				ErrVariableUnits, spec.Name, units, spec.Units))
		}
	}

	return errs
}

// normalizeUnits folds case and spacing so "degree, degree, metre" and
// "Degree,Degree,Metre" compare equal.
func normalizeUnits(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}
