package sofa

import "errors"

var (
	ErrMissingAttribute = errors.New("missing global attribute")
	ErrAttributeValue   = errors.New("wrong attribute value")
	ErrMissingDimension = errors.New("missing dimension")
	ErrDimensionSize    = errors.New("wrong dimension size")
	ErrMissingVariable  = errors.New("missing variable")
	ErrVariableType     = errors.New("wrong variable type")
	ErrVariableShape    = errors.New("wrong variable shape")
	ErrVariableUnits    = errors.New("wrong variable units")
)
