package codegen

import "fmt"

// GenError represents a code generation failure caused by a malformed or
// unrecognized tree shape.
type GenError struct {
	Message string
}

func (e *GenError) Error() string {
	return fmt.Sprintf("code generation error: %s", e.Message)
}

// UnsupportedFeatureError reports a tree form the backends deliberately
// refuse to render, such as property access or function call expressions.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported feature: %s", e.Feature)
}

// InternalError reports a broken generator invariant. Seeing one is a bug.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error: %s", e.Message)
}
