// Package errors provides the classified error primitives used across mdbear.
//
// Every failure that crosses a component boundary is a ClassifiedError: a message,
// an optional cause, a category (config, filesystem, validation, template, ...),
// a severity and a free-form context map. The build pipeline decides what is fatal
// by category and severity; the CLI maps categories to exit codes.
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "cannot read document").
//		WithContext("path", path).
//		Build()
package errors
