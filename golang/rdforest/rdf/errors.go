package rdf

import "github.com/pkg/errors"

var (
	//ErrInvalidConfig is returned for parameters that cannot produce a forest:
	//no classes, no data, no trees or no tests per level.
	ErrInvalidConfig = errors.New("invalid configuration")
	//ErrOutOfRange is returned when a node lies outside of the arena allocated for a tree.
	ErrOutOfRange = errors.New("node index out of range")
	//ErrFormat is returned when a model document does not have the expected structure.
	ErrFormat = errors.New("malformed model document")
	//ErrEmptyStatistics is returned by a prediction over statistics that counted nothing.
	ErrEmptyStatistics = errors.New("prediction from empty statistics")
)

func invalidConfig(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}

func formatError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, format, args...)
}
