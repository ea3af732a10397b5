package converter

import (
	"errors"
	"fmt"
)

// Error kinds, matchable with errors.Is on a *ConversionError.
var (
	// ErrInput means the input path is missing, unreadable or not an EPUB file.
	ErrInput = errors.New("invalid input")
	// ErrParse means the archive is not a readable EPUB package.
	ErrParse = errors.New("cannot parse EPUB")
	// ErrWrite means the vault folder could not be written.
	ErrWrite = errors.New("cannot write output")
)

// Stage names the pipeline step a ConversionError comes from.
type Stage string

const (
	StageRead  Stage = "read"
	StageBuild Stage = "build"
	StageWrite Stage = "write"
)

// ConversionError is returned by Pipeline.Convert for a failed input.
type ConversionError struct {
	Input string
	Stage Stage
	Kind  error // one of ErrInput, ErrParse, ErrWrite
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Input, e.Stage, e.Kind, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func fail(input string, stage Stage, kind, err error) *ConversionError {
	return &ConversionError{Input: input, Stage: stage, Kind: kind, Err: err}
}
