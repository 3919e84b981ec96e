package errs

import (
	"errors"
	"fmt"

	"synthesis-tracker/pkg/response"
)

// 任务状态机错误
var ErrInvalidTransition = response.NewError("synthesis-tracker.invalid_transition", "invalid stage transition")
var ErrAlreadyTerminal = response.NewError("synthesis-tracker.already_terminal", "job already reached a terminal stage")
var ErrJobNotFound = response.NewError("synthesis-tracker.job_not_found", "job not found")

// 语料库错误
var ErrInvalidEntry = response.NewError("synthesis-tracker.invalid_entry", "corpus entry fails validation")

// 溯源记录错误
var ErrDuplicateRun = response.NewError("synthesis-tracker.duplicate_run", "run id already recorded")
var ErrUnknownRun = response.NewError("synthesis-tracker.unknown_run", "run id has no recorded metadata")
var ErrUnknownSourceEntry = response.NewError("synthesis-tracker.unknown_source_entry", "source corpus entry does not exist")

var ErrRecordNotFound = errors.New("record not found")

var errorInvalidParamFmt = "invalid request params: %s %v"
var errorRecordNotFoundFmt = "%s not found by %s"
var errorMissingParamFmt = "missing required param: %s"

func NewInvalidParamErr(name string, value interface{}) error {
	return fmt.Errorf(errorInvalidParamFmt, name, value)
}

func NewRecordNotFoundErr(name string, value interface{}) error {
	return fmt.Errorf(errorRecordNotFoundFmt, name, value)
}

func NewMissingParamError(name string) error {
	return fmt.Errorf(errorMissingParamFmt, name)
}
