package runner

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrEmptyPipeline = errors.New("empty pipeline")
)

// TaskError attributes a failure to the innermost task that produced it.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("task %q: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

func unknownf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnknownTask, fmt.Sprintf(format, args...))
}
