package structs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voidshard/torque/pkg/errors"
)

const instructionSep = ":"

// Instruction is the message passed through the work queue telling a worker
// to attempt delivery of a task at a given retry generation.
type Instruction struct {
	TaskID     int64
	RetryCount int64
}

// String encodes the instruction in its wire format "{task_id}:{retry_count}"
func (i Instruction) String() string {
	return fmt.Sprintf("%d%s%d", i.TaskID, instructionSep, i.RetryCount)
}

// InstructionFor returns the instruction that will attempt the task at its
// current retry generation.
func InstructionFor(t *Task) Instruction {
	return Instruction{TaskID: t.ID, RetryCount: t.RetryCount}
}

// ParseInstruction decodes a wire format instruction.
func ParseInstruction(in string) (Instruction, error) {
	parts := strings.Split(strings.TrimSpace(in), instructionSep)
	if len(parts) != 2 {
		return Instruction{}, fmt.Errorf("%w instruction %q", errors.ErrInvalidArg, in)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("%w task id in %q: %v", errors.ErrInvalidArg, in, err)
	}
	retry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("%w retry count in %q: %v", errors.ErrInvalidArg, in, err)
	}
	if id < 1 || retry < 0 {
		return Instruction{}, fmt.Errorf("%w instruction %q out of range", errors.ErrInvalidArg, in)
	}
	return Instruction{TaskID: id, RetryCount: retry}, nil
}
