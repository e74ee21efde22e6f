package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"taskdesk/internal/query"
	"taskdesk/internal/service"
	"taskdesk/internal/taskquery"
)

// TaskRef is a parsed task reference: a row number or a task ID.
type TaskRef struct {
	Num int    // 1-based row number in list order, 0 if ID is set
	ID  string // task UUID
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ErrOutOfRange is returned for a row number past the end of the list.
var ErrOutOfRange = errors.New("task number out of range")

// ParseTaskRef parses a task reference from args.
//
//  1. no args -> ErrTaskRefRequired
//  2. all digits -> row number, must be >= 1
//  3. a UUID -> task ID
//  4. anything else -> invalid task reference
//
// Extra args are rejected.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	arg := strings.TrimSpace(args[0])
	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("%w: %d", ErrOutOfRange, num)
		}
		return TaskRef{Num: num}, nil
	}
	if id, err := uuid.Parse(arg); err == nil {
		return TaskRef{ID: id.String()}, nil
	}
	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolveTask loads the task a reference points at, through the query cache.
// Row numbers index the first page of the list, the same page `list` shows.
func resolveTask(ctx context.Context, env *Env, ref TaskRef, pageSize int) (service.Task, error) {
	if ref.ID != "" {
		e := taskquery.FetchTask(ctx, env.Query, env.Svc, ref.ID)
		if e.Err != nil {
			return service.Task{}, e.Err
		}
		task, _ := query.Data[service.Task](e)
		return task, nil
	}

	e := taskquery.FetchList(ctx, env.Query, env.Svc, pageSize)
	if e.Status == query.StatusError {
		return service.Task{}, e.Err
	}
	page, _ := query.Data[service.TaskPage](e)
	if ref.Num > len(page.Data) {
		return service.Task{}, fmt.Errorf("%w: %d", ErrOutOfRange, ref.Num)
	}
	return page.Data[ref.Num-1], nil
}
