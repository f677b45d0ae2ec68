package model

// CompletionUpdate is the outcome of a completion-cycle transition:
// the status and remaining counter a task should move to.
type CompletionUpdate struct {
	Status    TaskStatus
	Remaining int
}

// NextCompletion computes the transition for a "mark complete" action.
//
// Tasks with a single required completion behave like plain boolean
// tasks and go straight to done. With a multi-completion cycle a
// non-volunteer task decrements its remaining counter and finishes
// only when it hits zero. A volunteer task never decrements here: its
// completions are counted by the approval workflow, so the action only
// moves it to in_progress until approvals drain the counter.
func NextCompletion(t Task) CompletionUpdate {
	remaining := t.RemainingCompletions
	if remaining < 0 || remaining > t.RequiredCompletions {
		remaining = t.RequiredCompletions
	}

	if t.RequiredCompletions <= 1 {
		return CompletionUpdate{Status: TaskStatusDone, Remaining: 0}
	}

	if t.IsVolunteerTask {
		if remaining == 0 {
			return CompletionUpdate{Status: TaskStatusDone, Remaining: 0}
		}
		return CompletionUpdate{Status: TaskStatusInProgress, Remaining: remaining}
	}

	if remaining > 0 {
		remaining--
	}
	status := TaskStatusInProgress
	if remaining == 0 {
		status = TaskStatusDone
	}
	return CompletionUpdate{Status: status, Remaining: remaining}
}

// ApproveCompletion is the external-approval decrement path for
// volunteer tasks. It is the only way a volunteer task's remaining
// counter goes down.
func ApproveCompletion(t Task) CompletionUpdate {
	remaining := t.RemainingCompletions
	if remaining > 0 {
		remaining--
	}
	status := TaskStatusInProgress
	if remaining == 0 {
		status = TaskStatusDone
	}
	return CompletionUpdate{Status: status, Remaining: remaining}
}

// ResetCompletions applies an "update completion count" operation:
// the cycle restarts with the new required value, and a done task with
// work left over reopens.
func ResetCompletions(t Task, required int) (CompletionUpdate, error) {
	if required < 1 {
		return CompletionUpdate{}, ErrInvalidCompletionCount
	}
	status := t.Status
	if status == TaskStatusDone && required > 0 {
		status = TaskStatusInProgress
	}
	return CompletionUpdate{Status: status, Remaining: required}, nil
}

// RepairResult is the explicit diff produced by Repair. Callers decide
// whether and when to persist it.
type RepairResult struct {
	Status    TaskStatus
	Remaining int
	Changed   bool
}

// Repair normalizes inconsistent stored completion state on read:
// out-of-range counters are clamped, and a done status with completions
// still remaining is corrected back to in_progress. Volunteer tasks
// keep their relaxed accounting (the approval flow owns their counter),
// so only the counter clamp applies to them.
func Repair(t Task) RepairResult {
	res := RepairResult{Status: t.Status, Remaining: t.RemainingCompletions}

	if res.Remaining < 0 || res.Remaining > t.RequiredCompletions {
		res.Remaining = t.RequiredCompletions
		res.Changed = true
	}

	if !t.IsVolunteerTask &&
		t.Status == TaskStatusDone && t.RequiredCompletions > 1 && res.Remaining > 0 {
		res.Status = TaskStatusInProgress
		res.Changed = true
	}

	return res
}
