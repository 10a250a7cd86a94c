package operation

import "time"

// NowFunc is injectable clock function for testability.
type NowFunc func() time.Time

// Journal is the ordered, in-memory list of steps of one run.
// It is used from a single goroutine.
type Journal struct {
	ops []*Operation
	now NowFunc
}

func NewJournal(now NowFunc) *Journal {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Journal{now: now}
}

// Begin appends a pending step and returns it for later completion.
func (j *Journal) Begin(kind Kind, detail string) (*Operation, error) {
	op, err := NewPending(len(j.ops)+1, kind, detail, j.now())
	if err != nil {
		return nil, err
	}
	j.ops = append(j.ops, &op)
	return &op, nil
}

func (j *Journal) Succeed(op *Operation, txSig string) {
	op.MarkSucceeded(txSig, j.now())
}

func (j *Journal) Fail(op *Operation, errType ErrorType, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	op.MarkFailed(errType, msg, j.now())
}

// Operations returns a snapshot of the recorded steps.
func (j *Journal) Operations() []Operation {
	out := make([]Operation, 0, len(j.ops))
	for _, op := range j.ops {
		out = append(out, *op)
	}
	return out
}

// LastFailure returns the failed step, if any.
func (j *Journal) LastFailure() (Operation, bool) {
	for i := len(j.ops) - 1; i >= 0; i-- {
		if j.ops[i].Status == StatusFailed {
			return *j.ops[i], true
		}
	}
	return Operation{}, false
}
