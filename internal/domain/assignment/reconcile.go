package assignment

import (
	"context"
	"time"
)

type OpKind string

const (
	OpUpsert OpKind = "upsert"
	OpRemove OpKind = "remove"
)

type Operation struct {
	Kind OpKind `json:"op"`
	Key
	IsPrimary bool `json:"is_primary,omitempty"`
}

// Plan is the ordered operation list: every upsert, then every removal.
type Plan struct {
	Upserts []Operation `json:"upserts"`
	Removes []Operation `json:"removes"`
}

// Operations returns the plan in execution order.
func (p Plan) Operations() []Operation {
	out := make([]Operation, 0, len(p.Upserts)+len(p.Removes))
	out = append(out, p.Upserts...)
	return append(out, p.Removes...)
}

func (p Plan) Len() int {
	return len(p.Upserts) + len(p.Removes)
}

// Reconcile computes the operations that move current to desired. Each
// desired entry yields an upsert even when it is already persisted with the
// same flag; only membership is diffed, and only for removals. Primary
// exclusivity is a property of DesiredSet and is not rechecked here.
func Reconcile(current []Key, desired DesiredSet) Plan {
	var plan Plan
	for _, e := range desired.entries {
		plan.Upserts = append(plan.Upserts, Operation{Kind: OpUpsert, Key: e.Key, IsPrimary: e.IsPrimary})
	}
	seen := make(map[Key]struct{}, len(current))
	for _, k := range current {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if desired.Has(k) {
			continue
		}
		plan.Removes = append(plan.Removes, Operation{Kind: OpRemove, Key: k})
	}
	return plan
}

// Writer is the single-edge write API of the assignment collaborator.
type Writer interface {
	Upsert(ctx context.Context, a Assignment) error
	Remove(ctx context.Context, key Key) error
}

// Outcome is the independent result of one operation.
type Outcome struct {
	Operation
	Err        error     `json:"-"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Observer is told about every outcome as it lands.
type Observer func(Outcome)

// Execute runs the plan sequentially: all upserts, then all removals. A
// failure never stops later operations and nothing is rolled back; callers
// get one outcome per operation and no aggregate verdict.
func Execute(ctx context.Context, w Writer, plan Plan, observe Observer) []Outcome {
	outcomes := make([]Outcome, 0, plan.Len())
	for _, op := range plan.Operations() {
		var err error
		switch op.Kind {
		case OpUpsert:
			err = w.Upsert(ctx, Assignment{Key: op.Key, IsPrimary: op.IsPrimary})
		case OpRemove:
			err = w.Remove(ctx, op.Key)
		}
		out := Outcome{Operation: op, Err: err, FinishedAt: time.Now().UTC()}
		if err != nil {
			out.Error = err.Error()
		}
		outcomes = append(outcomes, out)
		if observe != nil {
			observe(out)
		}
	}
	return outcomes
}
