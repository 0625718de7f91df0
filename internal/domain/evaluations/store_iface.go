package evaluations

import "context"

type StoreAPI interface {
	// Save persists a submission atomically under the (employee, round)
	// advisory lock and reports whether a new evaluation was created.
	Save(ctx context.Context, rec Record) (int64, bool, error)
	Latest(ctx context.Context, employeeID int64, roundCode string) (Evaluation, error)
	Get(ctx context.Context, id int64) (Evaluation, error)
	List(ctx context.Context, filter ListFilter) ([]Evaluation, error)
	Responses(ctx context.Context, evaluationID int64) ([]Response, error)
	Goals(ctx context.Context, evaluationID int64) ([]Goal, error)
	IDsForRound(ctx context.Context, roundCode string) ([]int64, error)
	Rescore(ctx context.Context, id int64, fn RescoreFunc) (bool, error)
}
