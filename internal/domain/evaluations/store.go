package evaluations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"hrkey/internal/domain/scoring"
	"hrkey/internal/platform/querier"
)

const evaluationColumns = `
    id, employee_id, evaluator_id, evaluation_year, round_code, evaluation_date, dimension_weights,
    institucional_avg::float8, funcional_avg::float8, individual_avg::float8, metas_avg::float8,
    final_rating::float8, performance_rating::float8, potential_rating::float8, nine_box_position,
    created_at, updated_at`

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var ev Evaluation
	var weights []byte
	err := row.Scan(&ev.ID, &ev.EmployeeID, &ev.EvaluatorID, &ev.EvaluationYear, &ev.RoundCode, &ev.EvaluationDate, &weights,
		&ev.InstitucionalAvg, &ev.FuncionalAvg, &ev.IndividualAvg, &ev.MetasAvg,
		&ev.FinalRating, &ev.PerformanceRating, &ev.PotentialRating, &ev.NineBoxPosition,
		&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return Evaluation{}, err
	}
	ev.DimensionWeights = decodeWeights(weights)
	return ev, nil
}

// decodeWeights tolerates legacy rows holding strings or nulls.
func decodeWeights(raw []byte) map[string]float64 {
	out := map[string]float64{}
	if len(raw) == 0 {
		return out
	}
	var loose map[string]LooseNumber
	if err := json.Unmarshal(raw, &loose); err != nil {
		slog.Warn("evaluation weights unreadable", "err", err)
		return out
	}
	for k, v := range loose {
		if f, ok := v.Value(); ok {
			out[k] = f
		}
	}
	return out
}

// lockPair takes a transaction lock on one (employee, round) pair. The
// employee id seeds a 64-bit hash of the key.
func lockPair(ctx context.Context, tx pgx.Tx, employeeID int64, key string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($2::text, $1::bigint))`, employeeID, key)
	return err
}

func (s *Store) Save(ctx context.Context, rec Record) (int64, bool, error) {
	weights, err := json.Marshal(rec.Weights)
	if err != nil {
		return 0, false, err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockPair(ctx, tx, rec.EmployeeID, rec.LockKey()); err != nil {
		return 0, false, fmt.Errorf("lock evaluation: %w", err)
	}

	id, err := findExisting(ctx, tx, rec)
	if err != nil {
		return 0, false, err
	}
	created := id == 0

	var roundCode any
	if rec.RoundCode != "" {
		roundCode = rec.RoundCode
	}
	sc := rec.Scores
	if created {
		err = tx.QueryRow(ctx, `
      INSERT INTO evaluations (employee_id, evaluator_id, evaluation_year, round_code, dimension_weights,
        institucional_avg, funcional_avg, individual_avg, metas_avg, final_rating,
        performance_rating, potential_rating, nine_box_position)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
      RETURNING id
    `, rec.EmployeeID, rec.EvaluatorID, rec.EvaluationYear, roundCode, weights,
			sc.InstitucionalAvg, sc.FuncionalAvg, sc.IndividualAvg, sc.MetasAvg, sc.FinalRating,
			sc.PerformanceRating, sc.PotentialRating, sc.NineBoxPosition).Scan(&id)
	} else {
		_, err = tx.Exec(ctx, `
      UPDATE evaluations
      SET evaluator_id = $2, evaluation_year = $3, round_code = $4, dimension_weights = $5,
        institucional_avg = $6, funcional_avg = $7, individual_avg = $8, metas_avg = $9, final_rating = $10,
        performance_rating = $11, potential_rating = $12, nine_box_position = $13, updated_at = now()
      WHERE id = $1
    `, id, rec.EvaluatorID, rec.EvaluationYear, roundCode, weights,
			sc.InstitucionalAvg, sc.FuncionalAvg, sc.IndividualAvg, sc.MetasAvg, sc.FinalRating,
			sc.PerformanceRating, sc.PotentialRating, sc.NineBoxPosition)
	}
	if err != nil {
		return 0, false, fmt.Errorf("save evaluation: %w", err)
	}

	if err := replaceResponses(ctx, tx, id, rec.Responses); err != nil {
		return 0, false, err
	}
	if err := replaceGoals(ctx, tx, id, rec); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return id, created, nil
}

// findExisting returns 0 when the submission creates a new evaluation.
func findExisting(ctx context.Context, tx pgx.Tx, rec Record) (int64, error) {
	var id int64
	var err error
	switch {
	case rec.TargetID != nil:
		err = tx.QueryRow(ctx, `SELECT id FROM evaluations WHERE id = $1 AND employee_id = $2`, *rec.TargetID, rec.EmployeeID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
	case rec.RoundCode != "":
		err = tx.QueryRow(ctx, `
      SELECT id FROM evaluations
      WHERE employee_id = $1 AND round_code = $2
      ORDER BY evaluation_date DESC, id DESC
      LIMIT 1
    `, rec.EmployeeID, rec.RoundCode).Scan(&id)
	default:
		err = tx.QueryRow(ctx, `
      SELECT id FROM evaluations
      WHERE employee_id = $1 AND evaluation_year = $2
      ORDER BY evaluation_date DESC, id DESC
      LIMIT 1
    `, rec.EmployeeID, rec.EvaluationYear).Scan(&id)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find evaluation: %w", err)
	}
	return id, nil
}

func replaceResponses(ctx context.Context, tx pgx.Tx, evaluationID int64, responses []Response) error {
	if _, err := tx.Exec(ctx, `DELETE FROM evaluation_responses WHERE evaluation_id = $1`, evaluationID); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	if len(responses) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, []any{evaluationID, r.CriteriaID, int32(r.Rating)})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"evaluation_responses"},
		[]string{"evaluation_id", "criteria_id", "rating"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert responses: %w", err)
	}
	return nil
}

func replaceGoals(ctx context.Context, tx pgx.Tx, evaluationID int64, rec Record) error {
	if _, err := tx.Exec(ctx, `DELETE FROM individual_goals WHERE evaluation_id = $1`, evaluationID); err != nil {
		return fmt.Errorf("delete goals: %w", err)
	}
	for _, g := range rec.Goals {
		var rating any
		if g.Rating != nil {
			rating = *g.Rating
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO individual_goals (employee_id, evaluation_id, round_code, goal_index, goal_name, goal_description,
        weight, rating, rating_1_criteria, rating_2_criteria, rating_3_criteria, rating_4_criteria, rating_5_criteria)
      VALUES ($1,$2,NULLIF($3, ''),$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    `, rec.EmployeeID, evaluationID, rec.RoundCode, g.Index, g.Name, g.Description,
			g.Weight, rating, g.Rating1Criteria, g.Rating2Criteria, g.Rating3Criteria, g.Rating4Criteria, g.Rating5Criteria); err != nil {
			return fmt.Errorf("insert goal %d: %w", g.Index, err)
		}
	}
	return nil
}

func (s *Store) Latest(ctx context.Context, employeeID int64, roundCode string) (Evaluation, error) {
	query := "SELECT" + evaluationColumns + " FROM evaluations WHERE employee_id = $1"
	args := []any{employeeID}
	if roundCode != "" {
		query += " AND round_code = $2"
		args = append(args, roundCode)
	}
	query += " ORDER BY evaluation_date DESC, created_at DESC LIMIT 1"
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

func (s *Store) Get(ctx context.Context, id int64) (Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, "SELECT"+evaluationColumns+" FROM evaluations WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	query := "SELECT" + evaluationColumns + " FROM evaluations WHERE 1=1"
	var args []any
	if filter.RoundCode != "" {
		args = append(args, filter.RoundCode)
		query += fmt.Sprintf(" AND round_code = $%d", len(args))
	}
	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.ManagerCode != "" {
		args = append(args, filter.ManagerCode)
		query += fmt.Sprintf(" AND employee_id IN (SELECT id FROM employees WHERE manager_code = $%d)", len(args))
	}
	query += " ORDER BY evaluation_date DESC, id DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) Responses(ctx context.Context, evaluationID int64) ([]Response, error) {
	return loadResponses(ctx, s.DB, evaluationID)
}

func loadResponses(ctx context.Context, db querier.Querier, evaluationID int64) ([]Response, error) {
	rows, err := db.Query(ctx, `
    SELECT evaluation_id, criteria_id, rating
    FROM evaluation_responses
    WHERE evaluation_id = $1
    ORDER BY criteria_id
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Response{}
	for rows.Next() {
		var r Response
		if err := rows.Scan(&r.EvaluationID, &r.CriteriaID, &r.Rating); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Goals(ctx context.Context, evaluationID int64) ([]Goal, error) {
	return loadGoals(ctx, s.DB, evaluationID)
}

func loadGoals(ctx context.Context, db querier.Querier, evaluationID int64) ([]Goal, error) {
	rows, err := db.Query(ctx, `
    SELECT id, evaluation_id, COALESCE(round_code, ''), goal_index, goal_name, goal_description,
      COALESCE(weight, 0)::float8, rating,
      rating_1_criteria, rating_2_criteria, rating_3_criteria, rating_4_criteria, rating_5_criteria
    FROM individual_goals
    WHERE evaluation_id = $1
    ORDER BY id
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Goal{}
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.EvaluationID, &g.RoundCode, &g.Index, &g.Name, &g.Description,
			&g.Weight, &g.Rating,
			&g.Rating1Criteria, &g.Rating2Criteria, &g.Rating3Criteria, &g.Rating4Criteria, &g.Rating5Criteria); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// IDsForRound lists evaluation ids of a round; an empty code selects
// evaluations with no round.
func (s *Store) IDsForRound(ctx context.Context, roundCode string) ([]int64, error) {
	query := `SELECT id FROM evaluations WHERE round_code = $1 ORDER BY id`
	args := []any{roundCode}
	if roundCode == "" {
		query = `SELECT id FROM evaluations WHERE round_code IS NULL ORDER BY id`
		args = nil
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadEvaluation(ctx context.Context, tx pgx.Tx, id int64, suffix string) (Evaluation, error) {
	ev, err := scanEvaluation(tx.QueryRow(ctx, "SELECT"+evaluationColumns+" FROM evaluations WHERE id = $1"+suffix, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

// Rescore recomputes one evaluation under the same lock a submission takes
// and reports whether any derived field changed.
func (s *Store) Rescore(ctx context.Context, id int64, fn RescoreFunc) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ev, err := loadEvaluation(ctx, tx, id, "")
	if err != nil {
		return false, err
	}
	key := Record{EvaluationYear: ev.EvaluationYear}
	if ev.RoundCode != nil {
		key.RoundCode = *ev.RoundCode
	}
	if err := lockPair(ctx, tx, ev.EmployeeID, key.LockKey()); err != nil {
		return false, fmt.Errorf("lock evaluation: %w", err)
	}
	// A submission may have committed while we waited for the lock.
	if ev, err = loadEvaluation(ctx, tx, id, " FOR UPDATE"); err != nil {
		return false, err
	}

	responses, err := loadResponses(ctx, tx, id)
	if err != nil {
		return false, err
	}
	goals, err := loadGoals(ctx, tx, id)
	if err != nil {
		return false, err
	}
	sc := fn(ev.DimensionWeights, responses, goals)
	if sameScores(ev, sc) {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
    UPDATE evaluations
    SET institucional_avg = $2, funcional_avg = $3, individual_avg = $4, metas_avg = $5, final_rating = $6,
      performance_rating = $7, potential_rating = $8, nine_box_position = $9, updated_at = now()
    WHERE id = $1
  `, id, sc.InstitucionalAvg, sc.FuncionalAvg, sc.IndividualAvg, sc.MetasAvg, sc.FinalRating,
		sc.PerformanceRating, sc.PotentialRating, sc.NineBoxPosition); err != nil {
		return false, fmt.Errorf("update scores: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func sameScores(ev Evaluation, sc scoring.Scores) bool {
	eq := func(p *float64, v float64) bool { return p != nil && *p == v }
	return eq(ev.InstitucionalAvg, sc.InstitucionalAvg) &&
		eq(ev.FuncionalAvg, sc.FuncionalAvg) &&
		eq(ev.IndividualAvg, sc.IndividualAvg) &&
		eq(ev.MetasAvg, sc.MetasAvg) &&
		eq(ev.FinalRating, sc.FinalRating) &&
		eq(ev.PerformanceRating, sc.PerformanceRating) &&
		eq(ev.PotentialRating, sc.PotentialRating) &&
		ev.NineBoxPosition != nil && *ev.NineBoxPosition == sc.NineBoxPosition
}
