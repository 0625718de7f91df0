package db

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"hrkey/internal/domain/scoring"
)

// ReferenceData is the YAML document that seeds the scoring reference
// tables. Every section is optional.
type ReferenceData struct {
	CurrentPeriod string               `yaml:"current_period"`
	ActiveRound   string               `yaml:"active_round"`
	Weights       map[string]float64   `yaml:"weights"`
	Criteria      []ReferenceCriterion `yaml:"criteria"`
	SalaryGrades  []ReferenceGrade     `yaml:"salary_grades"`
	MeritMatrix   []ReferenceBand      `yaml:"merit_matrix"`
}

type ReferenceCriterion struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Dimension   string `yaml:"dimension"`
	Type        string `yaml:"type"`
}

type ReferenceGrade struct {
	Year      int     `yaml:"year"`
	Region    string  `yaml:"region"`
	Group     int     `yaml:"group"`
	Median80  float64 `yaml:"median_80"`
	Median100 float64 `yaml:"median_100"`
	Median120 float64 `yaml:"median_120"`
}

type ReferenceBand struct {
	Year      int        `yaml:"year"`
	Region    string     `yaml:"region"`
	BandOrder int        `yaml:"band_order"`
	PctMin    float64    `yaml:"pct_min"`
	PctMax    float64    `yaml:"pct_max"`
	Increase  [5]float64 `yaml:"increase"`
}

func LoadReferenceData(path string) (ReferenceData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ReferenceData{}, err
	}
	return ParseReferenceData(raw)
}

func ParseReferenceData(raw []byte) (ReferenceData, error) {
	var data ReferenceData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return ReferenceData{}, fmt.Errorf("parse reference data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return ReferenceData{}, err
	}
	return data, nil
}

func (d ReferenceData) Validate() error {
	if p := strings.TrimSpace(d.CurrentPeriod); p != "" && !sixDigits(p) {
		return fmt.Errorf("current_period %q must use MMYYYY", p)
	}
	for name := range d.Weights {
		if _, ok := scoring.ParseDimension(name); !ok {
			return fmt.Errorf("unknown weight dimension %q", name)
		}
	}
	for i, c := range d.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("criteria[%d]: name is required", i)
		}
		if _, ok := scoring.ParseCriterionDimension(c.Dimension); !ok {
			return fmt.Errorf("criteria[%d]: invalid dimension %q", i, c.Dimension)
		}
		if _, ok := scoring.ParseCriterionType(c.Type); !ok {
			return fmt.Errorf("criteria[%d]: invalid type %q", i, c.Type)
		}
	}
	for i, g := range d.SalaryGrades {
		if g.Year <= 0 || strings.TrimSpace(g.Region) == "" || g.Group <= 0 {
			return fmt.Errorf("salary_grades[%d]: year, region and group are required", i)
		}
	}
	for i, b := range d.MeritMatrix {
		if b.Year <= 0 || strings.TrimSpace(b.Region) == "" || b.BandOrder <= 0 {
			return fmt.Errorf("merit_matrix[%d]: year, region and band_order are required", i)
		}
		if b.PctMax < b.PctMin {
			return fmt.Errorf("merit_matrix[%d]: pct_max below pct_min", i)
		}
	}
	return nil
}

// ApplyReferenceData upserts the document in one transaction. Criteria are
// matched by name so reapplying the same file is a no-op.
func ApplyReferenceData(ctx context.Context, pool *pgxpool.Pool, data ReferenceData) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := applyReference(ctx, tx, data); err != nil {
		rollback(ctx, tx)
		return err
	}
	return tx.Commit(ctx)
}

func applyReference(ctx context.Context, tx pgx.Tx, data ReferenceData) error {
	if p := strings.TrimSpace(data.CurrentPeriod); p != "" {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_current_period (id, period) VALUES (1, $1)
      ON CONFLICT (id) DO NOTHING
    `, p); err != nil {
			return fmt.Errorf("seed period: %w", err)
		}
	}
	if code := strings.TrimSpace(data.ActiveRound); code != "" {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_rounds (code, status) VALUES ($1, 'OPEN')
      ON CONFLICT (code) DO NOTHING
    `, code); err != nil {
			return fmt.Errorf("seed round: %w", err)
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO system_config (config_key, config_value, description)
      VALUES ('active_round_code', $1, $2)
      ON CONFLICT (config_key) DO NOTHING
    `, code, "Active round: "+code); err != nil {
			return fmt.Errorf("seed active round: %w", err)
		}
	}
	for name, weight := range data.Weights {
		dim, _ := scoring.ParseDimension(name)
		if _, err := tx.Exec(ctx, `
      INSERT INTO dimension_weights (dimension, weight) VALUES ($1, $2)
      ON CONFLICT (dimension) DO UPDATE SET weight = EXCLUDED.weight
    `, dim.String(), weight); err != nil {
			return fmt.Errorf("seed weight %s: %w", name, err)
		}
	}
	for _, c := range data.Criteria {
		dim, _ := scoring.ParseCriterionDimension(c.Dimension)
		typ, _ := scoring.ParseCriterionType(c.Type)
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_criteria (name, description, dimension, type)
      SELECT $1::text, $2::text, $3::text, $4::text
      WHERE NOT EXISTS (SELECT 1 FROM evaluation_criteria WHERE name = $1)
    `, strings.TrimSpace(c.Name), c.Description, dim.String(), typ.String()); err != nil {
			return fmt.Errorf("seed criterion %s: %w", c.Name, err)
		}
	}
	for _, g := range data.SalaryGrades {
		if _, err := tx.Exec(ctx, `
      INSERT INTO salary_grades (year, region, group_no, median_80, median_100, median_120)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (year, region, group_no)
      DO UPDATE SET median_80 = EXCLUDED.median_80, median_100 = EXCLUDED.median_100, median_120 = EXCLUDED.median_120
    `, g.Year, strings.ToUpper(strings.TrimSpace(g.Region)), g.Group, g.Median80, g.Median100, g.Median120); err != nil {
			return fmt.Errorf("seed salary grade: %w", err)
		}
	}
	for _, b := range data.MeritMatrix {
		if _, err := tx.Exec(ctx, `
      INSERT INTO merit_matrix (year, region, band_order, pct_med_min, pct_med_max, inc_rating1, inc_rating2, inc_rating3, inc_rating4, inc_rating5)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
      ON CONFLICT (year, region, band_order)
      DO UPDATE SET pct_med_min = EXCLUDED.pct_med_min, pct_med_max = EXCLUDED.pct_med_max,
        inc_rating1 = EXCLUDED.inc_rating1, inc_rating2 = EXCLUDED.inc_rating2, inc_rating3 = EXCLUDED.inc_rating3,
        inc_rating4 = EXCLUDED.inc_rating4, inc_rating5 = EXCLUDED.inc_rating5
    `, b.Year, strings.ToUpper(strings.TrimSpace(b.Region)), b.BandOrder, b.PctMin, b.PctMax,
			b.Increase[0], b.Increase[1], b.Increase[2], b.Increase[3], b.Increase[4]); err != nil {
			return fmt.Errorf("seed merit band: %w", err)
		}
	}
	return nil
}

func sixDigits(p string) bool {
	if len(p) != 6 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
