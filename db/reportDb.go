package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"patientsim/models"

	_ "github.com/lib/pq"
)

// ReportRepository persists the aggregate outcome of finished interviews.
// Transcripts and persona text are never stored.
type ReportRepository interface {
	SaveReport(report *models.Report) error
	GetReportByID(id string) (*models.Report, error)
	ListReports() ([]*models.Report, error)
	Close() error
}

const createReportsTable = `
	CREATE SCHEMA IF NOT EXISTS patientsim;
	CREATE TABLE IF NOT EXISTS patientsim.reports (
		id                 UUID PRIMARY KEY,
		session_id         UUID NOT NULL,
		case_id            TEXT NOT NULL,
		ground_truth       TEXT NOT NULL,
		total_symptoms     INTEGER NOT NULL,
		explicit_count     INTEGER NOT NULL,
		volunteered_count  INTEGER NOT NULL,
		missed_count       INTEGER NOT NULL,
		coverage           DOUBLE PRECISION NOT NULL,
		symptoms           JSONB NOT NULL,
		verdict            JSONB NOT NULL,
		differential       JSONB,
		turns              INTEGER NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL
	)`

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(databaseURL string) (*PostgresReportRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(createReportsTable); err != nil {
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}

	return &PostgresReportRepository{db: db}, nil
}

// reportSymptoms groups the per-category symptom lists into one JSON column.
type reportSymptoms struct {
	ExplicitlyCovered []string `json:"explicitly_covered"`
	Volunteered       []string `json:"volunteered"`
	Missed            []string `json:"missed"`
	FollowUps         []string `json:"follow_ups"`
}

func (r *PostgresReportRepository) SaveReport(report *models.Report) error {
	symptomsJSON, verdictJSON, differentialJSON, err := encodeReportColumns(report)
	if err != nil {
		return err
	}

	var differential any
	if differentialJSON != nil {
		differential = differentialJSON
	}

	query := `
		INSERT INTO patientsim.reports (id, session_id, case_id, ground_truth, total_symptoms,
			explicit_count, volunteered_count, missed_count, coverage, symptoms, verdict,
			differential, turns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.Exec(query, report.ID, report.SessionID, report.CaseID, report.GroundTruth,
		report.TotalSymptoms, report.ExplicitCount, report.VolunteeredCount, report.MissedCount,
		report.Coverage, symptomsJSON, verdictJSON, differential, report.Turns, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

const selectReports = `
	SELECT id, session_id, case_id, ground_truth, total_symptoms, explicit_count,
		volunteered_count, missed_count, coverage, symptoms, verdict, differential,
		turns, created_at
	FROM patientsim.reports`

func (r *PostgresReportRepository) GetReportByID(id string) (*models.Report, error) {
	row := r.db.QueryRow(selectReports+` WHERE id = $1`, id)

	report, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

func (r *PostgresReportRepository) ListReports() ([]*models.Report, error) {
	rows, err := r.db.Query(selectReports + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

func (r *PostgresReportRepository) Close() error {
	return r.db.Close()
}

// encodeReportColumns builds the JSONB values for the symptoms, verdict and
// differential columns. An empty differential is stored as NULL.
func encodeReportColumns(report *models.Report) (symptoms, verdict, differential []byte, err error) {
	symptoms, err = json.Marshal(reportSymptoms{
		ExplicitlyCovered: report.ExplicitlyCovered,
		Volunteered:       report.Volunteered,
		Missed:            report.Missed,
		FollowUps:         report.FollowUps,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal symptoms: %w", err)
	}

	verdict, err = json.Marshal(report.Verdict)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal verdict: %w", err)
	}

	if len(report.Differential) > 0 {
		if differential, err = json.Marshal(report.Differential); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal differential: %w", err)
		}
	}

	return symptoms, verdict, differential, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	report := &models.Report{}
	var symptomsJSON, verdictJSON, differentialJSON []byte

	err := row.Scan(&report.ID, &report.SessionID, &report.CaseID, &report.GroundTruth,
		&report.TotalSymptoms, &report.ExplicitCount, &report.VolunteeredCount, &report.MissedCount,
		&report.Coverage, &symptomsJSON, &verdictJSON, &differentialJSON, &report.Turns, &report.CreatedAt)
	if err != nil {
		return nil, err
	}

	var symptoms reportSymptoms
	if err := json.Unmarshal(symptomsJSON, &symptoms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symptoms: %w", err)
	}
	report.ExplicitlyCovered = symptoms.ExplicitlyCovered
	report.Volunteered = symptoms.Volunteered
	report.Missed = symptoms.Missed
	report.FollowUps = symptoms.FollowUps

	if err := json.Unmarshal(verdictJSON, &report.Verdict); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}

	if len(differentialJSON) > 0 {
		if err := json.Unmarshal(differentialJSON, &report.Differential); err != nil {
			return nil, fmt.Errorf("failed to unmarshal differential: %w", err)
		}
	}

	return report, nil
}
