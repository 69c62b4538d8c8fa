package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo stores resumes in Postgres. Work experiences and educations live in
// child tables ordered by position; skills are a JSONB array.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, description, photo_key, color_hex, border_style, summary,
  first_name, last_name, job_title, city, country, phone, email, skills, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, res Resume, quota int) (err error) {
	skills, err := encodeSkills(res.Skills)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if quota >= 0 {
		// serializes creates per owner until commit
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, res.UserID); err != nil {
			return err
		}
		var count int
		if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes WHERE user_id = $1`, res.UserID).Scan(&count); err != nil {
			return err
		}
		if count >= quota {
			err = ErrUpgradeRequired
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO resumes (`+resumeColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		res.ID, res.UserID, res.Title, res.Description, res.PhotoKey, res.ColorHex, string(res.BorderStyle), res.Summary,
		res.FirstName, res.LastName, res.JobTitle, res.City, res.Country, res.Phone, res.Email, skills,
		res.CreatedAt, res.UpdatedAt,
	); err != nil {
		return err
	}
	if err = insertChildren(ctx, tx, res); err != nil {
		return err
	}
	return tx.Commit()
}

// Update replaces the document and its child rows. The photo key is managed
// by SetPhoto and left untouched.
func (r *PGRepo) Update(ctx context.Context, res Resume) (err error) {
	skills, err := encodeSkills(res.Skills)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE resumes SET
  title = $3, description = $4, color_hex = $5, border_style = $6, summary = $7,
  first_name = $8, last_name = $9, job_title = $10, city = $11, country = $12,
  phone = $13, email = $14, skills = $15, updated_at = $16
WHERE id = $1 AND user_id = $2`,
		res.ID, res.UserID, res.Title, res.Description, res.ColorHex, string(res.BorderStyle), res.Summary,
		res.FirstName, res.LastName, res.JobTitle, res.City, res.Country, res.Phone, res.Email, skills,
		res.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM resume_work_experiences WHERE resume_id = $1`, res.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM resume_educations WHERE resume_id = $1`, res.ID); err != nil {
		return err
	}
	if err = insertChildren(ctx, tx, res); err != nil {
		return err
	}
	return tx.Commit()
}

func insertChildren(ctx context.Context, tx *sql.Tx, res Resume) error {
	for i, we := range res.WorkExperiences {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO resume_work_experiences (resume_id, position, job_position, company, start_date, end_date, description)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			res.ID, i, we.Position, we.Company, we.StartDate, we.EndDate, we.Description,
		); err != nil {
			return fmt.Errorf("insert work experience %d: %w", i, err)
		}
	}
	for i, ed := range res.Educations {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO resume_educations (resume_id, position, degree, school, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6)`,
			res.ID, i, ed.Degree, ed.School, ed.StartDate, ed.EndDate,
		); err != nil {
			return fmt.Errorf("insert education %d: %w", i, err)
		}
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Resume, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+resumeColumns+`
FROM resumes
WHERE id = $1 AND user_id = $2`, id, userID)
	res, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if err := r.loadChildren(ctx, &res); err != nil {
		return Resume{}, err
	}
	return res, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+resumeColumns+`
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	var out []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM resumes WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// Delete removes the resume; child rows go with it through ON DELETE CASCADE.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *PGRepo) SetPhoto(ctx context.Context, userID, id, photoKey string) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE resumes SET photo_key = $3, updated_at = now()
WHERE id = $1 AND user_id = $2`, id, userID, photoKey)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *PGRepo) loadChildren(ctx context.Context, res *Resume) error {
	rows, err := r.DB.QueryContext(ctx, `
SELECT job_position, company, start_date, end_date, description
FROM resume_work_experiences
WHERE resume_id = $1
ORDER BY position ASC`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var we WorkExperience
		if err := rows.Scan(&we.Position, &we.Company, &we.StartDate, &we.EndDate, &we.Description); err != nil {
			rows.Close()
			return err
		}
		res.WorkExperiences = append(res.WorkExperiences, we)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = r.DB.QueryContext(ctx, `
SELECT degree, school, start_date, end_date
FROM resume_educations
WHERE resume_id = $1
ORDER BY position ASC`, res.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ed Education
		if err := rows.Scan(&ed.Degree, &ed.School, &ed.StartDate, &ed.EndDate); err != nil {
			return err
		}
		res.Educations = append(res.Educations, ed)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var border string
	var skills []byte
	err := row.Scan(
		&res.ID, &res.UserID, &res.Title, &res.Description, &res.PhotoKey, &res.ColorHex, &border, &res.Summary,
		&res.FirstName, &res.LastName, &res.JobTitle, &res.City, &res.Country, &res.Phone, &res.Email, &skills,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	res.BorderStyle = BorderStyle(border)
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &res.Skills); err != nil {
			return Resume{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	return res, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	return string(raw), nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
