package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campushour/tutoring-api/internal/models"
)

// ProfileRepository reads tutor/tutee projections owned by the surrounding
// application.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository builds the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID loads one profile.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, user_id, role, full_name, email, created_at FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CourseRepository reads course projections owned by the surrounding
// application.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository builds the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads one course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, code, name FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
