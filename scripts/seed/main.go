// Command seed loads a demo tutor, tutee, and course set into a development
// database and prints bearer tokens for exercising the API with curl.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/campushour/tutoring-api/db"
	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	"github.com/campushour/tutoring-api/internal/service"
	"github.com/campushour/tutoring-api/pkg/config"
	"github.com/campushour/tutoring-api/pkg/database"
	"github.com/campushour/tutoring-api/pkg/migrate"
)

type seedProfile struct {
	ID       string
	UserID   string
	Role     models.Role
	FullName string
	Email    string
}

var profiles = []seedProfile{
	{ID: "tutor-demo", UserID: "user-tutor-demo", Role: models.RoleTutor, FullName: "Dana Mills", Email: "dana.mills@example.edu"},
	{ID: "tutee-demo", UserID: "user-tutee-demo", Role: models.RoleTutee, FullName: "Ravi Shah", Email: "ravi.shah@example.edu"},
	{ID: "admin-demo", UserID: "user-admin-demo", Role: models.RoleAdmin, FullName: "Admin", Email: "admin@example.edu"},
}

var courses = []models.Course{
	{ID: "course-math101", Code: "MATH101", Name: "Calculus I"},
	{ID: "course-cs201", Code: "CS201", Name: "Data Structures"},
}

func main() {
	var (
		runMigrations bool
		tokenTTL      time.Duration
	)
	flag.BoolVar(&runMigrations, "migrate", true, "apply pending migrations before seeding")
	flag.DurationVar(&tokenTTL, "token-ttl", 7*24*time.Hour, "lifetime of the printed demo tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	dbConn, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer dbConn.Close()

	if runMigrations {
		migrations, err := fs.Sub(db.Migrations, "migrations")
		if err != nil {
			log.Fatalf("failed to open embedded migrations: %v", err)
		}
		if err := migrate.Up(ctx, dbConn, migrations); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}

	for _, p := range profiles {
		_, err := dbConn.ExecContext(ctx, `
INSERT INTO profiles (id, user_id, role, full_name, email, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (id) DO NOTHING`, p.ID, p.UserID, p.Role, p.FullName, p.Email)
		if err != nil {
			log.Fatalf("failed to seed profile %s: %v", p.ID, err)
		}
	}

	for _, c := range courses {
		_, err := dbConn.ExecContext(ctx, `
INSERT INTO courses (id, code, name)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, c.ID, c.Code, c.Name)
		if err != nil {
			log.Fatalf("failed to seed course %s: %v", c.Code, err)
		}
	}

	availabilityRepo := repository.NewAvailabilityRepository(dbConn)
	slotRepo := repository.NewSlotRepository(dbConn)
	sessionRepo := repository.NewSessionRepository(dbConn)
	cancellationRepo := repository.NewCancellationRepository(dbConn)
	profileRepo := repository.NewProfileRepository(dbConn)
	cacheRepo := repository.NewCacheRepository(nil, nil)

	conflicts := service.NewConflictService(sessionRepo, nil)
	sessions := service.NewSessionService(dbConn, sessionRepo, cancellationRepo, availabilityRepo, profileRepo, nil, cfg.Booking.CancelNotice, nil)
	availability := service.NewAvailabilityService(dbConn, availabilityRepo, slotRepo, cacheRepo, conflicts, sessions, nil, nil, nil, cfg.Booking.SlotDuration, cfg.Booking.AvailabilityTTL, nil)

	weekly := dto.WeeklyAvailabilityInput{
		1: {{Start: "09:00", End: "12:00"}, {Start: "14:00", End: "17:00"}},
		3: {{Start: "10:00", End: "15:00"}},
		5: {{Start: "09:00", End: "11:00"}},
	}
	if err := availability.ReplaceWeekly(ctx, "tutor-demo", weekly); err != nil {
		log.Fatalf("failed to seed availability: %v", err)
	}

	tokens := service.NewTokenService(cfg.JWT.Secret, tokenTTL)
	fmt.Println("seeded. demo tokens:")
	for _, p := range profiles {
		token, err := tokens.Issue(p.UserID, p.ID, p.Role)
		if err != nil {
			log.Fatalf("failed to issue token for %s: %v", p.ID, err)
		}
		fmt.Printf("  %-5s %s\n", p.Role, token)
	}
}
