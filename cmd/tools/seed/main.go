// main.go - demo data seeding tool
package main

import (
	"context"
	"flag"
	"log"

	"visitlens/internal"
	"visitlens/internal/projects"
	"visitlens/internal/seeder"
)

func main() {
	domain := flag.String("domain", "demo.localhost", "domain of the project to seed")
	sessions := flag.Int("sessions", 2000, "number of visitor sessions to generate")
	flag.Parse()

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s, err := seeder.NewSeeder(app.DBManager.GetConnection(), app.Logger, *sessions)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if err := s.SeedDomain(context.Background(), *domain); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Fresh data must not be served from stale cached aggregates.
	if project, err := projects.GetProjectByDomain(app.DBManager.GetConnection(), *domain); err == nil {
		app.Service.InvalidateProject(project.ID)
	}

	log.Println("Seeding complete")
}
