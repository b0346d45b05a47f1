package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fieldtrack/internal/config"
	"fieldtrack/internal/db"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
)

const (
	adminEmail      = "admin@fieldtrack.local"
	adminPassword   = "Admin123!"
	defaultPassword = "Monteur123!"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.Worker{},
		&model.Site{},
		&model.User{},
		&model.WorkSheet{},
		&model.Expense{},
		&model.Attachment{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	workerRepo := repository.NewWorkerRepository(gormDB)
	siteRepo := repository.NewSiteRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	sheetRepo := repository.NewWorkSheetRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)

	workers, err := seedWorkers(ctx, workerRepo)
	if err != nil {
		log.Fatalf("Failed to seed workers: %v", err)
	}
	sites, err := seedSites(ctx, siteRepo)
	if err != nil {
		log.Fatalf("Failed to seed sites: %v", err)
	}
	if err := seedUsers(ctx, userRepo, workers); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	created, err := seedSheets(ctx, sheetRepo, expenseRepo, userRepo, workers, sites)
	if err != nil {
		log.Fatalf("Failed to seed work sheets: %v", err)
	}

	log.Println("Seed completed successfully!")
	log.Printf("  - Workers: %d", len(workers))
	log.Printf("  - Sites: %d", len(sites))
	log.Printf("  - Work sheets created: %d", created)
	log.Printf("Admin login: %s / %s", adminEmail, adminPassword)
}

func seedWorkers(ctx context.Context, repo repository.WorkerRepository) ([]model.Worker, error) {
	seeds := []model.Worker{
		{Nom: "Durand", Prenom: "Julien", Email: "julien.durand@fieldtrack.local", Telephone: "0612345678", DateEmbauche: date(2022, 3, 14), CodeIdentification: "MNT-001", Actif: true},
		{Nom: "Lefèvre", Prenom: "Sophie", Email: "sophie.lefevre@fieldtrack.local", Telephone: "0698765432", DateEmbauche: date(2023, 9, 1), CodeIdentification: "MNT-002", Actif: true},
		{Nom: "Moreau", Prenom: "Karim", Email: "karim.moreau@fieldtrack.local", Telephone: "0655443322", DateEmbauche: date(2021, 6, 7), CodeIdentification: "MNT-003", Actif: false},
	}

	out := make([]model.Worker, 0, len(seeds))
	for _, w := range seeds {
		existing, err := repo.FindByCode(ctx, w.CodeIdentification)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("checking worker %s: %w", w.CodeIdentification, err)
		}
		if existing != nil {
			out = append(out, *existing)
			continue
		}
		if err := repo.Create(ctx, &w); err != nil {
			return nil, fmt.Errorf("creating worker %s: %w", w.CodeIdentification, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func seedSites(ctx context.Context, repo repository.SiteRepository) ([]model.Site, error) {
	finJuin := date(2026, 6, 30)
	seeds := []model.Site{
		{Nom: "Tour Horizon", Adresse: "12 rue de la République, Lyon", Client: "Nexity", Reference: "CHT-2025-001", DateDebut: date(2025, 1, 6), Description: "Rénovation électrique des étages 1 à 12", Actif: true},
		{Nom: "Entrepôt Nord", Adresse: "4 avenue des Frères Lumière, Villeurbanne", Client: "Logidis", Reference: "CHT-2025-002", DateDebut: date(2025, 4, 22), DateFin: &finJuin, Description: "Installation du réseau incendie", Actif: true},
		{Nom: "Résidence Les Tilleuls", Adresse: "8 chemin du Bois, Écully", Client: "Bouygues Immobilier", Reference: "CHT-2024-017", DateDebut: date(2024, 10, 1), Actif: false},
	}

	out := make([]model.Site, 0, len(seeds))
	for _, s := range seeds {
		existing, err := repo.FindByReference(ctx, s.Reference)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("checking site %s: %w", s.Reference, err)
		}
		if existing != nil {
			out = append(out, *existing)
			continue
		}
		if err := repo.Create(ctx, &s); err != nil {
			return nil, fmt.Errorf("creating site %s: %w", s.Reference, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func seedUsers(ctx context.Context, repo repository.UserRepository, workers []model.Worker) error {
	type userSeed struct {
		email    string
		password string
		role     model.Role
		workerIx int // -1 when not linked to a worker
	}
	seeds := []userSeed{
		{adminEmail, adminPassword, model.RoleAdmin, -1},
		{"chef@fieldtrack.local", defaultPassword, model.RoleSuperviseur, -1},
		{"julien.durand@fieldtrack.local", defaultPassword, model.RoleMonteur, 0},
		{"sophie.lefevre@fieldtrack.local", defaultPassword, model.RoleMonteur, 1},
	}

	for _, s := range seeds {
		existing, err := repo.FindByEmail(ctx, s.email)
		if err != nil && err != gorm.ErrRecordNotFound {
			return fmt.Errorf("checking user %s: %w", s.email, err)
		}
		if existing != nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password for %s: %w", s.email, err)
		}
		user := model.User{
			Email:        s.email,
			PasswordHash: string(hash),
			Role:         s.role,
		}
		if s.workerIx >= 0 && s.workerIx < len(workers) {
			id := workers[s.workerIx].ID
			user.WorkerID = &id
		}
		if err := repo.Create(ctx, &user); err != nil {
			return fmt.Errorf("creating user %s: %w", s.email, err)
		}
	}
	return nil
}

func seedSheets(
	ctx context.Context,
	sheetRepo repository.WorkSheetRepository,
	expenseRepo repository.ExpenseRepository,
	userRepo repository.UserRepository,
	workers []model.Worker,
	sites []model.Site,
) (int, error) {
	existing, err := sheetRepo.Count(ctx, repository.SheetFilter{})
	if err != nil {
		return 0, fmt.Errorf("counting sheets: %w", err)
	}
	if existing > 0 {
		log.Printf("Work sheets already present (%d), skipping sheet seed", existing)
		return 0, nil
	}
	if len(workers) < 2 || len(sites) < 2 {
		return 0, fmt.Errorf("not enough workers or sites to seed sheets")
	}

	admin, err := userRepo.FindByEmail(ctx, adminEmail)
	if err != nil {
		return 0, fmt.Errorf("loading admin user: %w", err)
	}

	sheets := []model.WorkSheet{
		{
			WorkerID:    workers[0].ID,
			SiteID:      sites[0].ID,
			DateTravail: date(2025, 8, 18),
			HeureDebut:  "08:00",
			HeureFin:    "16:30",
			Description: "Tirage de câbles étage 3",
			Statut:      model.StatusBrouillon,
		},
		{
			WorkerID:    workers[0].ID,
			SiteID:      sites[0].ID,
			DateTravail: date(2025, 8, 19),
			HeureDebut:  "08:00",
			HeureFin:    "17:00",
			Description: "Pose des tableaux divisionnaires",
			Statut:      model.StatusSoumis,
		},
		{
			WorkerID:      workers[1].ID,
			SiteID:        sites[1].ID,
			DateTravail:   date(2025, 8, 20),
			HeureDebut:    "07:30",
			HeureFin:      "15:30",
			Description:   "Raccordement sprinklers zone A",
			Statut:        model.StatusValide,
			ValidatedByID: &admin.ID,
		},
		{
			WorkerID:      workers[1].ID,
			SiteID:        sites[1].ID,
			DateTravail:   date(2025, 8, 21),
			HeureDebut:    "09:00",
			HeureFin:      "12:00",
			Description:   "Reprise zone B",
			Statut:        model.StatusRejete,
			ValidatedByID: &admin.ID,
			MotifRejet:    "Heures incohérentes avec le planning du chantier",
		},
	}

	created := 0
	for i := range sheets {
		hours, err := model.ComputeHours(sheets[i].HeureDebut, sheets[i].HeureFin)
		if err != nil {
			return created, fmt.Errorf("sheet %d hours: %w", i, err)
		}
		sheets[i].HeuresTotal = hours
		if err := sheetRepo.Create(ctx, &sheets[i]); err != nil {
			return created, fmt.Errorf("creating sheet %d: %w", i, err)
		}
		created++
	}

	expenses := []model.Expense{
		{WorkSheetID: sheets[1].ID, Categorie: model.CategoryTransport, Montant: decimal.NewFromFloat(23.40), Description: "Péage A6"},
		{WorkSheetID: sheets[2].ID, Categorie: model.CategoryRepas, Montant: decimal.NewFromFloat(14.90), Description: "Déjeuner équipe"},
		{WorkSheetID: sheets[2].ID, Categorie: model.CategoryMateriel, Montant: decimal.NewFromFloat(87.20), Description: "Colliers et chevilles"},
	}
	for i := range expenses {
		if err := expenseRepo.Create(ctx, &expenses[i]); err != nil {
			return created, fmt.Errorf("creating expense %d: %w", i, err)
		}
	}

	return created, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
