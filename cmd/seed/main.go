// Package main provides a CLI tool that applies the schema and seeds
// the database with initial data.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"salonpos/internal/core/id"
	"salonpos/internal/infrastructure/storage/postgres"
	"salonpos/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if err := seedAdminOperator(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin operator", "error", err)
	}

	if err := seedWalkInCustomer(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed walk-in customer", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminOperator(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@salonpos.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if the operator already exists
	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM operators WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin operator already exists", "email", adminEmail, "operator_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check operator exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	operatorID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO operators (id, name, email, password_hash, active)
		VALUES ($1, 'Administrator', $2, $3, true)
	`, operatorID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}

	log.Infow("admin operator created", "email", adminEmail, "operator_id", operatorID)
	return nil
}

func seedWalkInCustomer(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var walkInID id.ID
	err := pool.QueryRow(ctx, `
		INSERT INTO customers (id, name, is_walk_in)
		VALUES ($1, 'Walk-in', TRUE)
		ON CONFLICT (is_walk_in) WHERE is_walk_in
		DO UPDATE SET name = customers.name
		RETURNING id
	`, id.New()).Scan(&walkInID)
	if err != nil {
		return fmt.Errorf("ensure walk-in customer: %w", err)
	}

	log.Infow("walk-in customer ready", "customer_id", walkInID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	services := []struct {
		label string
		price string
	}{
		{"Haircut", "25.00"},
		{"Hair coloring", "60.00"},
		{"Blow dry", "18.00"},
		{"Beard trim", "12.00"},
		{"Manicure", "22.00"},
	}

	serviceIDs := make([]id.ID, 0, len(services))
	for _, svc := range services {
		price, err := decimal.NewFromString(svc.price)
		if err != nil {
			return fmt.Errorf("parse price for %s: %w", svc.label, err)
		}

		var serviceID id.ID
		err = pool.QueryRow(ctx,
			`SELECT id FROM service_items WHERE label = $1`,
			svc.label,
		).Scan(&serviceID)
		if errors.Is(err, pgx.ErrNoRows) {
			serviceID = id.New()
			_, err = pool.Exec(ctx, `
				INSERT INTO service_items (id, label, unit_price, active)
				VALUES ($1, $2, $3, true)
			`, serviceID, svc.label, price)
		}
		if err != nil {
			return fmt.Errorf("seed service %s: %w", svc.label, err)
		}
		serviceIDs = append(serviceIDs, serviceID)
	}
	log.Infow("demo services ready", "count", len(serviceIDs))

	customers := []string{"Anna Petrova", "Marta Kowalska", "Elena Marino"}
	customerIDs := make([]id.ID, 0, len(customers))
	for _, name := range customers {
		var customerID id.ID
		err := pool.QueryRow(ctx,
			`SELECT id FROM customers WHERE name = $1 AND NOT is_walk_in`,
			name,
		).Scan(&customerID)
		if errors.Is(err, pgx.ErrNoRows) {
			customerID = id.New()
			_, err = pool.Exec(ctx, `
				INSERT INTO customers (id, name, is_walk_in)
				VALUES ($1, $2, FALSE)
			`, customerID, name)
		}
		if err != nil {
			return fmt.Errorf("seed customer %s: %w", name, err)
		}
		customerIDs = append(customerIDs, customerID)
	}
	log.Infow("demo customers ready", "count", len(customerIDs))

	// A few appointments for today so the POS board has something to show.
	var existing int
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE starts_at::date = CURRENT_DATE`,
	).Scan(&existing); err != nil {
		return fmt.Errorf("count today's appointments: %w", err)
	}
	if existing > 0 {
		log.Infow("today's appointments already present", "count", existing)
		return nil
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	slots := []time.Duration{10 * time.Hour, 12 * time.Hour, 15 * time.Hour}

	for i, slot := range slots {
		customerID := customerIDs[i%len(customerIDs)]
		serviceID := serviceIDs[i%len(serviceIDs)]
		price, err := decimal.NewFromString(services[i%len(services)].price)
		if err != nil {
			return fmt.Errorf("parse appointment price: %w", err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO appointments (id, customer_id, service_id, price, starts_at, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
		`, id.New(), customerID, serviceID, price, today.Add(slot))
		if err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
	}

	log.Infow("demo appointments created", "count", len(slots))
	return nil
}
