// Package main implements a standalone seed script that populates the cafe
// menu with realistic products. It writes directly to Postgres and prints a
// pair of development JWTs (customer and admin) signed with the configured
// secret so the API can be exercised immediately.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beanhouse/cafe-backend/internal/auth"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type menuItem struct {
	name        string
	description string
	price       int64 // minor units
	available   bool
	seedAvg     float64
	seedCount   int
}

// The seed baseline mirrors what the cafe launched with; real feedback is
// blended on top of it at review time.
var menu = []menuItem{
	{"Espresso", "Double shot, house blend.", 14900, true, 4.6, 48},
	{"Oat Milk Latte", "Espresso with steamed oat milk.", 24900, true, 4.4, 61},
	{"Cappuccino", "Classic thirds: espresso, steamed milk, foam.", 22900, true, 4.5, 52},
	{"Filter Coffee", "South Indian style, brewed strong.", 12900, true, 4.7, 83},
	{"Masala Chai", "Black tea simmered with spices and milk.", 11900, true, 4.3, 57},
	{"Cold Brew", "Steeped 18 hours, served over ice.", 19900, true, 4.2, 34},
	{"Butter Croissant", "Laminated, baked every morning.", 18500, true, 4.5, 44},
	{"Banana Bread", "Toasted slice with salted butter.", 16500, true, 4.1, 29},
	{"Veg Sandwich", "Grilled, with mint chutney.", 21500, true, 4.0, 38},
	{"Paneer Wrap", "Spiced paneer, pickled onion, whole wheat wrap.", 23500, true, 4.2, 31},
	{"Chocolate Brownie", "Dark chocolate, fudge center.", 17500, true, 4.6, 66},
	{"Mango Lassi", "Seasonal, while it lasts.", 15900, false, 4.8, 22},
}

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "cafe"),
		getEnv("POSTGRES_PASSWORD", "cafe_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "cafe_db"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	inserted := 0
	for _, item := range menu {
		// Re-running the script must not duplicate the menu.
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (
				id, name, description, price, available,
				seed_rating_avg, seed_rating_count, average_rating, review_count
			)
			SELECT $1, $2, $3, $4, $5, $6, $7, $6, $7
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $2)`,
			uuid.New().String(), item.name, item.description, item.price, item.available,
			item.seedAvg, item.seedCount,
		)
		if err != nil {
			log.Fatalf("insert %q: %v", item.name, err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	log.Printf("seeded %d/%d menu items", inserted, len(menu))

	secret := getEnv("JWT_SECRET", "dev-secret-change-me")
	customerToken, err := auth.SignToken(secret, "user-demo-1", "customer", 24*time.Hour)
	if err != nil {
		log.Fatalf("sign customer token: %v", err)
	}
	adminToken, err := auth.SignToken(secret, "staff-demo-1", "admin", 24*time.Hour)
	if err != nil {
		log.Fatalf("sign admin token: %v", err)
	}

	log.Printf("customer token: %s", customerToken)
	log.Printf("admin token:    %s", adminToken)
}
