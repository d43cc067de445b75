// seed inserts a local admin, a demo shopper and a few cart rows.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/coursemarket/backend/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail   = "admin@seed.local"
	shopperEmail = "shopper@seed.local"
	seedPassword = "seed-password"
)

// Courses in the shopper's cart: 101 and 102 stay unbought, 201 is already bought.
var cartRows = []struct {
	courseID int64
	bought   bool
}{
	{101, false},
	{102, false},
	{201, true},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	upsertUser := `
		INSERT INTO users (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`

	var adminID string
	if err := pool.QueryRow(ctx, upsertUser, adminEmail, string(hash), "Seed", "Admin", "admin").Scan(&adminID); err != nil {
		log.Fatalf("upsert admin: %v", err)
	}

	var shopperID string
	if err := pool.QueryRow(ctx, upsertUser, shopperEmail, string(hash), "Seed", "Shopper", "user").Scan(&shopperID); err != nil {
		log.Fatalf("upsert shopper: %v", err)
	}

	// Insert cart rows, skip any that already exist (idempotent re-runs)
	var inserted, skipped int
	for _, row := range cartRows {
		tag, err := pool.Exec(ctx, `
			INSERT INTO cart_items (user_id, course_id, bought)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, course_id) DO NOTHING`,
			shopperID, row.courseID, row.bought,
		)
		if err != nil {
			log.Fatalf("insert cart item %d: %v", row.courseID, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Admin:      %s  (id %s)\n", adminEmail, adminID)
	fmt.Printf("  Shopper:    %s  (id %s)\n", shopperEmail, shopperID)
	fmt.Printf("  Password:   %s  (both accounts)\n", seedPassword)
	fmt.Printf("  Cart rows:  %d inserted  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the shopper:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", shopperEmail, seedPassword)
	fmt.Println()
	fmt.Println("    # → {\"success\":true, ..., \"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2: inspect the cart:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/api/cart -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s http://localhost:8080/api/cart/count -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3: check out and watch the count drop to zero:")
	fmt.Println()
	fmt.Println("    curl -s -X DELETE 'http://localhost:8080/api/cart/clear?bought=true' \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s http://localhost:8080/api/cart/count -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  What to expect:")
	fmt.Println("    courses 101, 102  →  active cart (count 2)")
	fmt.Println("    course  201       →  purchase history (bought=true)")
	fmt.Println("    after checkout    →  count 0, all three in history")
}
