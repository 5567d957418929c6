package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if seedClearData {
			for _, table := range []string{"request_comments", "request_documents", "clearance_requests", "users"} {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		adminID := ensureUser(db, "admin", "admin@university.edu", string(hash), "admin")
		studentID := ensureUser(db, "budi", "budi@student.university.edu", string(hash), "user")

		requests := []struct {
			FullName      string
			Email         string
			ClearanceType string
			Reason        string
			Status        string
		}{
			{"Budi Santoso", "budi@student.university.edu", "Graduation", "Completing final semester", "Pending"},
			{"Budi Santoso", "budi@student.university.edu", "Library", "Returning borrowed materials", "Approved"},
		}

		for _, req := range requests {
			var exists int
			row := db.QueryRow("SELECT 1 FROM clearance_requests WHERE requester_id = $1 AND clearance_type = $2", studentID, req.ClearanceType)
			if err := row.Scan(&exists); err == nil {
				continue
			}

			if req.Status == "Approved" {
				_, err = db.Exec(`INSERT INTO clearance_requests
					(requester_id, full_name, email, clearance_type, reason, status, reviewer_id, reviewed_at, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), now())`,
					studentID, req.FullName, req.Email, req.ClearanceType, req.Reason, req.Status, adminID)
			} else {
				_, err = db.Exec(`INSERT INTO clearance_requests
					(requester_id, full_name, email, clearance_type, reason, status, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
					studentID, req.FullName, req.Email, req.ClearanceType, req.Reason, req.Status)
			}
			if err != nil {
				log.Fatalf("failed to insert clearance request: %v", err)
			}
			fmt.Printf("Seeded %s clearance request for %s\n", req.ClearanceType, req.FullName)
		}

		fmt.Println("Seeding completed")
	},
}

func ensureUser(db *sqlx.DB, username, email, passwordHash, role string) int64 {
	var id int64
	if err := db.QueryRow("SELECT id FROM users WHERE username = $1", username).Scan(&id); err == nil {
		fmt.Printf("user %s already exists\n", username)
		return id
	}

	err := db.QueryRow(`INSERT INTO users (username, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now()) RETURNING id`,
		username, email, passwordHash, role).Scan(&id)
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", username, err)
	}
	fmt.Printf("Seeded user: %s (%s)\n", username, role)
	return id
}
