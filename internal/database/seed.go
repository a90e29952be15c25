package database

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"refexcms/internal/models"
)

// RelatedLinksKey is the cms_documents key of the investor Related Links tree.
const RelatedLinksKey = "investors.related-links"

// Default development credentials.
const (
	SeedAdminEmail    = "admin@refex.local"
	SeedAdminPassword = "admin"
)

//go:embed seeddata/related_links.yaml
var sampleTreeYAML []byte

// SampleTree decodes the embedded development Related Links tree.
func SampleTree() ([]models.Category, error) {
	var tree []models.Category
	if err := yaml.Unmarshal(sampleTreeYAML, &tree); err != nil {
		return nil, fmt.Errorf("decode sample tree: %w", err)
	}
	return tree, nil
}

// Seed populates the database with initial development data: a default
// admin user when no users exist, and the sample Related Links tree when
// none has been stored.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedRelatedLinks(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	perms, _ := json.Marshal([]string{models.PermissionInvestorRelations})
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, permissions)
		VALUES ($1, $2, $3, $4, $5)
	`, SeedAdminEmail, string(hash), "Admin", models.RoleAdmin, string(perms))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"password", SeedAdminPassword,
	)
	return nil
}

func seedRelatedLinks(db *sql.DB) error {
	tree, err := SampleTree()
	if err != nil {
		return err
	}
	body, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("seed encode tree: %w", err)
	}

	res, err := db.Exec(`
		INSERT INTO cms_documents (key, body, updated_by)
		VALUES ($1, $2, 'seed')
		ON CONFLICT (key) DO NOTHING
	`, RelatedLinksKey, string(body))
	if err != nil {
		return fmt.Errorf("seed related links: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("database seeded with sample related links", "categories", len(tree))
	}
	return nil
}
