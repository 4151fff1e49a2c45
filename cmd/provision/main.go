// Command provision creates the regional admin accounts from a JSON roster
// file. Admins are never self-registered; this is the one-time provisioning
// path. Re-running is safe: existing rows are left untouched.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/config"
	"github.com/resqnet/resq-go-api/internal/database"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/repository"
)

const rosterSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["name", "email", "external_id", "region"],
    "additionalProperties": false,
    "properties": {
      "name": {"type": "string", "minLength": 1, "maxLength": 255},
      "email": {"type": "string", "minLength": 3, "maxLength": 255},
      "external_id": {"type": "string", "minLength": 1, "maxLength": 128},
      "region": {"type": "string", "minLength": 1, "maxLength": 128}
    }
  }
}`

type rosterEntry struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ExternalID string `json:"external_id"`
	Region     string `json:"region"`
}

func main() {
	rosterPath := flag.String("roster", "admins.json", "path to the admin roster file")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "provision").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	entries, err := loadRoster(*rosterPath)
	if err != nil {
		log.Fatalf("failed to load roster: %v", err)
	}

	admins := repository.NewAdminRepository(db)
	ctx := context.Background()

	created := 0
	for _, entry := range entries {
		region := strings.TrimSpace(entry.Region)
		email := strings.ToLower(strings.TrimSpace(entry.Email))

		if _, err := admins.GetByRegion(ctx, region); err == nil {
			logger.Info().Str("region", region).Msg("region already has an admin, skipping")
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("failed to check region %q: %v", region, err)
		}

		if taken, err := admins.ExistsByEmailOrExternalID(ctx, email, entry.ExternalID); err != nil {
			log.Fatalf("failed to check admin identity: %v", err)
		} else if taken {
			logger.Info().Str("email", email).Msg("admin identity already provisioned, skipping")
			continue
		}

		admin := models.Admin{
			Name:       strings.TrimSpace(entry.Name),
			Email:      email,
			ExternalID: strings.TrimSpace(entry.ExternalID),
			Region:     region,
		}

		if err := admins.Create(ctx, &admin); err != nil {
			log.Fatalf("failed to create admin for region %q: %v", region, err)
		}

		logger.Info().Str("region", region).Str("email", email).Msg("admin provisioned")
		created++
	}

	logger.Info().Int("created", created).Int("total", len(entries)).Msg("provisioning complete")
}

func loadRoster(path string) ([]rosterEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schema, err := jsonschema.CompileString("roster.schema.json", rosterSchema)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if err := schema.Validate(doc); err != nil {
		return nil, err
	}

	var entries []rosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
