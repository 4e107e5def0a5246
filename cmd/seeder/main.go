package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alumnet/alumni-backend/internal/config"
	"github.com/alumnet/alumni-backend/internal/database"
	"gopkg.in/yaml.v3"
)

type SeedData struct {
	Profiles    []Profile    `yaml:"profiles"`
	Memberships []Membership `yaml:"memberships"`
}

type Profile struct {
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	GraduationYear int    `yaml:"graduation_year"`
	Branch         string `yaml:"branch"`
	Company        string `yaml:"company"`
	Status         string `yaml:"status"`
}

type Membership struct {
	Email     string                 `yaml:"email"`
	Type      string                 `yaml:"type"`
	StartDate string                 `yaml:"start_date"`
	EndDate   *string                `yaml:"end_date,omitempty"`
	Params    map[string]interface{} `yaml:"params,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		return seedCommand(args)
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML file to seed from")
	dir := fs.String("dir", "", "Directory of YAML files to seed from")
	dryRun := fs.Bool("dry-run", false, "Validate files without making database changes")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		return err
	}

	seedData, err := loadSeedData(files)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	if *dryRun {
		fmt.Println("dry run: validating data structure")
		return validateSeedData(seedData)
	}

	cfg := config.Load()
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	fmt.Printf("seeding database from %d file(s)\n", len(files))
	return applySeedData(context.Background(), db, seedData)
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	cfg := config.Load()
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	fmt.Println("resetting database...")
	if err := db.Reset(); err != nil {
		return err
	}

	fmt.Println("database reset complete - ready for seeding")
	return nil
}

func resolveFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, errors.New("must specify either --file or --dir")
	}

	if file != "" && dir != "" {
		return nil, errors.New("cannot specify both --file and --dir")
	}

	if file != "" {
		return []string{file}, nil
	}

	return findYAMLFiles(dir)
}

func findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in directory: %s", dir)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadSeedData(files []string) (*SeedData, error) {
	combined := &SeedData{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		var fileData SeedData
		if err := yaml.Unmarshal(data, &fileData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", file, err)
		}

		// Combine data from all files
		combined.Profiles = append(combined.Profiles, fileData.Profiles...)
		combined.Memberships = append(combined.Memberships, fileData.Memberships...)
	}

	return combined, nil
}

func validateSeedData(data *SeedData) error {
	fmt.Printf("  Profiles: %d\n", len(data.Profiles))
	fmt.Printf("  Memberships: %d\n", len(data.Memberships))

	for _, m := range data.Memberships {
		if _, err := parseDate(m.StartDate); err != nil {
			return fmt.Errorf("membership for %s: %w", m.Email, err)
		}
		if m.EndDate != nil {
			if _, err := parseDate(*m.EndDate); err != nil {
				return fmt.Errorf("membership for %s: %w", m.Email, err)
			}
		}
	}

	fmt.Println("data structure is valid")
	return nil
}

func applySeedData(ctx context.Context, db *database.Database, data *SeedData) error {
	pool := db.Pool()

	for _, profile := range data.Profiles {
		status := profile.Status
		if status == "" {
			status = "PENDING"
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO profiles (name, email, graduation_year, branch, company, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO NOTHING`,
			profile.Name, profile.Email, profile.GraduationYear,
			profile.Branch, profile.Company, status)
		if err != nil {
			return fmt.Errorf("failed to create profile %s: %w", profile.Email, err)
		}
		fmt.Printf("created profile: %s\n", profile.Email)
	}

	for _, membership := range data.Memberships {
		startDate, err := parseDate(membership.StartDate)
		if err != nil {
			return fmt.Errorf("membership for %s: %w", membership.Email, err)
		}

		var endDate *time.Time
		if membership.EndDate != nil {
			parsed, err := parseDate(*membership.EndDate)
			if err != nil {
				return fmt.Errorf("membership for %s: %w", membership.Email, err)
			}
			endDate = &parsed
		}

		var params []byte
		if membership.Params != nil {
			params, err = json.Marshal(membership.Params)
			if err != nil {
				return fmt.Errorf("failed to encode params for %s: %w", membership.Email, err)
			}
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO memberships (email, membership_type, start_date, end_date, params)
			VALUES ($1, $2, $3, $4, $5)`,
			membership.Email, membership.Type, startDate, endDate, params)
		if err != nil {
			return fmt.Errorf("failed to create membership for %s: %w", membership.Email, err)
		}
		fmt.Printf("created %s membership: %s\n", membership.Type, membership.Email)
	}

	fmt.Println("seeding completed")
	return nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all data from the database. are you sure? (yes/no): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - Database seeding utility for the alumni network")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  seed        Seed database from YAML files")
	fmt.Println("  nuke        Delete all data from database")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file      Path to a single YAML file")
	fmt.Println("  --dir       Path to directory containing YAML files")
	fmt.Println("  --dry-run   Validate files without making database changes")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder seed --file dev-data.yaml")
	fmt.Println("  seeder seed --dir ./seed-data/")
	fmt.Println("  seeder seed --dir ./seed-data/ --dry-run")
	fmt.Println("  seeder nuke")
	fmt.Println("  seeder nuke --force")
}
