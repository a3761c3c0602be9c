// Package cli implements the command line import and validation commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mustafahasanain/bookstock/internal/config"
	"github.com/mustafahasanain/bookstock/internal/covers"
	"github.com/mustafahasanain/bookstock/internal/database"
	"github.com/mustafahasanain/bookstock/internal/database/categories"
	"github.com/mustafahasanain/bookstock/internal/database/products"
	"github.com/mustafahasanain/bookstock/internal/database/settings"
	"github.com/mustafahasanain/bookstock/internal/googlebooks"
	"github.com/mustafahasanain/bookstock/internal/importer"
	"github.com/mustafahasanain/bookstock/internal/parser"
)

// ImportCommand imports a book list file into the catalog.
type ImportCommand struct {
	FilePath     string
	Category     string
	DatabasePath string
	DryRun       bool
}

// NewImportCommand creates a new ImportCommand.
func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

// ParseFlags parses command line flags.
func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the book list file (Title | Quantity | Price per line)")
	fs.StringVar(&cmd.Category, "category", "", "Category assigned to every imported book")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (defaults to DATABASE_PATH)")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and print entries without importing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a pipe-delimited book list into the catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Each line looks like:\n\n%s\n\n", parser.SampleFormat())
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file books.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file books.txt -category \"Science Fiction\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file books.txt -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}

	return nil
}

// Run executes the import command.
func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}
	text := string(data)

	report := parser.Validate(text)
	for _, msg := range report.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}

	lines := parser.Parse(text)
	if len(lines) == 0 {
		return fmt.Errorf("no valid book entries found in %s", cmd.FilePath)
	}
	fmt.Printf("Parsed %d book entries from %s\n", len(lines), cmd.FilePath)

	if cmd.DryRun {
		for _, line := range lines {
			fmt.Printf("  %-50s qty=%-3d price=%.2f\n", line.Title, line.Quantity, line.Price)
		}
		fmt.Println("Dry run: nothing imported")
		return nil
	}

	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	settingsRepo := settings.NewRepository(db.DB, cfg)

	width, height := settingsRepo.ImageSize()
	coverPipeline, err := covers.NewPipeline(cfg.Images.Dir, width, height, cfg.Images.PlaceholderPath)
	if err != nil {
		return fmt.Errorf("failed to initialize cover pipeline: %w", err)
	}
	coverPipeline.Fallback = settingsRepo.PlaceholderImage

	searchClient := googlebooks.NewClient(settingsRepo.APIKey)
	imp := importer.New(
		products.NewRepository(db.DB),
		categories.NewRepository(db.DB),
		coverPipeline,
		settingsRepo,
	)

	runner := importer.NewBatchRunner(searchClient, imp, cfg.Import.ItemDelay)
	runner.OnResult = func(position int, result importer.Result) {
		status := "FAIL"
		if result.Success {
			status = "OK"
		} else if result.Skipped {
			status = "SKIP"
		}
		fmt.Printf("[%d/%d] %-4s %s: %s\n", position, len(lines), status, result.Title, result.Message)
	}

	summary, err := runner.Run(context.Background(), lines, cmd.Category, nil)
	if err != nil {
		return fmt.Errorf("import interrupted: %w", err)
	}

	fmt.Printf("\nDone: %d succeeded, %d failed, %d skipped of %d\n",
		summary.Succeeded, summary.Failed, summary.Skipped, summary.Total)
	return nil
}
