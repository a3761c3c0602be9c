package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mustafahasanain/bookstock/internal/parser"
)

// ValidateCommand checks a book list file without importing anything.
type ValidateCommand struct {
	FilePath string
}

// NewValidateCommand creates a new ValidateCommand.
func NewValidateCommand() *ValidateCommand {
	return &ValidateCommand{}
}

// ParseFlags parses command line flags.
func (cmd *ValidateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the book list file to validate")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s validate -file <path>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Validate a pipe-delimited book list and report malformed lines.\n\n")
		fmt.Fprintf(os.Stderr, "Each line looks like:\n\n%s\n\n", parser.SampleFormat())
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
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

// Run executes the validate command.
func (cmd *ValidateCommand) Run() error {
	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}
	text := string(data)

	report := parser.Validate(text)
	lines := parser.Parse(text)

	fmt.Printf("%d valid entries\n", len(lines))
	for _, line := range lines {
		fmt.Printf("  line %d: %-50s qty=%-3d price=%.2f\n", line.LineNumber, line.Title, line.Quantity, line.Price)
	}

	if len(report.Errors) > 0 {
		fmt.Printf("\n%d problems:\n", len(report.Errors))
		for _, msg := range report.Errors {
			fmt.Printf("  %s\n", msg)
		}
	}

	if !report.Valid {
		return fmt.Errorf("validation failed")
	}

	fmt.Println("\nValidation passed")
	return nil
}
