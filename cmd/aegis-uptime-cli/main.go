package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateDir := validateCmd.String("dir", "", "directory containing SLA YAML files")

	checksCmd := flag.NewFlagSet("validate-checks", flag.ExitOnError)
	checksDir := checksCmd.String("dir", "", "directory containing uptime check YAML files")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *validateDir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir flag is required")
			validateCmd.Usage()
			os.Exit(1)
		}
		os.Exit(runValidate(*validateDir))
	case "validate-checks":
		checksCmd.Parse(os.Args[2:])
		if *checksDir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir flag is required")
			checksCmd.Usage()
			os.Exit(1)
		}
		os.Exit(runValidateChecks(*checksDir))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: aegis-uptime <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate --dir <path>          Validate SLA YAML files in a directory")
	fmt.Println("  validate-checks --dir <path>   Validate uptime check YAML files in a directory")
	fmt.Println()
}

func runValidate(dirPath string) int {
	// Find schema file relative to the binary or in the current directory
	schemaPath := findSchemaFile()
	if schemaPath == "" {
		fmt.Fprintln(os.Stderr, "Error: could not find schemas/sla_v1.json")
		return 1
	}

	validator, err := sla.NewValidator(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
		return 1
	}

	return reportErrors("SLA", validator.ValidateDirectory(dirPath))
}

func runValidateChecks(dirPath string) int {
	_, errors := probe.LoadFromDirectory(dirPath)
	return reportErrors("check", errors)
}

// reportErrors prints validation errors grouped by file and returns the
// process exit code.
func reportErrors(kind string, errors []sla.ValidationError) int {
	if len(errors) == 0 {
		fmt.Printf("✓ All %s files are valid\n", kind)
		return 0
	}

	errorsByFile := make(map[string][]sla.ValidationError)
	for _, err := range errors {
		errorsByFile[err.File] = append(errorsByFile[err.File], err)
	}

	var files []string
	for file := range errorsByFile {
		files = append(files, file)
	}
	sort.Strings(files)

	fmt.Fprintf(os.Stderr, "✗ Validation failed with %d error(s):\n\n", len(errors))
	for _, file := range files {
		for _, err := range errorsByFile[file] {
			if err.Path != "" {
				fmt.Fprintf(os.Stderr, "%s: %s: %s\n", filepath.Base(err.File), err.Path, err.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(err.File), err.Message)
			}
		}
	}

	return 1
}

// findSchemaFile looks for the schema file in common locations
func findSchemaFile() string {
	candidates := []string{
		"schemas/sla_v1.json",
		"../schemas/sla_v1.json",
		"../../schemas/sla_v1.json",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
