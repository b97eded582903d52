// Package main provides a CLI tool for running an account projection
// against a JSON accounts file and a YAML variables/distributions file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"projector/internal/engine/orchestrator"
	"projector/internal/engine/variables"
	"projector/internal/models"
	"projector/internal/ratetables"
	"projector/internal/report"
	"projector/internal/storage"
)

func main() {
	accountsPath := flag.String("accounts", "", "Path to the accounts JSON file (required)")
	variablesPath := flag.String("variables", "", "Path to the variables.yaml file")
	ratesDir := flag.String("rates", "", "Directory of historical rate-table CSVs")
	outPath := flag.String("out", "", "Path to write the projection result JSON (default stdout)")
	startFlag := flag.String("start", "", "Projection start date, YYYY-MM-DD (default today)")
	endFlag := flag.String("end", "", "Projection end date, YYYY-MM-DD (required)")
	simulation := flag.String("simulation", "", "Named simulation scenario to apply")
	monteCarlo := flag.Bool("monte-carlo", false, "Run Monte Carlo iterations")
	simulations := flag.Int("simulations", 100, "Number of Monte Carlo iterations")
	reportPath := flag.String("report", "", "Path to write a PDF report (optional)")
	cacheDir := flag.String("cache-dir", "", "Segment result cache directory (optional)")
	cacheMB := flag.Int("cache-mb", 64, "In-memory segment cache budget, MB")
	cachePassword := flag.String("cache-password", "", "Cache directory encryption password")
	force := flag.Bool("force", false, "Force recalculation, ignoring any cached segment results")
	flag.Parse()

	if *accountsPath == "" || *endFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: project -accounts accounts.json -end 2050-01-01 [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*accountsPath, *variablesPath, *ratesDir, *outPath, *startFlag, *endFlag,
		*simulation, *monteCarlo, *simulations, *reportPath, *cacheDir, *cacheMB, *cachePassword, *force); err != nil {
		log.Fatalf("project: %v", err)
	}
}

func run(accountsPath, variablesPath, ratesDir, outPath, startFlag, endFlag,
	simulation string, monteCarlo bool, simulations int, reportPath, cacheDir string, cacheMB int, cachePassword string, force bool) error {

	accounts, err := loadAccounts(accountsPath)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}

	var rateTables models.RateTables
	if ratesDir != "" {
		rateTables, err = ratetables.New(ratesDir).Load()
		if err != nil {
			return fmt.Errorf("loading rate tables: %w", err)
		}
	}

	resolver := variables.NewStaticResolver()
	distributions := map[string]variables.NormalParams{}
	if variablesPath != "" {
		r, err := variables.LoadYAML(variablesPath)
		if err != nil {
			return fmt.Errorf("loading variables: %w", err)
		}
		resolver = r

		distributions, err = variables.LoadDistributions(variablesPath)
		if err != nil {
			return fmt.Errorf("loading Monte Carlo distributions: %w", err)
		}
	}
	sampleProvider := variables.NewNormalSampleProvider(distributions)

	endDate, err := time.Parse("2006-01-02", endFlag)
	if err != nil {
		return fmt.Errorf("parsing -end: %w", err)
	}

	options := models.ProjectOptions{
		EndDate:            endDate,
		Simulation:         simulation,
		MonteCarlo:         monteCarlo,
		TotalSimulations:   simulations,
		ForceRecalculation: force,
	}
	if startFlag != "" {
		start, err := time.Parse("2006-01-02", startFlag)
		if err != nil {
			return fmt.Errorf("parsing -start: %w", err)
		}
		options.StartDate = &start
	}

	if cacheDir != "" {
		password, err := resolveCachePassword(cacheDir, cachePassword)
		if err != nil {
			return fmt.Errorf("resolving cache password: %w", err)
		}
		options.CachePolicy = models.CachePolicy{
			DiskCacheDir:  cacheDir,
			MaxMemoryMB:   cacheMB,
			EncryptionKey: password,
		}
	}

	result, err := orchestrator.Project(context.Background(), models.ProjectInput{Accounts: accounts, RateTables: rateTables}, options, resolver, sampleProvider)
	if err != nil {
		return fmt.Errorf("running projection: %w", err)
	}

	if err := writeResult(result, outPath); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	if reportPath != "" {
		pdf, err := report.Generate(result)
		if err != nil {
			return fmt.Errorf("generating report: %w", err)
		}
		if err := os.WriteFile(reportPath, pdf, 0644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	return nil
}

func loadAccounts(path string) ([]models.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var accounts []models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func writeResult(result *models.ProjectResult, outPath string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}

// resolveCachePassword returns the password to unlock/enable encryption for
// cacheDir: the -cache-password flag if given, otherwise an interactive
// prompt via golang.org/x/term when the directory already carries an
// encryption marker. An unencrypted directory with no flag runs in
// plaintext.
func resolveCachePassword(cacheDir, flagPassword string) (string, error) {
	if flagPassword != "" {
		return flagPassword, nil
	}

	s, err := storage.New(cacheDir)
	if err != nil {
		return "", err
	}
	if !s.IsEncrypted() {
		return "", nil
	}

	fmt.Fprintf(os.Stderr, "cache directory %s is encrypted, enter password: ", cacheDir)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
