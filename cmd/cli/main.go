package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wiroon/shortlink/internal/adapters/repository/sqlite"
	"github.com/wiroon/shortlink/internal/config"
	"github.com/wiroon/shortlink/internal/core/domain"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")

	if len(os.Args) < 2 {
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}

	cfg := config.Load()
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(repo)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(repo, *importFile)
	default:
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}
}

func doExport(repo *sqlite.SQLiteRepository) {
	links, err := repo.ListLinks(context.Background(), -1, 0)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(links); err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
}

func doImport(repo *sqlite.SQLiteRepository, filename string) {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	var links []domain.Link
	if err := json.NewDecoder(file).Decode(&links); err != nil {
		log.Fatalf("Decode failed: %v", err)
	}

	ctx := context.Background()
	count := 0
	for _, l := range links {
		existing, err := repo.GetLinkByKey(ctx, l.Key)
		if err != nil {
			log.Fatalf("Lookup failed for %s: %v", l.Key, err)
		}
		if existing != nil {
			log.Printf("Skipping existing key: %s", l.Key)
			continue
		}

		if err := repo.CreateLink(ctx, &l); err != nil {
			log.Printf("Failed to import %s: %v", l.Key, err)
		} else {
			count++
		}
	}
	log.Printf("Imported %d links", count)
}
