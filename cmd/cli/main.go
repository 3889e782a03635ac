package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/transfer"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

const usage = `usage:
  cli export -user <google-id> [-format json|yaml|html|xlsx] [-out file]
  cli import -user <google-id> -file <path> [-format json|yaml|html]`

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportUser := exportCmd.String("user", "", "owner id (Google subject) to export")
	exportFormat := exportCmd.String("format", "", "output format; inferred from -out when empty, json otherwise")
	exportOut := exportCmd.String("out", "", "output file (default stdout)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importUser := importCmd.String("user", "", "owner id (Google subject) to import into")
	importFile := importCmd.String("file", "", "file to import")
	importFormat := importCmd.String("format", "", "input format; inferred from -file when empty")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to db", logger.Error(err))
	}
	defer repo.Close()

	svc := transfer.NewService(repo, log)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		if *exportUser == "" {
			exportCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := doExport(ctx, svc, *exportUser, *exportFormat, *exportOut, log); err != nil {
			log.Fatal("export failed", logger.Error(err))
		}
	case "import":
		_ = importCmd.Parse(os.Args[2:])
		if *importUser == "" || *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := doImport(ctx, svc, *importUser, *importFormat, *importFile, log); err != nil {
			log.Fatal("import failed", logger.Error(err))
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
}

// resolveFormat prefers an explicit format, then the file extension.
func resolveFormat(explicit, path string, fallback transfer.Format) (transfer.Format, error) {
	if explicit != "" {
		return transfer.ParseFormat(explicit)
	}
	if ext := filepath.Ext(path); ext != "" {
		return transfer.ParseFormat(ext)
	}
	if fallback == "" {
		return "", fmt.Errorf("cannot infer format of %q, pass -format", path)
	}
	return fallback, nil
}

func doExport(ctx context.Context, svc *transfer.Service, userID, format, out string, log logger.Logger) error {
	f, err := resolveFormat(format, out, transfer.FormatJSON)
	if err != nil {
		return err
	}

	doc, err := svc.Export(ctx, userID)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer file.Close()
		w = file
	}

	if err := transfer.Encode(w, f, doc); err != nil {
		return fmt.Errorf("encoding %s: %w", f, err)
	}

	log.Info("export complete",
		logger.String("user_id", userID),
		logger.String("format", string(f)),
		logger.Int("bookmarks", len(doc.Bookmarks)))
	return nil
}

func doImport(ctx context.Context, svc *transfer.Service, userID, format, path string, log logger.Logger) error {
	f, err := resolveFormat(format, path, "")
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	doc, err := transfer.Decode(file, f)
	if err != nil {
		return err
	}

	res, err := svc.Import(ctx, userID, doc)
	if err != nil {
		return err
	}

	log.Info("import complete",
		logger.String("user_id", userID),
		logger.Int("bookmarks", res.Bookmarks),
		logger.Int("tags", res.Tags),
		logger.Int("folders", res.Folders),
		logger.Int("skipped", res.Skipped))
	return nil
}
