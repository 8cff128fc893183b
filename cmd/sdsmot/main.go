// Command sdsmot converts SeaDronesSee multi-object-tracking annotation
// files into a partitioned Parquet layout, loads the result into SQLite,
// and reports statistics over it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/92fueler/SeaDronesSee-MOT/internal/config"
	"github.com/92fueler/SeaDronesSee-MOT/internal/convert"
	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
	"github.com/92fueler/SeaDronesSee-MOT/internal/report"
	"github.com/92fueler/SeaDronesSee-MOT/internal/stats"
	"github.com/92fueler/SeaDronesSee-MOT/internal/store"
	"github.com/92fueler/SeaDronesSee-MOT/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "convert":
		runConvert(os.Args[2:])

	case "load":
		runLoad(os.Args[2:])

	case "stats":
		runStats(os.Args[2:])

	case "report":
		runReport(os.Args[2:])

	case "migrate":
		runMigrate(os.Args[2:])

	case "version":
		fmt.Printf("sdsmot %s\n", version.String())

	case "help":
		printHelp()

	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

// loadConfig resolves the pipeline configuration: the named file if given,
// defaults otherwise.
func loadConfig(path string) *config.PipelineConfig {
	if path == "" {
		return config.EmptyPipelineConfig()
	}
	cfg, err := config.LoadPipelineConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runConvert(args []string) {
	var inputPath, outDir, split, configPath string
	var clean bool

	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	fs.StringVar(&inputPath, "input", "", "annotation JSON file to convert")
	fs.StringVar(&outDir, "out", "", "output directory for the parquet layout")
	fs.StringVar(&split, "split", "", "dataset split (train or val, default: infer from file name)")
	fs.BoolVar(&clean, "clean", false, "remove previous output before writing")
	fs.StringVar(&configPath, "config", "", "pipeline config JSON file")
	fs.Parse(args)

	cfg := loadConfig(configPath)
	if inputPath == "" {
		log.Fatal("Usage: sdsmot convert -input <file> [-out <dir>] [-split train|val] [-clean]")
	}
	// A bare file name resolves under the configured annotations directory
	// when it is not present in the working directory.
	if filepath.Dir(inputPath) == "." && !filepath.IsAbs(inputPath) {
		if _, err := os.Stat(inputPath); os.IsNotExist(err) {
			inputPath = filepath.Join(cfg.GetAnnotationsDir(), inputPath)
		}
	}
	if outDir == "" {
		outDir = cfg.GetOutputDir()
	}
	if split == "" {
		split = cfg.GetDatasetSplit()
	}
	if split != "" && split != mot.SplitTrain && split != mot.SplitVal {
		log.Fatalf("Invalid split %q: must be train or val", split)
	}

	res, err := convert.Run(convert.Options{
		InputPath: inputPath,
		OutputDir: outDir,
		Split:     split,
		Clean:     clean || cfg.GetCleanOutput(),
	})
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	log.Printf("✓ Converted %s (split %s)", inputPath, res.Split)
	log.Printf("  %d categories, %d videos, %d images, %d tracks, %d annotations",
		len(res.Tables.Categories), len(res.Tables.Videos), len(res.Tables.Images),
		len(res.Tables.Tracks), len(res.Tables.Annotations))
	log.Printf("  %d partition files under %s (run %s)", res.PartitionFiles, outDir, res.RunID)
}

func runLoad(args []string) {
	var parquetDir, dbPath, configPath string

	fs := flag.NewFlagSet("load", flag.ExitOnError)
	fs.StringVar(&parquetDir, "parquet", "", "parquet directory to load from")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database file")
	fs.StringVar(&configPath, "config", "", "pipeline config JSON file")
	fs.Parse(args)

	cfg := loadConfig(configPath)
	if parquetDir == "" {
		parquetDir = cfg.GetOutputDir()
	}
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}

	fsys := fsutil.NewOSFileSystem()
	tables, err := convert.ReadTables(fsys, parquetDir)
	if err != nil {
		log.Fatalf("Failed to read parquet layout: %v", err)
	}

	// Carry the converter's run id into the load audit when the sidecar
	// is present.
	runID := uuid.NewString()
	if sidecar, err := convert.ReadStats(fsys, parquetDir); err == nil && sidecar.RunID != "" {
		runID = sidecar.RunID
	}

	db, err := store.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrationsFS, err := store.MigrationsFS()
	if err != nil {
		log.Fatalf("Failed to load migrations: %v", err)
	}
	if err := db.MigrateUp(migrationsFS); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	res, err := db.LoadDataset(tables, runID)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	log.Printf("✓ Loaded dataset into %s in %s (run %s)", dbPath, res.Duration.Round(time.Millisecond), res.RunID)
	log.Printf("  %d categories, %d videos, %d images, %d tracks, %d annotations",
		res.Counts.Categories, res.Counts.Videos, res.Counts.Images,
		res.Counts.Tracks, res.Counts.Annotations)
}

func runStats(args []string) {
	var parquetDir, configPath string
	var jsonOut bool

	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.StringVar(&parquetDir, "parquet", "", "parquet directory to summarize")
	fs.BoolVar(&jsonOut, "json", false, "emit the summary as JSON")
	fs.StringVar(&configPath, "config", "", "pipeline config JSON file")
	fs.Parse(args)

	cfg := loadConfig(configPath)
	if parquetDir == "" {
		parquetDir = cfg.GetOutputDir()
	}

	tables, err := convert.ReadTables(fsutil.NewOSFileSystem(), parquetDir)
	if err != nil {
		log.Fatalf("Failed to read parquet layout: %v", err)
	}
	summary := stats.Collect(tables)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			log.Fatalf("Failed to encode summary: %v", err)
		}
		return
	}

	fmt.Print(formatSummary(summary))
}

func formatSummary(s *stats.Summary) string {
	var b strings.Builder
	fmt.Fprintln(&b, "=== Dataset Summary ===")
	fmt.Fprintf(&b, "Categories:  %d\n", s.Categories)
	fmt.Fprintf(&b, "Videos:      %d\n", s.Videos)
	fmt.Fprintf(&b, "Images:      %d\n", s.Images)
	fmt.Fprintf(&b, "Tracks:      %d\n", s.Tracks)
	fmt.Fprintf(&b, "Annotations: %d\n", s.Annotations)

	fmt.Fprintln(&b, "\nAnnotations per category:")
	for _, c := range s.AnnotationsPerCategory {
		fmt.Fprintf(&b, "  %-24s %d\n", c.Name, c.Count)
	}

	fmt.Fprintln(&b, "\nImages per video:")
	for _, v := range s.ImagesPerVideo {
		fmt.Fprintf(&b, "  %-24s %d\n", v.Name, v.Count)
	}

	fmt.Fprintln(&b, "\nBounding box area:")
	formatDistribution(&b, s.BboxArea)
	fmt.Fprintln(&b, "\nTrack length (annotations per track):")
	formatDistribution(&b, s.TrackLength)
	return b.String()
}

func formatDistribution(b *strings.Builder, d stats.Distribution) {
	if d.Count == 0 {
		fmt.Fprintln(b, "  (no data)")
		return
	}
	fmt.Fprintf(b, "  n=%d mean=%.1f p50=%.1f p95=%.1f min=%.0f max=%.0f\n",
		d.Count, d.Mean, d.P50, d.P95, d.Min, d.Max)
}

func runReport(args []string) {
	var parquetDir, outPath, configPath string

	fs := flag.NewFlagSet("report", flag.ExitOnError)
	fs.StringVar(&parquetDir, "parquet", "", "parquet directory to report on")
	fs.StringVar(&outPath, "out", "", "path of the HTML report to write")
	fs.StringVar(&configPath, "config", "", "pipeline config JSON file")
	fs.Parse(args)

	cfg := loadConfig(configPath)
	if parquetDir == "" {
		parquetDir = cfg.GetOutputDir()
	}
	if outPath == "" {
		outPath = cfg.GetReportPath()
	}

	tables, err := convert.ReadTables(fsutil.NewOSFileSystem(), parquetDir)
	if err != nil {
		log.Fatalf("Failed to read parquet layout: %v", err)
	}
	summary := stats.Collect(tables)

	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create report file: %v", err)
	}
	defer f.Close()

	if err := report.Render(f, summary); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	log.Printf("✓ Wrote report to %s", outPath)
}

func runMigrate(args []string) {
	var dbPath, configPath string

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "path to sqlite database file")
	fs.StringVar(&configPath, "config", "", "pipeline config JSON file")
	fs.Parse(args)

	cfg := loadConfig(configPath)
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}

	store.RunMigrateCommand(fs.Args(), dbPath)
}

func printHelp() {
	fmt.Println("sdsmot - SeaDronesSee MOT dataset tools")
	fmt.Println()
	fmt.Println("Usage: sdsmot <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  convert    Convert an annotation JSON file to partitioned Parquet")
	fmt.Println("  load       Load a converted Parquet layout into SQLite")
	fmt.Println("  stats      Summarize a converted dataset")
	fmt.Println("  report     Render an HTML chart report for a converted dataset")
	fmt.Println("  migrate    Manage the SQLite schema (up, down, status, ...)")
	fmt.Println("  version    Print version information")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sdsmot convert -input data/annotations/instances_train.json -out data/parquet")
	fmt.Println("  sdsmot convert -input instances_val.json -clean")
	fmt.Println("  sdsmot load -parquet data/parquet -db data/seadronessee.db")
	fmt.Println("  sdsmot stats -parquet data/parquet -json")
	fmt.Println("  sdsmot report -parquet data/parquet -out report.html")
	fmt.Println("  sdsmot migrate -db data/seadronessee.db up")
	fmt.Println()
	fmt.Println("Run 'sdsmot migrate help' for migration commands.")
}
