package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"faturas/internal/config"
	"faturas/internal/csvexport"
	"faturas/internal/domain"
	"faturas/internal/email/noop"
	"faturas/internal/email/ses"
	"faturas/internal/extract"
	"faturas/internal/ledger/xlsx"
	"faturas/internal/logger"
	"faturas/internal/normalize"
	"faturas/internal/port"
	"faturas/internal/repository/postgres"
	"faturas/internal/service"
	"faturas/internal/storage/local"
	s3storage "faturas/internal/storage/s3"
	"faturas/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	watch := pflag.Bool("watch", false, "keep processing new documents after the initial batch")
	csvPath := pflag.String("csv", "", "write a CSV snapshot of the ledger to this file or directory")
	inbound := pflag.String("inbound", "", "inbound directory (overrides ingest.inbound_dir)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *inbound != "" {
		cfg.Ingest.InboundDir = *inbound
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, closeLedger, err := openLedger(cfg, zlog)
	if err != nil {
		return err
	}
	defer closeLedger()

	archiver, err := openArchiver(cfg, zlog)
	if err != nil {
		return err
	}

	sender, err := openReportSender(cfg, zlog)
	if err != nil {
		return err
	}

	rules, err := ruleSets(cfg)
	if err != nil {
		return err
	}

	svc := service.NewIngestService(
		rules,
		normalize.NewNormalizer(cfg.Ingest.PCSDivisor),
		validator.NewEngine(validator.DefaultRegistry(), zlog),
		ledger,
		archiver,
		service.IngestConfig{
			Distributor:             cfg.Ingest.Distributor,
			DistributorFromFilename: cfg.Ingest.DistributorFromFilename,
		},
		zlog,
	)

	summary, batchErr := svc.RunBatch(ctx, cfg.Ingest.InboundDir)
	for _, r := range summary.Results {
		printStatus(os.Stdout, r)
	}
	if batchErr != nil {
		return fmt.Errorf("batch failed: %w", batchErr)
	}
	if err := sender.SendBatchReport(ctx, summary); err != nil {
		zlog.Warn("batch report not delivered", zap.Error(err))
	}

	if *csvPath != "" {
		if err := writeSnapshot(ctx, ledger, *csvPath); err != nil {
			return err
		}
	}

	if !*watch {
		return nil
	}
	w, err := service.NewWatcher(svc, cfg.Ingest.InboundDir, cfg.Ingest.WatchDebounce,
		func(r domain.DocumentResult) { printStatus(os.Stdout, r) }, zlog)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func ruleSets(cfg *config.Config) ([]*extract.RuleSet, error) {
	registry := extract.DefaultRegistry()
	wanted := []struct {
		name   string
		format domain.SourceFormat
	}{
		{cfg.Ingest.PDFVariant, domain.SourceFormatPDF},
		{cfg.Ingest.XMLVariant, domain.SourceFormatXML},
	}

	rules := make([]*extract.RuleSet, 0, len(wanted))
	for _, w := range wanted {
		rs, err := registry.Lookup(w.name)
		if err != nil {
			return nil, err
		}
		if rs.Format != w.format {
			return nil, fmt.Errorf("rule set %q reads %s documents, not %s", rs.Name, rs.Format, w.format)
		}
		rules = append(rules, rs)
	}
	return rules, nil
}

func openLedger(cfg *config.Config, zlog *zap.Logger) (port.Ledger, func(), error) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendPostgres:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewInvoiceLedgerRepo(db), func() { _ = db.Close() }, nil
	default:
		return xlsx.NewLedger(cfg.Ledger.Path, cfg.Ledger.Sheet, zlog), func() {}, nil
	}
}

func openArchiver(cfg *config.Config, zlog *zap.Logger) (port.DocumentArchiver, error) {
	if cfg.Archive.Provider != config.ArchiveProviderS3 {
		return local.NewArchiver(cfg.Ingest.ArchiveDir), nil
	}
	store, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	return s3storage.NewArchiver(store, cfg.S3.Bucket, cfg.Archive.Prefix, zlog), nil
}

func openReportSender(cfg *config.Config, zlog *zap.Logger) (port.ReportSender, error) {
	if cfg.Email.Provider != "ses" {
		return noop.NewNoopSender(zlog), nil
	}
	sender, err := ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ToAddresses)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
	}
	return sender, nil
}

func writeSnapshot(ctx context.Context, ledger port.Ledger, path string) error {
	records, err := ledger.Load(ctx)
	if err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, csvexport.BuildFilename("dados faturas"))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := csvexport.Export(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return f.Close()
}

// printStatus writes the one-line terminal status of a document.
func printStatus(w io.Writer, r domain.DocumentResult) {
	name := filepath.Base(r.Path)
	switch {
	case r.Outcome == domain.OutcomeInserted && r.RelocateErr != "":
		fmt.Fprintf(w, "%-15s %s (not archived: %s)\n", r.Outcome, name, r.RelocateErr)
	case r.Outcome == domain.OutcomeInserted:
		fmt.Fprintf(w, "%-15s %s -> %s\n", r.Outcome, name, r.ArchivedTo)
	case r.Outcome == domain.OutcomeMissingFields:
		fmt.Fprintf(w, "%-15s %s: %s\n", r.Outcome, name, r.Err)
	case r.Outcome == domain.OutcomeReadError:
		fmt.Fprintf(w, "%-15s %s: %s\n", r.Outcome, name, r.Err)
	default:
		fmt.Fprintf(w, "%-15s %s\n", r.Outcome, name)
	}
}
