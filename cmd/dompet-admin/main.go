// Command dompet-admin inspects and edits the ledger from a terminal, using
// the same configuration as the server.
//
// Usage:
//
//	dompet-admin list
//	dompet-admin set -date 2024-01-10 -field income -amount 50.000
//	dompet-admin reset [-yes]
//	dompet-admin export -format xlsx|csv -o FILE
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"dompet/internal/cli"
	"dompet/internal/core"
	"dompet/internal/export"
	"dompet/internal/locale"
	"dompet/internal/log"
	"dompet/internal/services"
)

const resetPrompt = "Apakah Anda yakin ingin mereset data? [y/N] "

var errUsage = errors.New("usage: dompet-admin list | set | reset | export")

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr).WithComponent(log.ComponentAdmin)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx := context.Background()
	ledger, err := cli.InitLedger(ctx, cfg, logger, nil)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize ledger", err)
	}

	err = run(ctx, ledger.Service, os.Args[1:], os.Stdin, os.Stdout)
	ledger.Close()
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *services.LedgerService, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		return runList(ctx, svc, args[1:], stdout)
	case "set":
		return runSet(ctx, svc, args[1:], stdout)
	case "reset":
		return runReset(ctx, svc, args[1:], stdin, stdout)
	case "export":
		return runExport(ctx, svc, args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func runList(ctx context.Context, svc *services.LedgerService, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	asc := fs.Bool("asc", false, "oldest first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	records := snap.Descending()
	if *asc {
		records = snap.Ascending()
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tTanggal\tHari\tPemasukan\tPengeluaran\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			r.ID, r.Date, locale.Weekday(r.Date), locale.FormatRupiah(r.Income), locale.FormatRupiah(r.Outcome))
	}
	return tw.Flush()
}

func runSet(ctx context.Context, svc *services.LedgerService, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	date := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	field := fs.String("field", "", "income or outcome")
	amount := fs.String("amount", "", "amount in Rupiah, e.g. 150.000")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := svc.Today()
	if *date != "" {
		parsed, err := core.ParseDate(*date)
		if err != nil {
			return err
		}
		d = parsed
	}
	f, err := core.ParseField(*field)
	if err != nil {
		return err
	}
	n, err := core.ParseAmount(*amount)
	if err != nil {
		return err
	}

	rec, _, err := svc.Save(ctx, d, f, n)
	if err != nil && !errors.Is(err, services.ErrNotReloaded) {
		return err
	}
	fmt.Fprintf(stdout, "%s: pemasukan %s, pengeluaran %s\n",
		locale.LongDate(rec.Date), locale.FormatRupiah(rec.Income), locale.FormatRupiah(rec.Outcome))
	return err
}

func runReset(ctx context.Context, svc *services.LedgerService, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*yes {
		fmt.Fprint(stdout, resetPrompt)
		answer, _ := bufio.NewReader(stdin).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "ya", "yes":
		default:
			fmt.Fprintln(stdout, "Dibatalkan.")
			return nil
		}
	}

	if _, err := svc.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Data telah direset.")
	return nil
}

func runExport(ctx context.Context, svc *services.LedgerService, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	formatName := fs.String("format", "xlsx", "xlsx or csv")
	out := fs.String("o", "", "output file (default dompet_YYYYMMDD.<format>, - for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	snap, err := svc.Load(ctx)
	if err != nil {
		return err
	}

	if *out == "-" {
		return export.Write(stdout, format, snap.Records)
	}
	path := *out
	if path == "" {
		path = format.Filename(time.Now().In(svc.Location()))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, format, snap.Records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "%d catatan diekspor ke %s\n", len(snap.Records), path)
	return nil
}
