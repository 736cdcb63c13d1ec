package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dompet/internal/core"
	"dompet/internal/ledger/memory"
	"dompet/internal/services"
)

func newService(t *testing.T) *services.LedgerService {
	t.Helper()
	return services.NewLedgerService(memory.New(), nil, nil, nil)
}

func runCmd(t *testing.T, svc *services.LedgerService, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), svc, args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestSetAndList(t *testing.T) {
	svc := newService(t)

	out, err := runCmd(t, svc, "", "set", "-date", "2024-01-10", "-field", "income", "-amount", "50.000")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(out, "Rabu, 10 Januari 2024") || !strings.Contains(out, "Rp 50.000") {
		t.Fatalf("unexpected set output %q", out)
	}
	runCmd(t, svc, "", "set", "-date", "2024-01-11", "-field", "outcome", "-amount", "2000")

	out, err = runCmd(t, svc, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows:\n%s", out)
	}
	if !strings.Contains(lines[1], "2024-01-11") || !strings.Contains(lines[2], "2024-01-10") {
		t.Fatalf("list should be most recent first:\n%s", out)
	}

	out, _ = runCmd(t, svc, "", "list", "-asc")
	if lines := strings.Split(strings.TrimSpace(out), "\n"); !strings.Contains(lines[1], "2024-01-10") {
		t.Fatalf("list -asc should be oldest first:\n%s", out)
	}
}

func TestSetRejectsInvalidInput(t *testing.T) {
	svc := newService(t)
	if _, err := runCmd(t, svc, "", "set", "-field", "balance", "-amount", "1"); !errors.Is(err, core.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if _, err := runCmd(t, svc, "", "set", "-field", "income", "-amount", "-1"); !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := runCmd(t, svc, "", "set", "-date", "tomorrow", "-field", "income", "-amount", "1"); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestResetPrompt(t *testing.T) {
	svc := newService(t)
	runCmd(t, svc, "", "set", "-date", "2024-01-10", "-field", "income", "-amount", "1")

	out, err := runCmd(t, svc, "n\n", "reset")
	if err != nil || !strings.HasPrefix(out, resetPrompt) || !strings.Contains(out, "Dibatalkan") {
		t.Fatalf("declined reset: %q, %v", out, err)
	}
	if snap, _ := svc.Load(context.Background()); len(snap.Records) != 1 {
		t.Fatalf("declined reset removed data")
	}

	if out, err := runCmd(t, svc, "y\n", "reset"); err != nil || !strings.Contains(out, "direset") {
		t.Fatalf("confirmed reset: %q, %v", out, err)
	}
	if snap, _ := svc.Load(context.Background()); len(snap.Records) != 0 {
		t.Fatalf("records left after reset")
	}

	if _, err := runCmd(t, svc, "", "reset", "-yes"); err != nil {
		t.Fatalf("reset -yes on empty ledger: %v", err)
	}
}

func TestExport(t *testing.T) {
	svc := newService(t)
	runCmd(t, svc, "", "set", "-date", "2024-01-10", "-field", "income", "-amount", "150000")

	out, err := runCmd(t, svc, "", "export", "-format", "csv", "-o", "-")
	if err != nil || !strings.Contains(out, "2024-01-10,Rabu,150000,0,150000") {
		t.Fatalf("csv to stdout: %q, %v", out, err)
	}

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	if _, err := runCmd(t, svc, "", "export", "-format", "xlsx", "-o", path); err != nil {
		t.Fatalf("xlsx export: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("xlsx file not written: %v", err)
	}

	if _, err := runCmd(t, svc, "", "export", "-format", "pdf"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCmd(t, newService(t), "", "frobnicate"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := runCmd(t, newService(t), ""); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
