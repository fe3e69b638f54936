package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/source"
)

func benchInbox(b *testing.B, files, rows int) string {
	b.Helper()
	var sb strings.Builder
	sb.WriteString("Month,Sales\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "2020-%02d,%d\n", i%12+1, 100+i*3)
	}
	dir := b.TempDir()
	for i := 0; i < files; i++ {
		name := filepath.Join(dir, fmt.Sprintf("store-%03d.csv", i))
		if err := os.WriteFile(name, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := benchInbox(b, 64, 48)
	opts := seeded(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(dir, opts, nil)
		if err != nil {
			b.Fatal(err)
		}
		if len(result.Failed) > 0 {
			b.Fatal(result.Failed[0].Err)
		}
	}
}

func BenchmarkCompare(b *testing.B) {
	dir := benchInbox(b, 1, 240)
	ds, err := source.ReadPath(filepath.Join(dir, "store-000.csv"))
	if err != nil {
		b.Fatal(err)
	}
	catalog := config.Catalog(config.DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compare(ds.CSV, seeded(1), catalog)
	}
}

func BenchmarkScanDir(b *testing.B) {
	dir := benchInbox(b, 256, 4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		files, err := source.ScanDir(dir)
		if err != nil {
			b.Fatal(err)
		}
		_ = files
	}
}
