package linqcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkAnalyzeSource(b *testing.B) {
	src, err := os.ReadFile(filepath.Join("testdata", "shop.cs"))
	if err != nil {
		b.Fatal(err)
	}
	a, err := New()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.AnalyzeSource(context.Background(), "shop.cs", src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFixAll(b *testing.B) {
	src := []byte(pagingSource)
	a, err := New()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, err := a.FixAll(context.Background(), "page.cs", src); err != nil {
			b.Fatal(err)
		}
	}
}
