package db

import (
	"strings"
	"testing"
)

func chunkIndex(t *testing.T) *IndexDefinition {
	t.Helper()
	idx, err := NewIndex("chatpdf:uploads_report.pdf:idx").
		Prefix("chatpdf:uploads_report.pdf:").
		Numeric("page_number").
		VectorHNSW("vector", 768, DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestIndexBuilder_ChunkIndex(t *testing.T) {
	idx := chunkIndex(t)

	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "page_number" || idx.Fields[0].Type != IndexFieldNumeric {
		t.Errorf("field[0] = %+v, want page_number NUMERIC", idx.Fields[0])
	}
	v := idx.Fields[1]
	if v.Type != IndexFieldVector || v.VectorDim != 768 || v.VectorDistance != DistanceCosine {
		t.Errorf("vector field = %+v", v)
	}
	if v.VectorM != 16 || v.VectorEFConstruct != 200 {
		t.Errorf("M=%d EF=%d, want 16/200", v.VectorM, v.VectorEFConstruct)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("").Numeric("x"), "index name is required"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"vector without dim", NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0), "positive DIM"},
		{"invalid characters", NewIndex("idx with spaces").Numeric("x"), "invalid characters"},
		{"duplicate field", NewIndex("idx").Numeric("page_number").Numeric("page_number"), "duplicate field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"chatpdf:report.pdf:idx", "a-b_c", "x"} {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	for _, s := range []string{"", "has space", "a/b", "é"} {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}

func TestIndexDefinition_String(t *testing.T) {
	s := chunkIndex(t).String()
	want := "FT.CREATE chatpdf:uploads_report.pdf:idx ON HASH PREFIX chatpdf:uploads_report.pdf: SCHEMA " +
		"page_number NUMERIC vector VECTOR HNSW DIM 768"
	if s != want {
		t.Errorf("String() = %q\nwant       %q", s, want)
	}
}
