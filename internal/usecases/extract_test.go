package usecases

import (
	"strings"
	"testing"
	"unicode/utf8"

	"punto_kennedy_crm/internal/entities"
)

func TestExtractDocumentTextNonPDF(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10} // jpeg magic
	got, err := ExtractDocumentText("dni_frente.jpg", "image/jpeg", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[archivo binario no legible: dni_frente.jpg]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractDocumentTextNeverLeaksBytes(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}
	got, err := ExtractDocumentText("foto.png", "image/png", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsRune(got, 0x89) {
		t.Errorf("raw bytes leaked into extracted text: %q", got)
	}
}

func TestExtractDocumentTextCorruptPDF(t *testing.T) {
	_, err := ExtractDocumentText("analitico.pdf", "application/pdf", []byte("%PDF-1.4 truncated"))
	if err == nil {
		t.Error("expected an error for a corrupt pdf")
	}
}

func TestFormatDocBlockLabel(t *testing.T) {
	doc := entities.Document{FileName: "analitico.pdf", DocType: "analitico"}
	got := FormatDocBlock(doc, "Promedio general: 8.50")
	if !strings.HasPrefix(got, "--- Documento: analitico.pdf (analitico) ---\n") {
		t.Errorf("unexpected label: %q", got)
	}
	if !strings.Contains(got, "Promedio general: 8.50") {
		t.Errorf("text missing from block: %q", got)
	}
}

func TestFormatDocBlockTruncates(t *testing.T) {
	doc := entities.Document{FileName: "largo.pdf"}
	long := strings.Repeat("a", docTextBudget*3)
	got := FormatDocBlock(doc, long)
	if len(got) > docTextBudget+64 {
		t.Errorf("block not truncated, len = %d", len(got))
	}
}

func TestFormatDocBlockTruncatesOnRuneBoundary(t *testing.T) {
	doc := entities.Document{FileName: "acentos.pdf"}
	// One ASCII byte then two-byte runes puts the byte budget mid-sequence
	long := "a" + strings.Repeat("ñ", docTextBudget)
	got := FormatDocBlock(doc, long)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got[len(got)-8:])
	}
}
