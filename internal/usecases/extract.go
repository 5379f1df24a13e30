package usecases

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"punto_kennedy_crm/internal/entities"

	"github.com/ledongthuc/pdf"
)

// Character budget per document block, to bound prompt size.
const docTextBudget = 1200

// ExtractDocumentText pulls readable text out of a stored file. Only PDFs are
// parsed; every other mime type gets a fixed placeholder naming the file, so
// raw bytes never leak into a prompt.
func ExtractDocumentText(fileName, mimeType string, data []byte) (string, error) {
	if strings.EqualFold(mimeType, "application/pdf") || bytes.HasPrefix(data, []byte("%PDF")) {
		return extractPDF(fileName, data)
	}
	return fmt.Sprintf("[archivo binario no legible: %s]", fileName), nil
}

func extractPDF(fileName string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf %q: %w", fileName, err)
	}
	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %q: %w", fileName, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read pdf text %q: %w", fileName, err)
	}
	return buf.String(), nil
}

// FormatDocBlock wraps extracted text in a labeled block, truncated to the
// per-document budget.
func FormatDocBlock(doc entities.Document, text string) string {
	if len(text) > docTextBudget {
		// Back off to a rune boundary so the cut never splits a UTF-8 sequence
		cut := docTextBudget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	label := doc.FileName
	if doc.DocType != "" {
		label = fmt.Sprintf("%s (%s)", doc.FileName, doc.DocType)
	}
	return fmt.Sprintf("--- Documento: %s ---\n%s", label, strings.TrimSpace(text))
}
