package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := make([]string, 0, len(pages))
	for _, text := range pages {
		pageObj := len(objects) + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPDFTextSinglePage(t *testing.T) {
	t.Parallel()

	text, err := ExtractPDFText(buildPDF("Hello PDF knowledge"))
	if err != nil {
		t.Fatalf("ExtractPDFText error: %v", err)
	}
	if text != "Hello PDF knowledge" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractPDFTextJoinsPagesAndSkipsBlank(t *testing.T) {
	t.Parallel()

	text, err := ExtractPDFText(buildPDF("  Reset your password  ", "   ", "Contact support"))
	if err != nil {
		t.Fatalf("ExtractPDFText error: %v", err)
	}
	if text != "Reset your password\n\nContact support" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractPDFTextRejectsNonPDF(t *testing.T) {
	t.Parallel()

	if _, err := ExtractPDFText([]byte("not a pdf file")); err == nil {
		t.Fatalf("expected error for invalid PDF content")
	}
}

func TestExtractPDFTextRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := ExtractPDFText(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
