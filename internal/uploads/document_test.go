package uploads

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal PDF with the given number of empty pages and a valid xref table.
func buildPDF(pages int) []byte {
	objects := []string{"<< /Type /Catalog /Pages 2 0 R >>"}
	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	_, _ = w.Write([]byte("<w:document/>"))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestPDFPageCount(t *testing.T) {
	t.Parallel()

	got, err := PDFPageCount(buildPDF(3))
	if err != nil {
		t.Fatalf("PDFPageCount: %v", err)
	}
	if got != 3 {
		t.Fatalf("pages = %d, want 3", got)
	}
}

func TestCheckPDF(t *testing.T) {
	t.Parallel()

	if _, err := checkPDF("ok.pdf", buildPDF(2), 2); err != nil {
		t.Fatalf("expected pdf within limit, got %v", err)
	}

	_, err := checkPDF("big.pdf", buildPDF(3), 2)
	var limitErr PageLimitError
	if !errors.As(err, &limitErr) || limitErr.Pages != 3 || limitErr.Limit != 2 {
		t.Fatalf("expected PageLimitError, got %v", err)
	}

	_, err = checkPDF("broken.pdf", []byte("not a pdf"), 10)
	var pdfErr InvalidPDFError
	if !errors.As(err, &pdfErr) {
		t.Fatalf("expected InvalidPDFError, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "pdf by extension", file: "a.PDF", want: mimePDF},
		{name: "jpeg alias", file: "scan.jpeg", want: mimeJPEG},
		{name: "sniffed pdf", file: "report", data: buildPDF(1), want: mimePDF},
		{name: "sniffed docx", file: "report", data: buildDOCX(t), want: mimeDOCX},
		{name: "empty unknown", file: "blob", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ContentType(tt.file, tt.data); got != tt.want {
				t.Fatalf("ContentType(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}
