package uploads

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"
)

var extensionTypes = map[string]string{
	".pdf":  mimePDF,
	".doc":  mimeDOC,
	".docx": mimeDOCX,
	".txt":  mimeText,
	".png":  mimePNG,
	".jpg":  mimeJPEG,
	".jpeg": mimeJPEG,
}

// ContentType returns the document type for name, sniffing data when the extension is unknown.
func ContentType(name string, data []byte) string {
	if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	sniffed := strings.ToLower(strings.TrimSpace(strings.Split(http.DetectContentType(data), ";")[0]))
	if sniffed == "application/zip" && isDOCX(data) {
		return mimeDOCX
	}
	return sniffed
}

func isDOCX(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

// PDFPageCount parses data as a PDF and returns its page count.
func PDFPageCount(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// checkPDF rejects PDFs that fail to parse or exceed limit pages. limit <= 0 disables the page check.
func checkPDF(name string, data []byte, limit int) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, InvalidPDFError{Name: name, Err: panicError{value: r}}
		}
	}()
	pages, err = PDFPageCount(data)
	if err != nil {
		return 0, InvalidPDFError{Name: name, Err: err}
	}
	if limit > 0 && pages > limit {
		return pages, PageLimitError{Name: name, Pages: pages, Limit: limit}
	}
	return pages, nil
}

type panicError struct{ value any }

func (p panicError) Error() string {
	return "pdf parser panic: " + fmt.Sprint(p.value)
}
