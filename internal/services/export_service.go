package services

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/phpdave11/gofpdf"

	"simplecrud/internal/domain"
)

// ExportService renders list pages as documents.
type ExportService struct {
	// Title prefixes every document heading; defaults to "Daftar".
	Title string
}

// ListPDF renders one page of a list as an A4 landscape table. Columns come
// from the json names of the first item's fields.
func (s ExportService) ListPDF(resource string, res domain.PaginationResult) ([]byte, string, error) {
	title := s.Title
	if title == "" {
		title = "Daftar"
	}

	cols := columnsOf(res.Items)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title+" "+resource, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(resource))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Halaman %d dari %d, total %d data", res.CurrentPage, res.TotalPages, res.TotalMatches))
	pdf.Ln(10)

	if len(cols) > 0 {
		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		w := (pageW - left - right) / float64(len(cols))

		pdf.SetFont("Helvetica", "B", 10)
		for _, c := range cols {
			pdf.CellFormat(w, 7, c.name, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, item := range res.Items {
			row := rowOf(item, cols)
			for _, cell := range row {
				pdf.CellFormat(w, 6, cell, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "Tidak ada data.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render %s pdf: %w", resource, err)
	}
	filename := fmt.Sprintf("%s-page-%d.pdf", resource, res.CurrentPage)
	return buf.Bytes(), filename, nil
}

type column struct {
	name  string
	index int
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func columnsOf(items []any) []column {
	if len(items) == 0 {
		return nil
	}
	v := indirect(reflect.ValueOf(items[0]))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}

func rowOf(item any, cols []column) []string {
	out := make([]string, len(cols))
	v := indirect(reflect.ValueOf(item))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return out
	}
	for i, c := range cols {
		if c.index >= v.NumField() {
			continue
		}
		fv := indirect(v.Field(c.index))
		if !fv.IsValid() {
			continue
		}
		out[i] = fmt.Sprint(fv.Interface())
	}
	return out
}
