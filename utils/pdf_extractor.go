package utils

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/samber/lo"
)

// Keys of RawExtraction.Fields.
const (
	FieldInvoiceNumber  = "invoice_number"
	FieldInvoiceDate    = "invoice_date"
	FieldVendorName     = "vendor_name"
	FieldSubTotal       = "sub_total"
	FieldDiscount       = "discount"
	FieldGrandTotal     = "grand_total"
	FieldEwaybillNumber = "ewaybill_number"
)

// ItemColumns is the column order of an invoice item table.
var ItemColumns = []string{
	"description", "hsn_sac", "expiry", "quantity", "deal",
	"total_quantity", "mrp", "tax", "discount_percent", "amount",
}

const (
	// horizontal gap, in points, that separates two table cells
	defaultCellGap = 6.0
	// rows with fewer cells are prose, not table rows
	minTableCells = 3
)

type fieldPattern struct {
	field   string
	pattern *regexp.Regexp
}

var invoicePatterns = []fieldPattern{
	{FieldInvoiceNumber, regexp.MustCompile(`Invoice Number[:]?\s*(\w+)`)},
	{FieldInvoiceDate, regexp.MustCompile(`Invoice Date[:]?\s*([A-Za-z]+\s+\d{1,2},\s+\d{4})`)},
	{FieldVendorName, regexp.MustCompile(`Vendor \(Bill from\)\s+([A-Za-z\s.]+)\n`)},
	{FieldSubTotal, regexp.MustCompile(`SUBTOTAL[:]?\s*([\d,.]+)`)},
	{FieldDiscount, regexp.MustCompile(`DISCOUNT[:]?\s*([\d,.]+)`)},
	{FieldGrandTotal, regexp.MustCompile(`GRAND TOTAL[:]?\s*([\d,.]+)`)},
	{FieldEwaybillNumber, regexp.MustCompile(`E-Waybill Number[:]?\s*([A-Z0-9-]+)`)},
}

// RawExtraction is the untyped output of a document extractor. A nil field
// means its pattern was not found.
type RawExtraction struct {
	Fields map[string]*string
	Items  []map[string]string
}

type InvoiceExtractorInterface interface {
	Extract(ctx context.Context, document []byte) (*RawExtraction, error)
}

// Glyph is a run of text on one line with its horizontal position.
type Glyph struct {
	X float64
	W float64
	S string
}

type PDFExtractor struct {
	cellGap float64
}

func NewPDFExtractor() InvoiceExtractorInterface {
	return &PDFExtractor{cellGap: defaultCellGap}
}

// Extract reads header fields from the text of every page and item rows from
// the tables of the first page. Only a document that cannot be opened is an
// error; missing fields and tables yield nil fields and no items.
func (e *PDFExtractor) Extract(ctx context.Context, document []byte) (raw *RawExtraction, err error) {
	// the pdf reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	if reader.NumPage() == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	var text strings.Builder
	var firstPage [][]Glyph
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines, err := pageLines(page)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if i == 1 {
			firstPage = lines
		}
		for _, line := range lines {
			text.WriteString(JoinLine(line))
			text.WriteString("\n")
		}
	}

	rows := lo.Map(firstPage, func(line []Glyph, _ int) []string {
		return GroupCells(line, e.cellGap)
	})

	return &RawExtraction{
		Fields: ParseInvoiceText(text.String()),
		Items:  ItemsFromTables(SplitTables(rows)),
	}, nil
}

// pageLines returns the page's text rows top to bottom, each sorted left to right.
func pageLines(page pdf.Page) ([][]Glyph, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([][]Glyph, 0, len(rows))
	for _, row := range rows {
		line := lo.Map(row.Content, func(t pdf.Text, _ int) Glyph {
			return Glyph{X: t.X, W: t.W, S: t.S}
		})
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		lines = append(lines, line)
	}
	return lines, nil
}

// JoinLine renders a line as text, inserting a space wherever glyphs are not adjacent.
func JoinLine(line []Glyph) string {
	var b strings.Builder
	for i, g := range line {
		if i > 0 && g.X-(line[i-1].X+line[i-1].W) > 0.5 {
			b.WriteString(" ")
		}
		b.WriteString(g.S)
	}
	return b.String()
}

// GroupCells merges the glyphs of a line into cells, starting a new cell when
// the horizontal gap exceeds gap points.
func GroupCells(line []Glyph, gap float64) []string {
	var cells []string
	var current []Glyph
	for i, g := range line {
		if i > 0 && g.X-(line[i-1].X+line[i-1].W) > gap {
			cells = append(cells, strings.TrimSpace(JoinLine(current)))
			current = nil
		}
		current = append(current, g)
	}
	if len(current) > 0 {
		cells = append(cells, strings.TrimSpace(JoinLine(current)))
	}
	return cells
}

// ParseInvoiceText applies the header patterns to the document text.
func ParseInvoiceText(text string) map[string]*string {
	fields := make(map[string]*string, len(invoicePatterns))
	for _, fp := range invoicePatterns {
		match := fp.pattern.FindStringSubmatch(text)
		if match == nil {
			fields[fp.field] = nil
			continue
		}
		value := strings.ReplaceAll(strings.TrimSpace(match[1]), "\n", "")
		fields[fp.field] = &value
	}
	return fields
}

// SplitTables groups consecutive rows with at least minTableCells cells.
func SplitTables(rows [][]string) [][][]string {
	var tables [][][]string
	var current [][]string
	for _, row := range rows {
		if len(row) >= minTableCells {
			current = append(current, row)
			continue
		}
		if len(current) > 0 {
			tables = append(tables, current)
			current = nil
		}
	}
	if len(current) > 0 {
		tables = append(tables, current)
	}
	return tables
}

// ItemsFromTables skips each table's header row and keeps rows that have a
// value for every item column.
func ItemsFromTables(tables [][][]string) []map[string]string {
	items := []map[string]string{}
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		for _, row := range table[1:] {
			if len(row) < len(ItemColumns) {
				continue
			}
			item := make(map[string]string, len(ItemColumns))
			for i, column := range ItemColumns {
				item[column] = strings.TrimSpace(row[i])
			}
			item["description"] = strings.ReplaceAll(item["description"], "\n", " ")
			items = append(items, item)
		}
	}
	return items
}
