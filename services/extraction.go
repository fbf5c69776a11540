package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/utils"
)

// ExtractFromDocument runs the extractor over an uploaded document and types
// its output. The result is never stored.
func (s *InvoiceService) ExtractFromDocument(ctx context.Context, document []byte) (*ExtractedInvoice, error) {
	raw, err := s.extractor.Extract(ctx, document)
	if err != nil {
		s.logger.Warnw("document extraction failed", "size", len(document), "error", err)
		if _, ok := ierr.Classify(err); ok {
			return nil, err
		}
		return nil, ierr.WithError(err).
			WithHint("Error processing PDF").
			Mark(ierr.ErrExtraction)
	}

	extracted, err := ParseExtraction(raw)
	if err != nil {
		return nil, err
	}

	missing := lo.Filter(lo.Keys(raw.Fields), func(field string, _ int) bool {
		return raw.Fields[field] == nil
	})
	s.logger.Infow("document extracted", "items", len(extracted.Items), "missing_fields", missing)
	return extracted, nil
}

// ParseExtraction converts raw extractor output into typed values. Absent
// fields stay nil; a value that is present but not a number is a validation
// error.
func ParseExtraction(raw *utils.RawExtraction) (*ExtractedInvoice, error) {
	if raw == nil {
		raw = &utils.RawExtraction{}
	}

	out := &ExtractedInvoice{
		InvoiceData: ExtractedFields{
			InvoiceNumber:  raw.Fields[utils.FieldInvoiceNumber],
			InvoiceDate:    raw.Fields[utils.FieldInvoiceDate],
			VendorName:     raw.Fields[utils.FieldVendorName],
			EwaybillNumber: raw.Fields[utils.FieldEwaybillNumber],
		},
		Items: make([]ItemInput, 0, len(raw.Items)),
	}

	money := []struct {
		field string
		dst   **decimal.Decimal
	}{
		{utils.FieldSubTotal, &out.InvoiceData.SubTotal},
		{utils.FieldDiscount, &out.InvoiceData.Discount},
		{utils.FieldGrandTotal, &out.InvoiceData.GrandTotal},
	}
	for _, m := range money {
		value := raw.Fields[m.field]
		if value == nil {
			continue
		}
		d, err := parseNumber(*value)
		if err != nil {
			return nil, malformedNumber(err, m.field, *value, -1)
		}
		*m.dst = &d
	}

	for i, row := range raw.Items {
		item := ItemInput{
			Description: row["description"],
			HsnSac:      row["hsn_sac"],
			Expiry:      row["expiry"],
		}
		numbers := []struct {
			column string
			dst    *decimal.Decimal
		}{
			{"quantity", &item.Quantity},
			{"deal", &item.Deal},
			{"total_quantity", &item.TotalQuantity},
			{"mrp", &item.MRP},
			{"tax", &item.Tax},
			{"discount_percent", &item.DiscountPercent},
			{"amount", &item.Amount},
		}
		for _, n := range numbers {
			d, err := parseNumber(row[n.column])
			if err != nil {
				return nil, malformedNumber(err, n.column, row[n.column], i)
			}
			*n.dst = d
		}
		out.Items = append(out.Items, item)
	}

	return out, nil
}

// parseNumber accepts thousands separators, e.g. "1,234.50".
func parseNumber(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	return decimal.NewFromString(cleaned)
}

func malformedNumber(err error, field, value string, row int) error {
	details := map[string]any{"field": field, "value": value}
	if row >= 0 {
		details["row"] = row
	}
	return ierr.WithError(err).
		WithHintf("Malformed number in extracted field %s", field).
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
