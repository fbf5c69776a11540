package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/logger"
	"github.com/yourusername/invoice-ledger/models"
	"github.com/yourusername/invoice-ledger/utils"
)

type MockExtractor struct {
	ExtractFunc func(ctx context.Context, document []byte) (*utils.RawExtraction, error)
}

func (m *MockExtractor) Extract(ctx context.Context, document []byte) (*utils.RawExtraction, error) {
	return m.ExtractFunc(ctx, document)
}

func strPtr(s string) *string { return &s }

func rawRow(amount string) map[string]string {
	return map[string]string{
		"description":      "Amoxicillin 250",
		"hsn_sac":          "3004",
		"expiry":           "01/26",
		"quantity":         "10",
		"deal":             "1",
		"total_quantity":   "11",
		"mrp":              "1,250.00",
		"tax":              "12",
		"discount_percent": "5",
		"amount":           amount,
	}
}

func TestParseExtraction(t *testing.T) {
	t.Run("Types fields and rows", func(t *testing.T) {
		out, err := ParseExtraction(&utils.RawExtraction{
			Fields: map[string]*string{
				utils.FieldInvoiceNumber: strPtr("INV001"),
				utils.FieldSubTotal:      strPtr("1,030.50"),
				utils.FieldDiscount:      nil,
				utils.FieldGrandTotal:    strPtr("1030.50"),
			},
			Items: []map[string]string{rawRow("1,030.50")},
		})
		require.NoError(t, err)

		assert.Equal(t, "INV001", *out.InvoiceData.InvoiceNumber)
		assert.Nil(t, out.InvoiceData.InvoiceDate)
		assert.Nil(t, out.InvoiceData.Discount)
		require.NotNil(t, out.InvoiceData.SubTotal)
		assertMoney(t, "1030.50", *out.InvoiceData.SubTotal)
		require.Len(t, out.Items, 1)
		assertMoney(t, "1250", out.Items[0].MRP)
		assertMoney(t, "1030.50", out.Items[0].Amount)
		assertMoney(t, "11", out.Items[0].TotalQuantity)
		assert.Equal(t, "Amoxicillin 250", out.Items[0].Description)
	})

	t.Run("Nothing found", func(t *testing.T) {
		out, err := ParseExtraction(&utils.RawExtraction{})
		require.NoError(t, err)
		assert.Nil(t, out.InvoiceData.InvoiceNumber)
		assert.Empty(t, out.Items)
	})

	t.Run("Malformed header number", func(t *testing.T) {
		_, err := ParseExtraction(&utils.RawExtraction{
			Fields: map[string]*string{utils.FieldGrandTotal: strPtr("1.2.3")},
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
		assert.Equal(t, "grand_total", ierr.SafeDetails(err)["field"])
	})

	t.Run("Malformed row number", func(t *testing.T) {
		_, err := ParseExtraction(&utils.RawExtraction{
			Items: []map[string]string{rawRow("10"), rawRow("n/a")},
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
		details := ierr.SafeDetails(err)
		assert.Equal(t, "amount", details["field"])
		assert.EqualValues(t, 1, details["row"])
	})
}

func TestExtractFromDocument(t *testing.T) {
	t.Run("Never persists", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db, &MockExtractor{
			ExtractFunc: func(ctx context.Context, document []byte) (*utils.RawExtraction, error) {
				assert.Equal(t, []byte("%PDF-1.4"), document)
				return &utils.RawExtraction{
					Fields: map[string]*string{utils.FieldInvoiceNumber: strPtr("INV9")},
					Items:  []map[string]string{rawRow("10")},
				}, nil
			},
		}, logger.NewNop())

		out, err := svc.ExtractFromDocument(context.Background(), []byte("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, "INV9", *out.InvoiceData.InvoiceNumber)
		assert.Len(t, out.Items, 1)

		var count int64
		db.Model(&models.Invoice{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Unreadable document", func(t *testing.T) {
		svc := NewInvoiceService(nil, &MockExtractor{
			ExtractFunc: func(ctx context.Context, document []byte) (*utils.RawExtraction, error) {
				return nil, errors.New("malformed PDF: missing xref")
			},
		}, logger.NewNop())

		_, err := svc.ExtractFromDocument(context.Background(), []byte("junk"))
		require.Error(t, err)
		assert.True(t, ierr.Is(err, ierr.ErrExtraction))
		assert.Equal(t, "Error processing PDF", ierr.DisplayMessage(err))
	})
}
