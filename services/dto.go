package services

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/invoice-ledger/models"
)

type ItemInput struct {
	Description     string          `json:"description"`
	HsnSac          string          `json:"hsn_sac"`
	Expiry          string          `json:"expiry"`
	Quantity        decimal.Decimal `json:"quantity" binding:"gte=0"`
	Deal            decimal.Decimal `json:"deal" binding:"gte=0"`
	TotalQuantity   decimal.Decimal `json:"total_quantity" binding:"gte=0"`
	MRP             decimal.Decimal `json:"mrp" binding:"gte=0"`
	Tax             decimal.Decimal `json:"tax" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"gte=0"`
	Amount          decimal.Decimal `json:"amount"`
}

func (in ItemInput) toModel(invoiceID uint) models.InvoiceItem {
	return models.InvoiceItem{
		InvoiceID:       invoiceID,
		Description:     in.Description,
		HsnSac:          in.HsnSac,
		Expiry:          in.Expiry,
		Quantity:        in.Quantity,
		Deal:            in.Deal,
		TotalQuantity:   in.TotalQuantity,
		MRP:             in.MRP,
		Tax:             in.Tax,
		DiscountPercent: in.DiscountPercent,
		Amount:          in.Amount,
	}
}

// CreateInvoiceInput carries the invoice as submitted. Its totals are stored
// as given.
type CreateInvoiceInput struct {
	InvoiceNumber  string          `json:"invoice_number" binding:"required"`
	InvoiceDate    string          `json:"invoice_date"`
	VendorName     string          `json:"vendor_name"`
	SubTotal       decimal.Decimal `json:"sub_total"`
	Discount       decimal.Decimal `json:"discount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	EwaybillNumber *string         `json:"ewaybill_number"`
	Items          []ItemInput     `json:"items" binding:"dive"`
}

// InvoicePatch is a sparse update: nil fields are left untouched.
type InvoicePatch struct {
	InvoiceNumber  *string          `json:"invoice_number"`
	InvoiceDate    *string          `json:"invoice_date"`
	VendorName     *string          `json:"vendor_name"`
	SubTotal       *decimal.Decimal `json:"sub_total"`
	Discount       *decimal.Decimal `json:"discount"`
	GrandTotal     *decimal.Decimal `json:"grand_total"`
	EwaybillNumber *string          `json:"ewaybill_number"`
}

// Columns returns the column updates named by the patch.
func (p InvoicePatch) Columns() map[string]interface{} {
	columns := map[string]interface{}{}
	if p.InvoiceNumber != nil {
		columns["invoice_number"] = *p.InvoiceNumber
	}
	if p.InvoiceDate != nil {
		columns["invoice_date"] = *p.InvoiceDate
	}
	if p.VendorName != nil {
		columns["vendor_name"] = *p.VendorName
	}
	if p.SubTotal != nil {
		columns["sub_total"] = *p.SubTotal
	}
	if p.Discount != nil {
		columns["discount"] = *p.Discount
	}
	if p.GrandTotal != nil {
		columns["grand_total"] = *p.GrandTotal
	}
	if p.EwaybillNumber != nil {
		columns["ewaybill_number"] = *p.EwaybillNumber
	}
	return columns
}

// ExtractedInvoice is extraction output after typing. It is a draft for the
// caller to review and submit; nothing here has been stored.
type ExtractedInvoice struct {
	InvoiceData ExtractedFields `json:"invoice_data"`
	Items       []ItemInput     `json:"items"`
}

type ExtractedFields struct {
	InvoiceNumber  *string          `json:"invoice_number"`
	InvoiceDate    *string          `json:"invoice_date"`
	VendorName     *string          `json:"vendor_name"`
	SubTotal       *decimal.Decimal `json:"sub_total"`
	Discount       *decimal.Decimal `json:"discount"`
	GrandTotal     *decimal.Decimal `json:"grand_total"`
	EwaybillNumber *string          `json:"ewaybill_number"`
}
