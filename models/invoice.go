package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a billing document. SubTotal and GrandTotal are derived from
// Items and Discount; see ReconcileTotals.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	InvoiceNumber  string          `gorm:"size:100;not null;index" json:"invoice_number"`
	InvoiceDate    string          `gorm:"size:50" json:"invoice_date"`
	VendorName     string          `gorm:"size:255" json:"vendor_name"`
	SubTotal       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"sub_total"`
	Discount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount"`
	GrandTotal     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"grand_total"`
	EwaybillNumber *string         `gorm:"size:100" json:"ewaybill_number"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

// ItemAmounts returns the amount of every loaded item, in order.
func (i *Invoice) ItemAmounts() []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(i.Items))
	for _, item := range i.Items {
		amounts = append(amounts, item.Amount)
	}
	return amounts
}

// ApplyTotals recomputes SubTotal and GrandTotal from the loaded items and
// the current discount.
func (i *Invoice) ApplyTotals() {
	i.SubTotal, i.GrandTotal = ReconcileTotals(i.ItemAmounts(), i.Discount)
}

// TotalsConsistent reports whether the stored totals match the loaded items.
func (i *Invoice) TotalsConsistent() bool {
	subTotal, grandTotal := ReconcileTotals(i.ItemAmounts(), i.Discount)
	return i.SubTotal.Equal(subTotal) && i.GrandTotal.Equal(grandTotal)
}
