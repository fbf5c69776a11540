package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem is one priced line of an invoice. Amount is the only field
// that feeds the invoice totals.
type InvoiceItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	InvoiceID       uint            `gorm:"not null;index" json:"invoice_id"`
	Description     string          `gorm:"type:text" json:"description"`
	HsnSac          string          `gorm:"size:50" json:"hsn_sac"`
	Expiry          string          `gorm:"size:50" json:"expiry"`
	Quantity        decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"quantity"`
	Deal            decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"deal"`
	TotalQuantity   decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"total_quantity"`
	MRP             decimal.Decimal `gorm:"column:mrp;type:numeric(14,2);not null;default:0" json:"mrp"`
	Tax             decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"tax"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"discount_percent"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount"`
}

// TableName overrides the table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
