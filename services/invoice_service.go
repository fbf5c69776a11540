package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/logger"
	"github.com/yourusername/invoice-ledger/models"
	"github.com/yourusername/invoice-ledger/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceService owns every mutation of invoices and their items. Each
// method is one transaction; operations that add or remove items leave the
// invoice totals equal to the sum of its item amounts minus its discount.
type InvoiceService struct {
	db        *gorm.DB
	extractor utils.InvoiceExtractorInterface
	logger    *logger.Logger
}

func NewInvoiceService(db *gorm.DB, extractor utils.InvoiceExtractorInterface, log *logger.Logger) *InvoiceService {
	return &InvoiceService{
		db:        db,
		extractor: extractor,
		logger:    log,
	}
}

// CreateInvoice stores the invoice and its items. The submitted totals are
// trusted as-is.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	var created *models.Invoice
	err := RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		invoice := models.Invoice{
			InvoiceNumber:  in.InvoiceNumber,
			InvoiceDate:    in.InvoiceDate,
			VendorName:     in.VendorName,
			SubTotal:       in.SubTotal,
			Discount:       in.Discount,
			GrandTotal:     in.GrandTotal,
			EwaybillNumber: in.EwaybillNumber,
		}
		if err := tx.Omit(clause.Associations).Create(&invoice).Error; err != nil {
			return err
		}

		if len(in.Items) > 0 {
			items := make([]models.InvoiceItem, 0, len(in.Items))
			for _, item := range in.Items {
				items = append(items, item.toModel(invoice.ID))
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		var err error
		created, err = findInvoice(tx, invoice.ID)
		return err
	})
	if err != nil {
		s.logger.Errorw("failed to create invoice", "invoice_number", in.InvoiceNumber, "error", err)
		return nil, err
	}

	s.logger.Infow("invoice created", "invoice_id", created.ID, "items", len(created.Items))
	return created, nil
}

// GetAllInvoices returns every invoice with its items.
func (s *InvoiceService) GetAllInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID).
		Order("id").
		Find(&invoices).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

// GetInvoiceByID returns one invoice with its items.
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uint) (*models.Invoice, error) {
	invoice, err := findInvoice(s.db.WithContext(ctx), id)
	if err != nil {
		if _, ok := ierr.Classify(err); ok {
			return nil, err
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch invoice").
			Mark(ierr.ErrDatabase)
	}
	return invoice, nil
}

// ListItems returns the items stored for an invoice id, which may be empty.
func (s *InvoiceService) ListItems(ctx context.Context, invoiceID uint) ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch invoice items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

// UpdateInvoiceFields overwrites the fields present in the patch. Totals are
// not reconciled: sub_total and grand_total given here are stored verbatim
// and RecomputeTotals re-syncs them from the items.
func (s *InvoiceService) UpdateInvoiceFields(ctx context.Context, id uint, patch InvoicePatch) (*models.Invoice, error) {
	columns := patch.Columns()
	if len(columns) == 0 {
		return nil, ierr.NewError("empty invoice patch").
			WithHint("No fields to update").
			Mark(ierr.ErrValidation)
	}

	var updated *models.Invoice
	err := RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := lockInvoice(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Invoice{ID: id}).Updates(columns).Error; err != nil {
			return err
		}
		var err error
		updated, err = findInvoice(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !updated.TotalsConsistent() {
		s.logger.Warnw("invoice totals no longer match its items",
			"invoice_id", id,
			"sub_total", updated.SubTotal.String(),
			"grand_total", updated.GrandTotal.String(),
		)
	}
	return updated, nil
}

// AddInvoiceItem stores a new item and recomputes the invoice totals from
// all of its items. It returns the new item id.
func (s *InvoiceService) AddInvoiceItem(ctx context.Context, invoiceID uint, in ItemInput) (uint, error) {
	var itemID uint
	err := RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, invoiceID)
		if err != nil {
			return err
		}

		item := in.toModel(invoiceID)
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		itemID = item.ID

		return resumTotals(tx, invoice)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Infow("invoice item added", "invoice_id", invoiceID, "item_id", itemID)
	return itemID, nil
}

// DeleteInvoice removes the invoice and all of its items.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uint) error {
	err := RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := lockInvoice(tx, id); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, id).Error
	})
	if err != nil {
		return err
	}

	s.logger.Infow("invoice deleted", "invoice_id", id)
	return nil
}

// DeleteInvoiceItem removes one item and recomputes its invoice's totals by
// summing the remaining items.
func (s *InvoiceService) DeleteInvoiceItem(ctx context.Context, itemID uint) error {
	var invoiceID uint
	err := RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		var item models.InvoiceItem
		if err := tx.Select("id", "invoice_id", "amount").First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ierr.WithError(err).
					WithHint("Invoice item not found").
					Mark(ierr.ErrNotFound)
			}
			return err
		}
		invoiceID = item.InvoiceID

		invoice, err := lockInvoice(tx, item.InvoiceID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return ierr.WithError(err).
					WithHint("Invoice not found").
					WithReportableDetails(map[string]any{"invoice_id": item.InvoiceID, "item_id": itemID}).
					Mark(ierr.ErrNotFound)
			}
			return err
		}

		// the item read is not locked; a concurrent delete may have won
		res := tx.Delete(&models.InvoiceItem{}, itemID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ierr.NewError("invoice item already deleted").
				WithHint("Invoice item not found").
				Mark(ierr.ErrNotFound)
		}
		return resumTotals(tx, invoice)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("invoice item deleted", "invoice_id", invoiceID, "item_id", itemID)
	return nil
}

// RecomputeTotals re-syncs sub_total and grand_total with the stored items.
func (s *InvoiceService) RecomputeTotals(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		locked, err := lockInvoice(tx, invoiceID)
		if err != nil {
			return err
		}
		if err := resumTotals(tx, locked); err != nil {
			return err
		}
		invoice, err = findInvoice(tx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func findInvoice(db *gorm.DB, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := db.Preload("Items", orderByID).First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHint("Invoice not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return &invoice, nil
}

// lockInvoice reads the invoice row for update so concurrent item changes on
// the same invoice serialize on it.
func lockInvoice(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHint("Invoice not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return &invoice, nil
}

// resumTotals writes totals computed from every item currently stored for
// the invoice and the invoice's discount.
func resumTotals(tx *gorm.DB, invoice *models.Invoice) error {
	var amounts []decimal.Decimal
	err := tx.Model(&models.InvoiceItem{}).
		Where("invoice_id = ?", invoice.ID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return err
	}

	invoice.SubTotal, invoice.GrandTotal = models.ReconcileTotals(amounts, invoice.Discount)
	return tx.Model(&models.Invoice{ID: invoice.ID}).Updates(map[string]interface{}{
		"sub_total":   invoice.SubTotal,
		"grand_total": invoice.GrandTotal,
	}).Error
}
