package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/services"
)

type InvoiceHandler struct {
	service        *services.InvoiceService
	maxUploadBytes int64
}

func NewInvoiceHandler(service *services.InvoiceService, maxUploadBytes int64) *InvoiceHandler {
	return &InvoiceHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req services.CreateInvoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}

	invoice, err := h.service.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invoice created successfully",
		"invoice": invoice,
		"items":   invoice.Items,
	})
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.service.GetAllInvoices(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	invoice, err := h.service.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice": invoice,
		"items":   invoice.Items,
	})
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var patch services.InvoicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(invalidRequest(err))
		return
	}

	invoice, err := h.service.UpdateInvoiceFields(c.Request.Context(), id, patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice updated successfully",
		"invoice": invoice,
		"items":   invoice.Items,
	})
}

func (h *InvoiceHandler) RecomputeTotals(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	invoice, err := h.service.RecomputeTotals(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice totals recomputed",
		"invoice": invoice,
		"items":   invoice.Items,
	})
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteInvoice(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice and related items deleted successfully"})
}

func (h *InvoiceHandler) CreateInvoiceItem(c *gin.Context) {
	invoiceID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req services.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}

	itemID, err := h.service.AddInvoiceItem(c.Request.Context(), invoiceID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invoice item created successfully",
		"item_id": itemID,
	})
}

func (h *InvoiceHandler) ListInvoiceItems(c *gin.Context) {
	invoiceID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), invoiceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *InvoiceHandler) DeleteInvoiceItem(c *gin.Context) {
	itemID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteInvoiceItem(c.Request.Context(), itemID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice item deleted successfully and invoice totals updated"})
}

// UploadPDF extracts a draft invoice from an uploaded PDF. Nothing is stored.
func (h *InvoiceHandler) UploadPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("A PDF file is required in the 'file' field").
			Mark(ierr.ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Error processing PDF").
			Mark(ierr.ErrExtraction))
		return
	}
	defer file.Close()

	document, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Error processing PDF").
			Mark(ierr.ErrExtraction))
		return
	}
	if int64(len(document)) > h.maxUploadBytes {
		c.Error(ierr.NewError("upload too large").
			WithHintf("File exceeds the %d byte limit", h.maxUploadBytes).
			Mark(ierr.ErrValidation))
		return
	}
	if !filetype.Is(document, "pdf") {
		c.Error(ierr.NewError("upload is not a pdf").
			WithHint("Uploaded file is not a PDF").
			WithReportableDetails(map[string]any{"filename": fileHeader.Filename}).
			Mark(ierr.ErrValidation))
		return
	}

	extracted, err := h.service.ExtractFromDocument(c.Request.Context(), document)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "PDF processed successfully",
		"invoice_data": extracted.InvoiceData,
		"items":        extracted.Items,
	})
}

func pathID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, ierr.NewError("invalid path id").
			WithHintf("Invalid %s: %q", name, raw).
			Mark(ierr.ErrValidation)
	}
	return uint(id), nil
}
