package handlers

import (
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"github.com/shopspring/decimal"
)

// View-models collapse every Valuation pair to the single price set the
// requesting user type is allowed to see. Selection happens here and only
// here; everything below the handlers works on pairs.

type saleItemView struct {
	ID           int             `json:"id"`
	ProductId    int             `json:"product_id"`
	VariantId    int             `json:"variant_id"`
	Unit         string          `json:"unit"`
	UnitQuantity decimal.Decimal `json:"unit_quantity"`
	BaseQuantity decimal.Decimal `json:"base_quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	ItemType     models.ItemType `json:"item_type"`
}

type saleView struct {
	ID         int                      `json:"id"`
	OutletId   int                      `json:"outlet_id"`
	WarehouseId int                     `json:"warehouse_id"`
	CustomerId int                      `json:"customer_id"`
	InvoiceNo  string                   `json:"invoice_no"`
	SaleDate   time.Time                `json:"sale_date"`
	SubTotal   decimal.Decimal          `json:"sub_total"`
	Discount   decimal.Decimal          `json:"discount"`
	VatTax     decimal.Decimal          `json:"vat_tax"`
	GrandTotal decimal.Decimal          `json:"grand_total"`
	PaidAmount decimal.Decimal          `json:"paid_amount"`
	DueAmount  decimal.Decimal          `json:"due_amount"`
	Status     models.TransactionStatus `json:"status"`
	Items      []saleItemView           `json:"items"`
	CreatedAt  time.Time                `json:"created_at"`
}

func newSaleView(s *models.Sale, view models.ValuationView) saleView {
	items := make([]saleItemView, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, saleItemView{
			ID:           item.ID,
			ProductId:    item.ProductId,
			VariantId:    item.VariantId,
			Unit:         item.Unit,
			UnitQuantity: item.UnitQuantity,
			BaseQuantity: item.BaseQuantity,
			UnitPrice:    item.UnitPrice.View(view),
			TotalPrice:   item.TotalPrice.View(view),
			ItemType:     item.ItemType,
		})
	}
	return saleView{
		ID:          s.ID,
		OutletId:    s.OutletId,
		WarehouseId: s.WarehouseId,
		CustomerId:  s.CustomerId,
		InvoiceNo:   s.InvoiceNo,
		SaleDate:    s.SaleDate,
		SubTotal:    s.SubTotal.View(view),
		Discount:    s.Discount.View(view),
		VatTax:      s.VatTax.View(view),
		GrandTotal:  s.GrandTotal.View(view),
		PaidAmount:  s.PaidAmount.View(view),
		DueAmount:   s.DueAmount.View(view),
		Status:      s.Status,
		Items:       items,
		CreatedAt:   s.CreatedAt,
	}
}

type purchaseItemView struct {
	ID           int             `json:"id"`
	ProductId    int             `json:"product_id"`
	VariantId    int             `json:"variant_id"`
	Unit         string          `json:"unit"`
	UnitQuantity decimal.Decimal `json:"unit_quantity"`
	BaseQuantity decimal.Decimal `json:"base_quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	ItemType     models.ItemType `json:"item_type"`
}

type purchaseView struct {
	ID           int                      `json:"id"`
	OutletId     int                      `json:"outlet_id"`
	WarehouseId  int                      `json:"warehouse_id"`
	SupplierId   int                      `json:"supplier_id"`
	PurchaseNo   string                   `json:"purchase_no"`
	PurchaseDate time.Time                `json:"purchase_date"`
	SubTotal     decimal.Decimal          `json:"sub_total"`
	Discount     decimal.Decimal          `json:"discount"`
	VatTax       decimal.Decimal          `json:"vat_tax"`
	GrandTotal   decimal.Decimal          `json:"grand_total"`
	PaidAmount   decimal.Decimal          `json:"paid_amount"`
	DueAmount    decimal.Decimal          `json:"due_amount"`
	Status       models.TransactionStatus `json:"status"`
	Items        []purchaseItemView       `json:"items"`
	CreatedAt    time.Time                `json:"created_at"`
}

func newPurchaseView(p *models.Purchase, view models.ValuationView) purchaseView {
	items := make([]purchaseItemView, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, purchaseItemView{
			ID:           item.ID,
			ProductId:    item.ProductId,
			VariantId:    item.VariantId,
			Unit:         item.Unit,
			UnitQuantity: item.UnitQuantity,
			BaseQuantity: item.BaseQuantity,
			UnitPrice:    item.UnitPrice.View(view),
			TotalPrice:   item.TotalPrice.View(view),
			SalePrice:    item.SalePrice,
			ItemType:     item.ItemType,
		})
	}
	return purchaseView{
		ID:           p.ID,
		OutletId:     p.OutletId,
		WarehouseId:  p.WarehouseId,
		SupplierId:   p.SupplierId,
		PurchaseNo:   p.PurchaseNo,
		PurchaseDate: p.PurchaseDate,
		SubTotal:     p.SubTotal.View(view),
		Discount:     p.Discount.View(view),
		VatTax:       p.VatTax.View(view),
		GrandTotal:   p.GrandTotal.View(view),
		PaidAmount:   p.PaidAmount.View(view),
		DueAmount:    p.DueAmount.View(view),
		Status:       p.Status,
		Items:        items,
		CreatedAt:    p.CreatedAt,
	}
}

type salesReturnView struct {
	ID               int                 `json:"id"`
	SaleId           int                 `json:"sale_id"`
	CustomerId       int                 `json:"customer_id"`
	ReturnNo         string              `json:"return_no"`
	ReturnType       models.ReturnType   `json:"return_type"`
	ReturnTotal      decimal.Decimal     `json:"return_total"`
	ReplacementTotal decimal.Decimal     `json:"replacement_total"`
	Status           models.ReturnStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
}

func newSalesReturnView(r *models.SalesReturn, view models.ValuationView) salesReturnView {
	return salesReturnView{
		ID:               r.ID,
		SaleId:           r.SaleId,
		CustomerId:       r.CustomerId,
		ReturnNo:         r.ReturnNo,
		ReturnType:       r.ReturnType,
		ReturnTotal:      r.ReturnTotal.View(view),
		ReplacementTotal: r.ReplacementTotal.View(view),
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
}

type purchaseReturnView struct {
	ID          int                 `json:"id"`
	PurchaseId  int                 `json:"purchase_id"`
	SupplierId  int                 `json:"supplier_id"`
	ReturnNo    string              `json:"return_no"`
	ReturnType  models.ReturnType   `json:"return_type"`
	ReturnTotal decimal.Decimal     `json:"return_total"`
	Status      models.ReturnStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

func newPurchaseReturnView(r *models.PurchaseReturn, view models.ValuationView) purchaseReturnView {
	return purchaseReturnView{
		ID:          r.ID,
		PurchaseId:  r.PurchaseId,
		SupplierId:  r.SupplierId,
		ReturnNo:    r.ReturnNo,
		ReturnType:  r.ReturnType,
		ReturnTotal: r.ReturnTotal.View(view),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
}
