package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int             `gorm:"primary_key" json:"id"`
	BusinessId        string          `gorm:"index;not null" json:"business_id"`
	Name              string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Code              string          `gorm:"index;size:50;not null" json:"code" binding:"required"`
	Description       string          `gorm:"type:text" json:"description"`
	UnitType          UnitType        `gorm:"size:12;not null" json:"unit_type" binding:"required"`
	DefaultUnit       string          `gorm:"size:20;not null" json:"default_unit" binding:"required"`
	MinSaleUnit       string          `gorm:"size:20" json:"min_sale_unit"`
	IsFractionAllowed *bool           `gorm:"not null;default:false" json:"is_fraction_allowed"`
	SalesPrice        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	PurchasePrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	Variants          []ProductVariant `gorm:"foreignkey:ProductId" json:"variants"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// AttributeValues stores a variant's attribute name => value mapping as JSON.
type AttributeValues map[string]string

func (a AttributeValues) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AttributeValues) Scan(value interface{}) error {
	if value == nil {
		*a = AttributeValues{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into AttributeValues", value)
	}
}

// ProductVariant is immutable once referenced by a transaction line;
// a replaced variant is deactivated, never hard-deleted.
type ProductVariant struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id"`
	ProductId       int             `gorm:"index;not null" json:"product_id"`
	AttributeValues AttributeValues `gorm:"type:text" json:"attribute_values"`
	Sku             string          `gorm:"index;size:100;not null" json:"sku"`
	IsActive        *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name              string            `json:"name" binding:"required"`
	Code              string            `json:"code" binding:"required"`
	Description       string            `json:"description"`
	UnitType          UnitType          `json:"unit_type" binding:"required"`
	DefaultUnit       string            `json:"default_unit" binding:"required"`
	MinSaleUnit       string            `json:"min_sale_unit"`
	IsFractionAllowed bool              `json:"is_fraction_allowed"`
	SalesPrice        decimal.Decimal   `json:"sales_price"`
	PurchasePrice     decimal.Decimal   `json:"purchase_price"`
	Variants          []NewProductVariant `json:"variants"`
}

type NewProductVariant struct {
	AttributeValues AttributeValues `json:"attribute_values" binding:"required"`
}

// attributeShortCode compresses an attribute value to at most three
// uppercase alphanumerics for SKU assembly, e.g. "Large" -> "LAR".
func attributeShortCode(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 3 {
				break
			}
		}
	}
	return b.String()
}

// DeriveSku builds the variant SKU from the product code and the sorted
// short-codes of its attribute values.
func DeriveSku(productCode string, attrs AttributeValues) string {
	codes := make([]string, 0, len(attrs))
	for _, v := range attrs {
		codes = append(codes, attributeShortCode(v))
	}
	sort.Strings(codes)
	if len(codes) == 0 {
		return productCode
	}
	return productCode + "-" + strings.Join(codes, "-")
}

func (input *NewProduct) validate(ctx context.Context, businessId string, id int) error {
	if !input.UnitType.Valid() {
		return errors.New("invalid unit type")
	}
	if !KnownUnit(input.UnitType, input.DefaultUnit) {
		return errors.New("unknown default unit for unit type")
	}
	if input.MinSaleUnit != "" && !KnownUnit(input.UnitType, input.MinSaleUnit) {
		return errors.New("unknown min sale unit for unit type")
	}
	if err := utils.ValidateUnique[Product](ctx, businessId, "code", input.Code, id); err != nil {
		return err
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	variants := make([]ProductVariant, 0, len(input.Variants))
	for _, v := range input.Variants {
		variants = append(variants, ProductVariant{
			BusinessId:      businessId,
			AttributeValues: v.AttributeValues,
			Sku:             DeriveSku(input.Code, v.AttributeValues),
			IsActive:        utils.NewTrue(),
		})
	}

	product := Product{
		BusinessId:        businessId,
		Name:              input.Name,
		Code:              input.Code,
		Description:       input.Description,
		UnitType:          input.UnitType,
		DefaultUnit:       input.DefaultUnit,
		MinSaleUnit:       input.MinSaleUnit,
		IsFractionAllowed: &input.IsFractionAllowed,
		SalesPrice:        input.SalesPrice,
		PurchasePrice:     input.PurchasePrice,
		Variants:          variants,
		IsActive:          utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	var product Product
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Variants").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &product, nil
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	var products []*Product
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Variants").Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func GetProductVariant(ctx context.Context, id int) (*ProductVariant, error) {
	var variant ProductVariant
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&variant).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &variant, nil
}

// ReplaceProductVariant retires the current variant and creates its successor.
// The retired row stays behind any transaction lines that reference it.
func ReplaceProductVariant(ctx context.Context, variantId int, input *NewProductVariant) (*ProductVariant, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	old, err := utils.FetchModelForChange[ProductVariant](ctx, businessId, variantId)
	if err != nil {
		return nil, err
	}
	product, err := GetProduct(ctx, old.ProductId)
	if err != nil {
		return nil, errors.New("product not found")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&ProductVariant{}).Where("id = ?", old.ID).
		Update("is_active", false).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	replacement := ProductVariant{
		BusinessId:      businessId,
		ProductId:       old.ProductId,
		AttributeValues: input.AttributeValues,
		Sku:             DeriveSku(product.Code, input.AttributeValues),
		IsActive:        utils.NewTrue(),
	}
	if err := tx.WithContext(ctx).Create(&replacement).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &replacement, nil
}
