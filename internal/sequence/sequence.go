package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	dbpkg "github.com/dvthanh/garahub-backend/pkg/db"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// Scopes each own an independent persisted counter.
const (
	ScopeCustomer       = "customer"
	ScopeVehicle        = "vehicle"
	ScopeQuotation      = "quotation"
	ScopeRepairOrder    = "repair_order"
	ScopeInvoice        = "invoice"
	ScopeCatalogService = "catalog_service"
)

const codeWidth = 4

// fallbackSKUPrefix is used when a category name yields no usable initials.
const fallbackSKUPrefix = "VT"

var prefixByScope = map[string]string{
	ScopeCustomer:       "KH",
	ScopeVehicle:        "XE",
	ScopeQuotation:      "BG",
	ScopeRepairOrder:    "SC",
	ScopeInvoice:        "HD",
	ScopeCatalogService: "DV",
}

// Generator allocates monotonically increasing codes per scope. Counters are
// persisted and only ever move forward, so deleted records never free codes.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Next reserves one value from the scope's counter and formats it with the
// given prefix. It must run inside the caller's transaction so the counter
// advance commits together with the record that uses the code.
func (g *Generator) Next(ctx context.Context, tx *gorm.DB, scope, prefix string) (string, error) {
	if tx == nil {
		return "", errors.New("transaction required")
	}
	if scope == "" {
		return "", errors.New("scope required")
	}

	// UPDATE before SELECT takes the row lock on engines that support it;
	// engines that serialize writers need no lock at all.
	res := tx.WithContext(ctx).
		Model(&models.CodeSequence{}).
		Where("scope = ?", scope).
		Update("next_value", gorm.Expr("next_value + 1"))
	if res.Error != nil {
		return "", res.Error
	}

	if res.RowsAffected == 0 {
		row := models.CodeSequence{Scope: scope, NextValue: 2}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			if !dbpkg.IsUniqueViolation(err, "") {
				return "", err
			}
			// Lost the creation race; bump the now existing row instead.
			return g.Next(ctx, tx, scope, prefix)
		}
		return Format(prefix, 1), nil
	}

	var seq models.CodeSequence
	if err := tx.WithContext(ctx).Where("scope = ?", scope).First(&seq).Error; err != nil {
		return "", err
	}
	return Format(prefix, seq.NextValue-1), nil
}

// NextForScope is Next with the standard prefix for a known scope.
func (g *Generator) NextForScope(ctx context.Context, tx *gorm.DB, scope string) (string, error) {
	prefix, ok := prefixByScope[scope]
	if !ok {
		return "", fmt.Errorf("unknown sequence scope %q", scope)
	}
	return g.Next(ctx, tx, scope, prefix)
}

// NextSKU reserves a SKU for an inventory item. Each category prefix has its
// own counter so SKUs stay dense within a category.
func (g *Generator) NextSKU(ctx context.Context, tx *gorm.DB, categoryName string) (string, error) {
	prefix := SKUPrefix(categoryName)
	return g.Next(ctx, tx, "sku:"+prefix, prefix)
}

// Format renders a prefixed, zero-padded code such as KH0001.
func Format(prefix string, value int64) string {
	return fmt.Sprintf("%s%0*d", prefix, codeWidth, value)
}

// SKUPrefix maps an inventory category name to a two-letter SKU prefix.
// Common part and labor categories get fixed prefixes; other categories use
// the initials of their first two words.
func SKUPrefix(categoryName string) string {
	name := strings.ToLower(strings.TrimSpace(categoryName))
	switch {
	case name == "":
		return fallbackSKUPrefix
	case strings.Contains(name, "part") || strings.Contains(name, "phụ tùng") || strings.Contains(name, "phu tung"):
		return "PT"
	case strings.Contains(name, "labor") || strings.Contains(name, "labour") || strings.Contains(name, "nhân công") || strings.Contains(name, "nhan cong"):
		return "NC"
	}

	var initials []rune
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		initials = append(initials, unicode.ToUpper(r))
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return fallbackSKUPrefix
	}
	return string(initials)
}
