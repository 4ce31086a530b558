package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultCategoryColor is used for uncategorized rows and categories without a color.
const DefaultCategoryColor = "#888"

// UncategorizedName labels transactions without a category.
const UncategorizedName = "ไม่ระบุหมวดหมู่"

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Category groups transactions of one type.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      TransactionType
	Color     string
	ID        int
}

// Validate checks the category name, type and color.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("invalid category type %q", c.Type)
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("invalid color %q: want #rgb or #rrggbb", c.Color)
	}
	return nil
}
