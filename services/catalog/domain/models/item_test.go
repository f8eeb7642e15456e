package models

import (
	"testing"
)

func strptr(s string) *string   { return &s }
func f64ptr(v float64) *float64 { return &v }
func boolptr(v bool) *bool      { return &v }

func TestPatchNormalize_TrimsStrings(t *testing.T) {
	p := &Patch{
		Name:        strptr("  Widget  "),
		Description: strptr("\ta fine widget  "),
		SKU:         strptr(" SKU-1 "),
		Category:    strptr(" books "),
	}
	p.Normalize()

	if *p.Name != "Widget" {
		t.Errorf("name not trimmed: %q", *p.Name)
	}
	if *p.SKU != "SKU-1" {
		t.Errorf("sku not trimmed: %q", *p.SKU)
	}
	if *p.Category != "books" {
		t.Errorf("category not trimmed: %q", *p.Category)
	}
}

func TestPatchNormalize_ClampsNegativePrice(t *testing.T) {
	p := &Patch{Price: f64ptr(-5)}
	p.Normalize()
	if *p.Price != 0 {
		t.Errorf("negative price must clamp to zero, got %v", *p.Price)
	}

	p = &Patch{Price: f64ptr(9.99)}
	p.Normalize()
	if *p.Price != 9.99 {
		t.Errorf("positive price must be untouched, got %v", *p.Price)
	}
}

func TestPatchNormalize_TruncatesQuantity(t *testing.T) {
	p := &Patch{Quantity: f64ptr(3.9)}
	p.Normalize()
	if *p.Quantity != 3 {
		t.Errorf("quantity must truncate toward zero, got %v", *p.Quantity)
	}
}

func TestNewItem_Defaults(t *testing.T) {
	item := NewItem(&Patch{Name: strptr("Widget"), Price: f64ptr(10)})

	if item.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("id must be generated")
	}
	if item.Category != CategoryOther {
		t.Errorf("default category must be other, got %q", item.Category)
	}
	if !item.InStock {
		t.Error("items default to in stock")
	}
	if item.Quantity != 0 {
		t.Errorf("default quantity must be 0, got %d", item.Quantity)
	}
	if item.Metadata == nil || len(item.Metadata) != 0 {
		t.Errorf("metadata must default to an empty map, got %v", item.Metadata)
	}
	if !item.CreatedAt.Equal(item.UpdatedAt) {
		t.Error("createdAt and updatedAt must match on creation")
	}
}

func TestApply_PartialFields(t *testing.T) {
	item := NewItem(&Patch{Name: strptr("Widget"), Price: f64ptr(10), SKU: strptr("A-1")})
	before := item.UpdatedAt

	item.Apply(&Patch{Price: f64ptr(12), InStock: boolptr(false)})

	if item.Name != "Widget" {
		t.Errorf("unsupplied field changed: %q", item.Name)
	}
	if item.Price != 12 {
		t.Errorf("price not applied: %v", item.Price)
	}
	if item.InStock {
		t.Error("stock flag not applied")
	}
	if item.UpdatedAt.Before(before) {
		t.Error("updatedAt must be refreshed")
	}
}

func TestApply_EmptySKUClears(t *testing.T) {
	item := NewItem(&Patch{Name: strptr("Widget"), Price: f64ptr(10), SKU: strptr("A-1")})
	item.Apply(&Patch{SKU: strptr("")})
	if item.SKU != nil {
		t.Errorf("empty sku must clear to absent, got %q", *item.SKU)
	}

	item.Apply(&Patch{Description: strptr("")})
	if item.Description != nil {
		t.Errorf("empty description must clear to absent, got %q", *item.Description)
	}
}

func TestApply_EmptyCategoryKeepsCurrent(t *testing.T) {
	item := NewItem(&Patch{Name: strptr("Widget"), Price: f64ptr(10), Category: strptr("")})
	if item.Category != CategoryOther {
		t.Errorf("empty category on create must leave the default, got %q", item.Category)
	}

	item = NewItem(&Patch{Name: strptr("Widget"), Price: f64ptr(10), Category: strptr("books")})
	item.Apply(&Patch{Category: strptr("")})
	if item.Category != CategoryBooks {
		t.Errorf("empty category on update must keep the current value, got %q", item.Category)
	}

	item.Apply(&Patch{Category: strptr("clothing")})
	if item.Category != CategoryClothing {
		t.Errorf("non-empty category must still apply, got %q", item.Category)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(string(c)) {
			t.Errorf("%q must be valid", c)
		}
	}
	if ValidCategory("toys") {
		t.Error("unknown category must be invalid")
	}
	if ValidCategory("") {
		t.Error("empty category must be invalid")
	}
}
