package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFormatsDocuments(t *testing.T) {
	dir := t.TempDir()
	products := writeFile(t, dir, "products.json", `[{"id":"P1","name":"Phone"}]`)
	orders := writeFile(t, dir, "orders.json", `[{"order_id":"O1"}]`)

	c := Load(products, orders)

	if len(c.Notices()) != 0 {
		t.Fatalf("expected no notices, got %+v", c.Notices())
	}
	want := "[\n  {\n    \"id\": \"P1\",\n    \"name\": \"Phone\"\n  }\n]"
	if c.Products() != want {
		t.Fatalf("unexpected product formatting:\n%s", c.Products())
	}
	if !strings.Contains(c.Orders(), `"order_id": "O1"`) {
		t.Fatalf("unexpected orders: %s", c.Orders())
	}
}

func TestLoadMissingOrdersIsWarning(t *testing.T) {
	dir := t.TempDir()
	products := writeFile(t, dir, "products.json", `[]`)

	c := Load(products, filepath.Join(dir, "orders.json"))

	notices := c.Notices()
	if len(notices) != 1 || notices[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %+v", notices)
	}
	if c.Orders() != "[]" {
		t.Fatalf("expected empty order catalog, got %s", c.Orders())
	}
}

func TestLoadMalformedAndMissingProducts(t *testing.T) {
	dir := t.TempDir()
	orders := writeFile(t, dir, "orders.json", `{"broken":`)

	c := Load(filepath.Join(dir, "products.json"), orders)

	notices := c.Notices()
	if len(notices) != 2 {
		t.Fatalf("expected two notices, got %+v", notices)
	}
	for _, n := range notices {
		if n.Severity != SeverityError {
			t.Fatalf("expected error severity, got %+v", n)
		}
	}
	if !strings.Contains(notices[1].Message, "Error decoding orders.json") {
		t.Fatalf("unexpected notice: %s", notices[1].Message)
	}
	if c.Products() != "[]" || c.Orders() != "[]" {
		t.Fatalf("expected empty catalogs, got %s / %s", c.Products(), c.Orders())
	}
}

func TestNewTreatsNilAsEmpty(t *testing.T) {
	c := New(nil, json.RawMessage(`{"a":1}`))
	if c.Products() != "[]" {
		t.Fatalf("expected [], got %s", c.Products())
	}
	if c.Orders() != "{\n  \"a\": 1\n}" {
		t.Fatalf("unexpected orders: %s", c.Orders())
	}
}
