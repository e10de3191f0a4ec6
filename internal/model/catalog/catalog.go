package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Severity 区分目录加载提示的级别。
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a user-visible message produced while loading the fixtures.
type Notice struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// LoadError describes why a catalog document degraded to empty.
type LoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var errMalformed = errors.New("malformed json")

var emptyDocument = json.RawMessage("[]")

// Catalog holds the product and order documents for the lifetime of the process.
// It is never mutated after construction.
type Catalog struct {
	products json.RawMessage
	orders   json.RawMessage
	notices  []Notice
}

// New wraps already-parsed documents. Nil documents are treated as empty.
func New(products, orders json.RawMessage) *Catalog {
	return &Catalog{
		products: normalize(products),
		orders:   normalize(orders),
	}
}

// Load reads both fixtures once. Failures never abort: the affected document
// becomes an empty catalog and a notice is recorded.
func Load(productsPath, ordersPath string) *Catalog {
	c := &Catalog{}

	products, err := readDocument("products", productsPath)
	if err != nil {
		c.addNotice(SeverityError, describe(err, productsPath, "Make sure it's in the 'data/' directory."))
	}
	c.products = normalize(products)

	orders, err := readDocument("orders", ordersPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		// 订单数据缺失时允许以空目录继续运行。
		c.addNotice(SeverityWarning, fmt.Sprintf("%s not found. Continuing with an empty order catalog.", filepath.Base(ordersPath)))
	default:
		c.addNotice(SeverityError, describe(err, ordersPath, ""))
	}
	c.orders = normalize(orders)

	return c
}

// Products returns the product document formatted for prompt injection.
func (c *Catalog) Products() string {
	return indent(c.products)
}

// Orders returns the order document formatted for prompt injection.
func (c *Catalog) Orders() string {
	return indent(c.orders)
}

// Notices returns the load-time notices.
func (c *Catalog) Notices() []Notice {
	return append([]Notice(nil), c.notices...)
}

func (c *Catalog) addNotice(severity Severity, message string) {
	log.Printf("[catalog] %s: %s", severity, message)
	c.notices = append(c.notices, Notice{Severity: severity, Message: message})
}

func readDocument(name, path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: name, Path: path, Err: err}
	}
	if !json.Valid(data) {
		return nil, &LoadError{Name: name, Path: path, Err: errMalformed}
	}
	return json.RawMessage(data), nil
}

func describe(err error, path, hint string) string {
	base := filepath.Base(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		msg := base + " not found."
		if hint != "" {
			msg += " " + hint
		}
		return msg
	case errors.Is(err, errMalformed):
		return fmt.Sprintf("Error decoding %s. Please check file format.", base)
	default:
		return fmt.Sprintf("Error reading %s: %v", base, err)
	}
}

func normalize(doc json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(doc)) == 0 {
		return emptyDocument
	}
	return doc
}

func indent(doc json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return string(doc)
	}
	return buf.String()
}
