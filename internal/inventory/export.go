package inventory

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExportRow is one flattened inventory line: products without variants export
// a single row, variant-bearing products export one row per size.
type ExportRow struct {
	ProductID uuid.UUID
	Name      string
	Brand     string
	Size      string
	Stock     int
	Price     float64
	Active    bool
}

// ExportSource provides the flattened rows for the export.
type ExportSource interface {
	InventoryRows(ctx context.Context) ([]ExportRow, error)
}

// Exporter streams the inventory as CSV with a summary preamble.
type Exporter struct {
	source  ExportSource
	printer *message.Printer
}

// NewExporter constructs an Exporter.
func NewExporter(source ExportSource) *Exporter {
	return &Exporter{source: source, printer: message.NewPrinter(language.English)}
}

// WriteCSV writes the export to w.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer) error {
	if e == nil || e.source == nil {
		return fmt.Errorf("inventory: exporter not configured")
	}
	rows, err := e.source.InventoryRows(ctx)
	if err != nil {
		return err
	}

	var totalUnits int
	var totalValue float64
	for _, row := range rows {
		totalUnits += row.Stock
		totalValue += float64(row.Stock) * row.Price
	}

	buf := bufio.NewWriter(w)
	preamble := []string{
		"# Inventory export",
		"# Generated: " + time.Now().UTC().Format(time.RFC3339),
		e.printer.Sprintf("# Rows: %d  Units: %d  Stock value: %.2f", len(rows), totalUnits, totalValue),
	}
	for _, line := range preamble {
		if _, err := buf.WriteString(line + "\r\n"); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(buf)
	cw.UseCRLF = true
	header := []string{"sku", "name", "brand", "size", "stock", "price", "stock_value", "status"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		status := "inactive"
		if row.Active {
			status = "active"
		}
		record := []string{
			sku(row.ProductID),
			row.Name,
			row.Brand,
			row.Size,
			strconv.Itoa(row.Stock),
			strconv.FormatFloat(row.Price, 'f', 2, 64),
			strconv.FormatFloat(float64(row.Stock)*row.Price, 'f', 2, 64),
			status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

// sku derives the short product code shown to operators.
func sku(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
