package inventory

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type staticExportSource []ExportRow

func (s staticExportSource) InventoryRows(_ context.Context) ([]ExportRow, error) {
	return s, nil
}

func TestExportCSV(t *testing.T) {
	productID := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	source := staticExportSource{
		{ProductID: productID, Name: "Silk Scarf", Brand: "Atelier", Size: "One Size", Stock: 4, Price: 59.90, Active: true},
		{ProductID: productID, Name: "Wool Coat", Brand: "Atelier", Size: "M", Stock: 0, Price: 249.00, Active: false},
	}
	exporter := NewExporter(source)

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteCSV(context.Background(), &buf))
	out := buf.String()

	require.Contains(t, out, "# Inventory export")
	require.Contains(t, out, "# Rows: 2  Units: 4  Stock value: 239.60")
	require.Contains(t, out, "sku,name,brand,size,stock,price,stock_value,status")
	require.Contains(t, out, "A1B2C3D4,Silk Scarf,Atelier,One Size,4,59.90,239.60,active")
	require.Contains(t, out, "A1B2C3D4,Wool Coat,Atelier,M,0,249.00,0.00,inactive")

	lines := strings.Split(strings.TrimSpace(out), "\r\n")
	require.Len(t, lines, 6)
}
