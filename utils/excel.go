package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/Kariqs/camiu-api/models"
	"github.com/tealeg/xlsx"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timeLayout = "2006-01-02 15:04:05"

func addHeader(sheet *xlsx.Sheet, headers ...string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

func addMoney(row *xlsx.Row, value interface{ StringFixed(int32) string }) {
	row.AddCell().SetString(value.StringFixed(2))
}

func WriteProductsWorkbook(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	addHeader(sheet, "ID", "Name", "Price", "SalePrice", "CategoryID", "Stock",
		"Featured", "New", "Bestseller", "Image", "CreatedAt")

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		addMoney(row, p.Price)
		if p.SalePrice.Valid {
			addMoney(row, p.SalePrice.Decimal)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetInt(int(p.CategoryID))
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Featured)
		row.AddCell().SetBool(p.New)
		row.AddCell().SetBool(p.Bestseller)
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(p.CreatedAt.Format(timeLayout))
	}

	return file.Write(w)
}

// WriteOrdersWorkbook writes one sheet of orders and one of their lines.
func WriteOrdersWorkbook(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	ordersSheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	itemsSheet, err := file.AddSheet("Items")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	addHeader(ordersSheet, "ID", "Reference", "UserID", "Status", "PaymentMethod",
		"PaymentStatus", "Total", "ShipTo", "CreatedAt")
	addHeader(itemsSheet, "OrderID", "ProductID", "ProductName", "Variant", "Quantity", "Price", "Subtotal")

	for _, o := range orders {
		addr := o.ShippingAddress.Data()

		row := ordersSheet.AddRow()
		row.AddCell().SetInt(int(o.ID))
		row.AddCell().SetString(o.Reference)
		row.AddCell().SetInt(int(o.UserID))
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(string(o.PaymentStatus))
		addMoney(row, o.Total)
		row.AddCell().SetString(strings.Join([]string{addr.FullName, addr.City, addr.Country}, ", "))
		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))

		for _, it := range o.Items {
			itemRow := itemsSheet.AddRow()
			itemRow.AddCell().SetInt(int(o.ID))
			itemRow.AddCell().SetInt(int(it.ProductID))
			itemRow.AddCell().SetString(it.ProductName)
			variant := ""
			if it.Variant != nil {
				variant = *it.Variant
			}
			itemRow.AddCell().SetString(variant)
			itemRow.AddCell().SetInt(it.Quantity)
			addMoney(itemRow, it.Price)
			addMoney(itemRow, it.Subtotal())
		}
	}

	return file.Write(w)
}
