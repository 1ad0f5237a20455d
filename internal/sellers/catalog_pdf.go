package sellers

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/money"
)

const catalogMaxRows = 300

// Catalog is everything printed on a seller's product catalogue.
type Catalog struct {
	Seller      domain.SellerProfile
	Products    []domain.Product
	Payments    []domain.PaymentMethod
	WhatsApp    string
	GeneratedBy string
	Now         time.Time
}

var catalogCols = []float64{10, 78, 36, 30, 28}

func catalogHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 247, 240)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(catalogCols[0], 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(catalogCols[1], 8, "PRODUCT", "1", 0, "L", true, 0, "")
	pdf.CellFormat(catalogCols[2], 8, "CATEGORY", "1", 0, "L", true, 0, "")
	pdf.CellFormat(catalogCols[3], 8, "PRICE", "1", 0, "R", true, 0, "")
	pdf.CellFormat(catalogCols[4], 8, "STOCK", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)
}

// BuildCatalog renders the catalogue as an A4 PDF.
func BuildCatalog(cat Catalog) ([]byte, error) {
	if cat.Now.IsZero() {
		cat.Now = time.Now()
	}
	if cat.GeneratedBy == "" {
		cat.GeneratedBy = "WHFood"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(false, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(cat.Seller.ShopName))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	place := strings.TrimSpace(strings.Join(nonEmpty(cat.Seller.Address, cat.Seller.City), ", "))
	if place != "" {
		pdf.Cell(0, 6, tr(place))
		pdf.Ln(5)
	}
	if cat.WhatsApp != "" {
		pdf.Cell(0, 6, "WhatsApp: +"+cat.WhatsApp)
		pdf.Ln(5)
	}
	if len(cat.Payments) > 0 {
		labels := make([]string, 0, len(cat.Payments))
		for _, p := range cat.Payments {
			l := p.Method.Label()
			if p.Provider != "" {
				l += " (" + p.Provider + ")"
			}
			labels = append(labels, l)
		}
		pdf.MultiCell(0, 5, tr("Payment: "+strings.Join(labels, ", ")), "", "L", false)
	}
	pdf.Ln(6)

	catalogHeader(pdf)
	for i, p := range cat.Products {
		if i >= catalogMaxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "... truncated (too many products)", "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 265 {
			pdf.AddPage()
			catalogHeader(pdf)
		}

		stock := strconv.Itoa(p.Stock)
		if !p.InStock() {
			stock = "sold out"
		}

		pdf.CellFormat(catalogCols[0], 8, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		x, y := pdf.GetX(), pdf.GetY()
		pdf.MultiCell(catalogCols[1], 8, tr(trimTo(p.Name, 60)), "1", "L", false)
		h := pdf.GetY() - y
		pdf.SetXY(x+catalogCols[1], y)
		pdf.CellFormat(catalogCols[2], h, tr(domain.CategoryLabel(p.Category)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(catalogCols[3], h, money.FormatRupiah(p.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(catalogCols[4], h, stock, "1", 1, "C", false, 0, "")
	}
	if len(cat.Products) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No active products.", "1", 1, "C", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated by "+cat.GeneratedBy+" - "+cat.Now.Format("02 Jan 2006 15:04"), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
