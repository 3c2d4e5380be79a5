package core

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
)

const DefaultCompanyName = "COMPANY NAME"

// Card geometry in millimetres, portrait CR80.
const (
	cardWidth  = 54.0
	cardHeight = 86.0
	photoW     = 32.0
	photoH     = 38.0
	qrSize     = 12.0
)

// RenderIDCard draws a portrait badge: coloured header with the company
// name, the profile photo or a placeholder, the employee details and a QR
// code carrying the badge number.
func RenderIDCard(company string, emp Employee, photo []byte) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: cardWidth, Ht: cardHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetDrawColor(0, 0, 139)
	pdf.SetLineWidth(0.5)
	pdf.Rect(0.5, 0.5, cardWidth-1, cardHeight-1, "D")
	pdf.SetFillColor(0, 0, 139)
	pdf.Rect(0.5, 0.5, cardWidth-1, 11, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetXY(0, 3)
	pdf.CellFormat(cardWidth, 6, company, "", 0, "C", false, 0, "")

	photoX := (cardWidth - photoW) / 2
	if !drawPhoto(pdf, photo, photoX, 14) {
		drawAvatar(pdf, photoX, 14)
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 7)
	y := 55.0
	for _, line := range []string{
		"ID: " + emp.BadgeNumber(),
		"Name: " + emp.Name,
		"Position: " + emp.Position,
		"Department: " + emp.Department,
	} {
		pdf.SetXY(4, y)
		pdf.CellFormat(cardWidth-8, 4, line, "", 0, "L", false, 0, "")
		y += 4.5
	}

	key := barcode.RegisterQR(pdf, emp.BadgeNumber(), qr.M, qr.Unicode)
	barcode.Barcode(pdf, key, (cardWidth-qrSize)/2, cardHeight-qrSize-3, qrSize, qrSize, false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render id card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPhoto reports false when the image is missing or not JPEG/PNG.
func drawPhoto(pdf *gofpdf.Fpdf, photo []byte, x, y float64) bool {
	if len(photo) == 0 {
		return false
	}
	var imageType string
	switch http.DetectContentType(photo) {
	case "image/jpeg":
		imageType = "JPG"
	case "image/png":
		imageType = "PNG"
	default:
		return false
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader("profile", opts, bytes.NewReader(photo))
	if !pdf.Ok() || info == nil {
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions("profile", x, y, photoW, photoH, false, opts, 0, "")
	return true
}

func drawAvatar(pdf *gofpdf.Fpdf, x, y float64) {
	pdf.SetFillColor(74, 74, 74)
	pdf.Rect(x, y, photoW, photoH, "F")
	pdf.SetFillColor(102, 102, 102)
	pdf.Circle(x+photoW/2, y+photoH*0.35, photoW*0.18, "F")
	pdf.Ellipse(x+photoW/2, y+photoH*0.85, photoW*0.32, photoH*0.2, 0, "F")
}
