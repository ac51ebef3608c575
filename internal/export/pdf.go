package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// A4 portrait in millimetres.
const (
	a4Width  = 210.0
	a4Height = 297.0
)

// placement is where a raster lands on a page, in millimetres.
type placement struct {
	x, y, w, h float64
}

// fitPage scales a w x h raster by min(pageW/w, pageH/h) and centers it.
func fitPage(w, h int) placement {
	scale := math.Min(a4Width/float64(w), a4Height/float64(h))
	pw, ph := float64(w)*scale, float64(h)*scale
	return placement{x: (a4Width - pw) / 2, y: (a4Height - ph) / 2, w: pw, h: ph}
}

// pageBands splits a raster taller than the page aspect into
// page-aspect horizontal bands. The last band may be shorter.
func pageBands(bounds image.Rectangle) []image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	bandHeight := int(math.Round(float64(w) * a4Height / a4Width))
	if bandHeight < 1 || h <= bandHeight {
		return []image.Rectangle{bounds}
	}
	var bands []image.Rectangle
	for top := bounds.Min.Y; top < bounds.Max.Y; top += bandHeight {
		bottom := min(top+bandHeight, bounds.Max.Y)
		bands = append(bands, image.Rect(bounds.Min.X, top, bounds.Max.X, bottom))
	}
	return bands
}

func encodePDF(img image.Image, title string, created time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(brandTitle, true)
	pdf.SetCreator("vital-catalog", true)
	pdf.SetCreationDate(created)

	for i, band := range pageBands(img.Bounds()) {
		part := img
		if band != img.Bounds() {
			part = imaging.Crop(img, band)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, part); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		p := fitPage(band.Dx(), band.Dy())
		pdf.ImageOptions(name, p.x, p.y, p.w, p.h, false, opts, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}
