package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/vitalcosmeticos/catalog/internal/domain"
)

// Page geometry in CSS pixels. 794 x 1123 is A4 at 96 dpi.
const (
	pageWidth     = 794.0
	minPageHeight = 1123.0
	pagePadding   = 40.0
	gridColumns   = 3
	gridGap       = 32.0
	tilePadding   = 12.0
	imageHeight   = 160.0
	tileHeight    = 296.0
	nameLines     = 2
)

const (
	brandTitle  = "Vital Cosméticos"
	colorNavy   = "#183263"
	colorNavy2  = "#3a5a8c"
	colorGreen  = "#7ed957"
	colorText   = "#1f2937"
	colorMuted  = "#6b7280"
	colorBorder = "#e5e7eb"
	colorPanel  = "#f3f4f6"
	colorPill   = "#e8edf7"
)

type badgeStyle struct{ bg, fg string }

var stockBadges = map[string]badgeStyle{
	domain.StockAvailable:  {bg: "#dcfce7", fg: "#166534"},
	domain.StockOutOfStock: {bg: "#fee2e2", fg: "#991b1b"},
	domain.StockComingSoon: {bg: "#fef9c3", fg: "#854d0e"},
}

// StoreContact is printed in the page footer.
type StoreContact struct {
	Email string
	Phone string
}

type fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func loadFonts() (*fonts, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &fonts{regular: regular, bold: bold}, nil
}

type faceKey struct {
	bold bool
	size float64
}

// canvas draws in CSS pixels on a context that is scale times larger.
// Faces are created at device size so text stays sharp.
type canvas struct {
	dc    *gg.Context
	scale float64
	fonts *fonts
	faces map[faceKey]font.Face
	face  font.Face
}

func newCanvas(f *fonts, width, height, scale float64) *canvas {
	w := int(math.Ceil(width * scale))
	h := int(math.Ceil(height * scale))
	return &canvas{
		dc:    gg.NewContext(w, h),
		scale: scale,
		fonts: f,
		faces: make(map[faceKey]font.Face),
	}
}

func (c *canvas) px(v float64) float64 { return v * c.scale }

func (c *canvas) setFont(bold bool, size float64) {
	key := faceKey{bold: bold, size: size}
	face, ok := c.faces[key]
	if !ok {
		f := c.fonts.regular
		if bold {
			f = c.fonts.bold
		}
		face = truetype.NewFace(f, &truetype.Options{Size: size * c.scale, Hinting: font.HintingFull})
		c.faces[key] = face
	}
	c.face = face
	c.dc.SetFontFace(face)
}

func (c *canvas) measure(s string) float64 {
	w, _ := c.dc.MeasureString(s)
	return w / c.scale
}

func (c *canvas) wrap(s string, width float64) []string {
	return c.dc.WordWrap(s, c.px(width))
}

// text draws s with its top edge at y; ax is the horizontal anchor.
func (c *canvas) text(s string, x, top, ax float64) {
	baseline := c.px(top) + float64(c.face.Metrics().Ascent)/64
	c.dc.DrawStringAnchored(s, c.px(x), baseline, ax, 0)
}

func (c *canvas) fillRect(x, y, w, h, radius float64, hex string) {
	c.dc.SetHexColor(hex)
	c.dc.DrawRoundedRectangle(c.px(x), c.px(y), c.px(w), c.px(h), c.px(radius))
	c.dc.Fill()
}

func (c *canvas) strokeRect(x, y, w, h, radius float64, hex string) {
	c.dc.SetHexColor(hex)
	c.dc.SetLineWidth(c.px(1))
	c.dc.DrawRoundedRectangle(c.px(x), c.px(y), c.px(w), c.px(h), c.px(radius))
	c.dc.Stroke()
}

// ellipsize shortens s with "…" until it fits width.
func (c *canvas) ellipsize(s string, width float64) string {
	if c.measure(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		candidate := strings.TrimRight(string(r), " ") + "…"
		if c.measure(candidate) <= width {
			return candidate
		}
	}
	return "…"
}

type pageLayout struct {
	descLines   []string
	headerEnd   float64
	rows        int
	gridEnd     float64
	height      float64
	tileWidth   float64
	contentWide float64
}

const (
	footerGap    = 40.0
	footerHeight = 134.0
)

func measureLayout(c *canvas, folder *domain.DigitalFolder) pageLayout {
	l := pageLayout{contentWide: pageWidth - 2*pagePadding}
	l.tileWidth = (l.contentWide - gridGap*(gridColumns-1)) / gridColumns

	y := pagePadding + 40 + 8 + 4 + 16 + 32
	if folder.Description != nil && strings.TrimSpace(*folder.Description) != "" {
		c.setFont(false, 14)
		l.descLines = c.wrap(strings.TrimSpace(*folder.Description), l.contentWide)
		y += 8 + float64(len(l.descLines))*20
	}
	if clientName(folder) != "" {
		y += 8 + 20
	}
	l.headerEnd = y + gridGap

	l.rows = (len(folder.Products) + gridColumns - 1) / gridColumns
	l.gridEnd = l.headerEnd
	if l.rows > 0 {
		l.gridEnd += float64(l.rows)*tileHeight + float64(l.rows-1)*gridGap
	}
	l.height = math.Max(minPageHeight, l.gridEnd+footerGap+footerHeight+pagePadding)
	return l
}

func clientName(folder *domain.DigitalFolder) string {
	if folder.ClientName == nil {
		return ""
	}
	return strings.TrimSpace(*folder.ClientName)
}

type renderer struct {
	fonts *fonts
	scale float64
	store StoreContact
	now   func() time.Time
}

// render composes the folder page. images[i] belongs to folder.Products[i];
// nil entries get a placeholder. Images must already be fitted to the
// tile image area at the render scale.
func (r *renderer) render(folder *domain.DigitalFolder, images []image.Image) image.Image {
	probe := newCanvas(r.fonts, 1, 1, r.scale)
	layout := measureLayout(probe, folder)

	c := newCanvas(r.fonts, pageWidth, layout.height, r.scale)
	c.dc.SetColor(color.White)
	c.dc.Clear()

	r.drawHeader(c, folder, layout)
	for i := range folder.Products {
		row, col := i/gridColumns, i%gridColumns
		x := pagePadding + float64(col)*(layout.tileWidth+gridGap)
		y := layout.headerEnd + float64(row)*(tileHeight+gridGap)
		var img image.Image
		if i < len(images) {
			img = images[i]
		}
		drawTile(c, &folder.Products[i], img, x, y, layout.tileWidth)
	}
	r.drawFooter(c, layout)
	return c.dc.Image()
}

func (r *renderer) drawHeader(c *canvas, folder *domain.DigitalFolder, l pageLayout) {
	y := pagePadding
	c.setFont(true, 32)
	c.dc.SetHexColor(colorNavy)
	c.text(brandTitle, pagePadding, y, 0)
	y += 40 + 8

	c.fillRect(pagePadding, y, 96, 4, 2, colorGreen)
	y += 4 + 16

	c.setFont(true, 24)
	c.dc.SetHexColor(colorText)
	c.text(c.ellipsize(folder.Name, l.contentWide), pagePadding, y, 0)
	y += 32

	if len(l.descLines) > 0 {
		y += 8
		c.setFont(false, 14)
		c.dc.SetHexColor(colorMuted)
		for _, line := range l.descLines {
			c.text(line, pagePadding, y, 0)
			y += 20
		}
	}
	if name := clientName(folder); name != "" {
		y += 8
		c.setFont(true, 14)
		c.dc.SetHexColor(colorNavy)
		c.text(c.ellipsize("Catálogo personalizado para: "+name, l.contentWide), pagePadding, y, 0)
	}
}

func drawTile(c *canvas, p *domain.FolderProduct, img image.Image, x, y, w float64) {
	c.fillRect(x, y, w, tileHeight, 12, "#ffffff")
	c.strokeRect(x, y, w, tileHeight, 12, colorBorder)

	ix, iy := x+tilePadding, y+tilePadding
	iw := w - 2*tilePadding
	if img != nil {
		c.fillRect(ix, iy, iw, imageHeight, 8, colorPanel)
		c.dc.DrawImageAnchored(img, int(c.px(ix+iw/2)), int(c.px(iy+imageHeight/2)), 0.5, 0.5)
	} else {
		drawPlaceholder(c, p.Name, ix, iy, iw, imageHeight)
	}

	ty := iy + imageHeight + 12
	c.setFont(true, 15)
	c.dc.SetHexColor(colorText)
	lines := c.wrap(p.Name, iw)
	if len(lines) > nameLines {
		rest := strings.Join(lines[nameLines-1:], " ")
		lines = append(lines[:nameLines-1], c.ellipsize(rest, iw))
	}
	for i, line := range lines {
		c.text(c.ellipsize(line, iw), ix, ty+float64(i)*20, 0)
	}
	ty += nameLines*20 + 6

	category := p.Category
	if category == "" {
		category = domain.UncategorizedLabel
	}
	c.setFont(false, 11)
	label := c.ellipsize(category, iw-16)
	pw := c.measure(label) + 16
	c.fillRect(ix, ty, pw, 22, 11, colorPill)
	c.dc.SetHexColor(colorNavy)
	c.text(label, ix+8, ty+5, 0)
	ty += 22 + 8

	style, ok := stockBadges[p.Stock]
	if !ok {
		style = badgeStyle{bg: colorPanel, fg: colorMuted}
	}
	c.setFont(true, 11)
	badge := domain.StockLabel(p.Stock)
	bw := c.measure(badge) + 16
	c.fillRect(ix+iw-bw, ty, bw, 22, 11, style.bg)
	c.dc.SetHexColor(style.fg)
	c.text(badge, ix+iw-bw+8, ty+5, 0)

	c.setFont(false, 12)
	c.dc.SetHexColor(colorMuted)
	c.text(c.ellipsize("Ref: "+p.Reference, iw-bw-8), ix, ty+4, 0)
}

func drawPlaceholder(c *canvas, name string, x, y, w, h float64) {
	grad := gg.NewLinearGradient(c.px(x), c.px(y), c.px(x+w), c.px(y+h))
	grad.AddColorStop(0, parseHex(colorNavy))
	grad.AddColorStop(1, parseHex(colorNavy2))
	c.dc.SetFillStyle(grad)
	c.dc.DrawRoundedRectangle(c.px(x), c.px(y), c.px(w), c.px(h), c.px(8))
	c.dc.Fill()

	c.setFont(true, 14)
	c.dc.SetColor(color.White)
	c.dc.DrawStringWrapped(name, c.px(x+w/2), c.px(y+h/2), 0.5, 0.5, c.px(w-24), 1.3, gg.AlignCenter)
}

func (r *renderer) drawFooter(c *canvas, l pageLayout) {
	y := l.height - pagePadding - footerHeight
	c.dc.SetHexColor(colorBorder)
	c.dc.SetLineWidth(c.px(1))
	c.dc.DrawLine(c.px(pagePadding), c.px(y), c.px(pageWidth-pagePadding), c.px(y))
	c.dc.Stroke()
	y += 24

	center := pageWidth / 2
	c.setFont(true, 18)
	c.dc.SetHexColor(colorNavy)
	c.text("Entre em contato conosco!", center, y, 0.5)
	y += 24 + 8

	c.setFont(false, 14)
	c.dc.SetHexColor(colorText)
	c.text("Sua beleza é nossa prioridade", center, y, 0.5)
	y += 20 + 8

	var contact []string
	if r.store.Email != "" {
		contact = append(contact, r.store.Email)
	}
	if r.store.Phone != "" {
		contact = append(contact, r.store.Phone)
	}
	c.text(strings.Join(contact, "  |  "), center, y, 0.5)
	y += 20 + 12

	c.setFont(false, 12)
	c.dc.SetHexColor(colorMuted)
	c.text("Catálogo gerado em "+r.now().Format("02/01/2006"), center, y, 0.5)
}

func parseHex(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
