package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/user/ladder_analyzer_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// ReportInput is everything the PDF report renders.
// Plot entries may be nil; the report then says the plot is unavailable.
type ReportInput struct {
	Sizes       *analysis.LadderAnalysis
	SSIMs       *analysis.LadderAnalysis
	Bola        *analysis.BolaParameters
	BolaConfig  analysis.BolaConfig
	SizePlot    []byte
	SSIMPlot    []byte
	SizeHeatmap []byte
	SSIMHeatmap []byte

	// Rendered only when Bola is set.
	BolaObjectivePlot []byte
	BolaDecisionPlot  []byte
}

// reportPlot is one full-page figure; Key names the registered image.
type reportPlot struct {
	Title, Key, Caption string
	Img                 []byte
}

// pdfStyler holds reusable styling and flowing-layout state.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text, styleName, align string) {
	s.applyStyle(styleName)
	// Measure the wrapped text first so a paragraph never straddles a page break.
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(float64(len(lines)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1 // MultiCell moved Y; keep a 1 mm gap
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	// imageName is the registration key; gofpdf refers to the data by it later.
	s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))

	// Scale down to the content width, keeping the aspect ratio.
	if width > pdfContentWidth {
		height *= pdfContentWidth / width
		width = pdfContentWidth
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	// Image and caption go on the same page.
	s.checkAddPage(height + captionHeight)

	s.pdf.ImageOptions(imageName, pdfMargin, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// writeTable draws headers plus rows; widths are fractions of the content width.
func (s *pdfStyler) writeTable(headers []string, widthsRel []float64, rows [][]string) {
	widths := make([]float64, len(widthsRel))
	for i, rel := range widthsRel {
		widths[i] = rel * pdfContentWidth
	}

	// Header plus at least one row, or start a new page.
	s.checkAddPage(s.lineHeight * 2)
	x := pdfMargin
	s.applyStyle("tableHeader")
	for i, header := range headers {
		s.pdf.SetXY(x, s.currentY)
		s.pdf.CellFormat(widths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	s.currentY += s.lineHeight

	s.applyStyle("tableCell")
	for _, row := range rows {
		s.checkAddPage(s.lineHeight)
		x = pdfMargin
		for i, cell := range row {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) writeRungTable(title string, res *analysis.LadderAnalysis, format func(float64) string) {
	s.writeParagraph(title, "h2", "L")
	if res == nil || len(res.Rungs) == 0 {
		s.writeParagraph("No ladder data.", "normal", "L")
		return
	}
	s.writeParagraph(fmt.Sprintf("Averaged over %d channels.", res.NumChannels()), "normal", "L")

	rows := make([][]string, 0, len(res.Rungs))
	for _, r := range res.Rungs {
		rows = append(rows, []string{
			strconv.Itoa(r.Rung),
			format(r.Mean),
			format(r.StdDev),
			format(r.Min),
			format(r.Max),
		})
	}
	s.writeTable(
		[]string{"Rung", "Mean", "Std Dev", "Min", "Max"},
		[]float64{0.1, 0.225, 0.225, 0.225, 0.225},
		rows,
	)
	s.addSpacer(5)
}

func formatBytes(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) }
func formatSSIM(v float64) string  { return strconv.FormatFloat(v, 'f', 6, 64) }

func (s *pdfStyler) writePlot(title, key string, img []byte, caption string) {
	s.writeParagraph(title, "h2", "L")
	if len(img) == 0 {
		s.writeParagraph(fmt.Sprintf("Plot for %s not available.", title), "normal", "L")
		return
	}
	width := pdfContentWidth * 0.8 // plots render at 2:1
	s.addImage(img, key, width, width/2, caption)
}

// WritePDFReport renders the ladder report to w.
func WritePDFReport(w io.Writer, in ReportInput) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin) // pdfStyler breaks pages itself
	styler := newPDFStyler(pdf)
	styler.newPage()

	styler.writeParagraph("Encoding Ladder Report", "h1", "C")
	styler.addSpacer(5)

	styler.writeRungTable("Average Size per Rung (bytes)", in.Sizes, formatBytes)
	styler.writeRungTable("Average SSIM Index per Rung", in.SSIMs, formatSSIM)

	if in.Bola != nil {
		styler.writeParagraph("BOLA Parameters", "h2", "L")
		styler.writeTable(
			[]string{"V", "gp", "Min buffer (s)", "Max buffer (s)", "Chunk (s)"},
			[]float64{0.2, 0.2, 0.2, 0.2, 0.2},
			[][]string{{
				strconv.FormatFloat(in.Bola.V, 'g', 6, 64),
				strconv.FormatFloat(in.Bola.Gp, 'g', 6, 64),
				strconv.FormatFloat(in.BolaConfig.MinBufS, 'g', -1, 64),
				strconv.FormatFloat(in.BolaConfig.MaxBufS, 'g', -1, 64),
				strconv.FormatFloat(in.BolaConfig.ChunkDurationS, 'g', -1, 64),
			}},
		)
		styler.addSpacer(5)
	}

	plots := []reportPlot{
		{"Size Ladder", "plot_size", "Sorted channel ladders (grey) and their average (blue)", in.SizePlot},
		{"SSIM Ladder", "plot_ssim", "Sorted channel ladders (grey) and their average (blue)", in.SSIMPlot},
		{"Size Deviation by Channel", "heatmap_size", "Deviation from the averaged ladder (%)", in.SizeHeatmap},
		{"SSIM Deviation by Channel", "heatmap_ssim", "Deviation from the averaged ladder (%)", in.SSIMHeatmap},
	}
	if in.Bola != nil {
		plots = append(plots,
			reportPlot{"BOLA Objective", "bola_objective", "Objective of each rung; dashed lines mark the min and max buffer", in.BolaObjectivePlot},
			reportPlot{"BOLA Decision", "bola_decision", "Rung with the highest objective at each buffer level", in.BolaDecisionPlot},
		)
	}
	for _, pl := range plots {
		styler.newPage()
		styler.writePlot(pl.Title, pl.Key, pl.Img, pl.Caption)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build PDF report: %w", err)
	}
	return pdf.Output(w)
}

// BuildPDFReport writes the ladder report to path.
func BuildPDFReport(path string, in ReportInput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF report: %w", err)
	}
	if err := WritePDFReport(f, in); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Debug("report: PDF written", "path", path)
	return nil
}
