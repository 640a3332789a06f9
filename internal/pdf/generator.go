package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/internal/schedule"
	"github.com/ayni-health/backend/pkg/model"
)

const maxRecentReadings = 10

// PDFGenerator renders a user's checkup history as a printable report
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	UserName    string
	GeneratedAt time.Time
	Assessment  *risk.Assessment // nil when no valid profile is known
	Plan        schedule.Plan
	Stats       schedule.Stats
	Entries     []model.HistoryEntry // newest first
}

// Generate creates a PDF report from the provided data
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating PDF report",
		zap.String("user_name", data.UserName),
		zap.Int("entries", len(data.Entries)),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	w := &writer{pdf: pdf, tr: tr}
	w.title("Wellness Checkup Report", data.UserName, dateRange(data.Entries), data.GeneratedAt)
	w.riskProfile(data.Assessment)
	w.schedule(data.Plan)
	w.summary(data.Stats)
	w.vitals(data.Entries)
	w.symptoms(data.Entries)
	w.analyses(data.Entries)
	w.disclaimer()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("PDF report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

func dateRange(entries []model.HistoryEntry) string {
	if len(entries) == 0 {
		return "no checkups recorded"
	}
	first, last := entries[0].Timestamp, entries[0].Timestamp
	for _, e := range entries {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return fmt.Sprintf("%s to %s", first.Format("2006-01-02"), last.Format("2006-01-02"))
}

// writer keeps the document and its UTF-8 translator together
type writer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (w *writer) line(height float64, text string) {
	w.pdf.CellFormat(0, height, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) bold(text string) {
	w.pdf.SetFont("Arial", "B", 10)
	w.line(6, text)
	w.pdf.SetFont("Arial", "", 10)
}

func (w *writer) paragraph(text string) {
	w.pdf.MultiCell(0, 5, w.tr(text), "", "L", false)
}

func (w *writer) title(title, userName, period string, generatedAt time.Time) {
	w.pdf.SetFont("Arial", "B", 20)
	w.pdf.CellFormat(0, 10, w.tr(title), "", 1, "C", false, 0, "")
	w.pdf.Ln(5)

	if userName == "" {
		userName = "Anonymous user"
	}
	w.pdf.SetFont("Arial", "", 12)
	w.line(8, fmt.Sprintf("User: %s", userName))
	w.line(8, fmt.Sprintf("Period: %s", period))
	w.line(8, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	w.pdf.Ln(10)
}

func (w *writer) section(title string) {
	w.pdf.SetFont("Arial", "B", 14)
	w.pdf.SetFillColor(230, 230, 230)
	w.pdf.CellFormat(0, 10, w.tr(title), "", 1, "L", true, 0, "")
	w.pdf.Ln(3)
	w.pdf.SetFont("Arial", "", 10)
}

func (w *writer) riskProfile(a *risk.Assessment) {
	w.section("Risk Profile")

	if a == nil {
		w.line(8, "No health profile available.")
		w.pdf.Ln(5)
		return
	}

	w.line(6, fmt.Sprintf("Risk score: %d/100 (%s)", a.RiskScore, a.RiskLevel))
	w.line(6, fmt.Sprintf("Recommended checkups: %s", risk.FrequencyLabel(a.RecommendedAnalysisFrequency)))
	if len(a.RiskFactors) > 0 {
		w.bold("Risk factors:")
		for _, f := range a.RiskFactors {
			w.line(5, fmt.Sprintf("  - %s", f))
		}
	}
	w.pdf.Ln(2)
	w.paragraph(a.PersonalizedMessage)
	w.pdf.Ln(5)
}

func (w *writer) schedule(p schedule.Plan) {
	w.section("Checkup Schedule")

	w.line(6, fmt.Sprintf("Next checkup: %s", p.NextDue.Format("2006-01-02 15:04")))
	w.line(6, fmt.Sprintf("Interval: %s (from %s)", risk.FrequencyLabel(p.FrequencyDays), p.Source))
	if p.Due {
		w.line(6, "Status: a checkup is due now")
	} else if p.Remaining != nil {
		w.line(6, fmt.Sprintf("Time remaining: %dd %dh %dm", p.Remaining.Days, p.Remaining.Hours, p.Remaining.Minutes))
	}
	w.line(6, fmt.Sprintf("Current streak: %d", p.Streak))
	w.pdf.Ln(5)
}

func (w *writer) summary(s schedule.Stats) {
	w.section("History Summary")

	if s.Total == 0 {
		w.line(8, "No checkups recorded.")
		w.pdf.Ln(5)
		return
	}

	w.line(6, fmt.Sprintf("Total checkups: %d", s.Total))
	w.line(6, fmt.Sprintf("Normal: %d, Warning: %d, Alert: %d", s.Normal, s.Warning, s.Alert))
	if s.AverageFeeling > 0 {
		w.line(6, fmt.Sprintf("Average general feeling: %.1f/5", s.AverageFeeling))
	}
	if s.LastDate != nil {
		w.line(6, fmt.Sprintf("Last checkup: %s", s.LastDate.Format("2006-01-02 15:04")))
	}
	w.pdf.Ln(5)
}

func (w *writer) vitals(entries []model.HistoryEntry) {
	w.section("Vital Signs")

	var hrSum, hrCount, spo2Sum, spo2Count int
	var tempSum float64
	var tempCount int
	var recent []string

	for _, e := range entries {
		v := e.Vitals
		if v == nil {
			continue
		}
		var parts []string
		if v.HeartRate != nil {
			hrSum += *v.HeartRate
			hrCount++
			parts = append(parts, fmt.Sprintf("HR %d bpm", *v.HeartRate))
		}
		if v.Temperature != nil {
			tempSum += *v.Temperature
			tempCount++
			parts = append(parts, fmt.Sprintf("Temp %.1f C", *v.Temperature))
		}
		if v.SpO2 != nil {
			spo2Sum += *v.SpO2
			spo2Count++
			parts = append(parts, fmt.Sprintf("SpO2 %d%%", *v.SpO2))
		}
		if bp := v.BloodPressure; bp != nil && bp.Systolic != nil && bp.Diastolic != nil {
			parts = append(parts, fmt.Sprintf("BP %d/%d mmHg", *bp.Systolic, *bp.Diastolic))
		}
		if len(parts) > 0 && len(recent) < maxRecentReadings {
			recent = append(recent, fmt.Sprintf("%s: %s", e.Timestamp.Format("2006-01-02 15:04"), strings.Join(parts, ", ")))
		}
	}

	if len(recent) == 0 {
		w.line(8, "No vital signs recorded.")
		w.pdf.Ln(5)
		return
	}

	if hrCount > 0 {
		w.line(6, fmt.Sprintf("Average heart rate: %.0f bpm", float64(hrSum)/float64(hrCount)))
	}
	if tempCount > 0 {
		w.line(6, fmt.Sprintf("Average temperature: %.1f C", tempSum/float64(tempCount)))
	}
	if spo2Count > 0 {
		w.line(6, fmt.Sprintf("Average SpO2: %.0f%%", float64(spo2Sum)/float64(spo2Count)))
	}
	w.pdf.Ln(3)

	w.bold("Recent Readings:")
	for _, r := range recent {
		w.line(5, r)
	}
	w.pdf.Ln(5)
}

func (w *writer) symptoms(entries []model.HistoryEntry) {
	w.section("Symptoms Timeline")

	found := false
	for _, e := range entries {
		if !e.HasSymptoms || len(e.Symptoms) == 0 {
			continue
		}
		found = true
		w.bold(e.Timestamp.Format("2006-01-02"))
		for _, s := range e.Symptoms {
			text := fmt.Sprintf("  - %s (%d/10)", s.Name, s.Intensity)
			if s.Details != "" {
				text += ": " + s.Details
			}
			w.line(5, text)
		}
		w.pdf.Ln(2)
	}

	if !found {
		w.line(8, "No symptoms recorded during this period.")
	}
	w.pdf.Ln(5)
}

func (w *writer) analyses(entries []model.HistoryEntry) {
	w.section("Checkup Analyses")

	if len(entries) == 0 {
		w.line(8, "No checkups recorded during this period.")
		w.pdf.Ln(5)
		return
	}

	for _, e := range entries {
		w.bold(fmt.Sprintf("%s - %s, %s",
			e.Timestamp.Format("2006-01-02 15:04"), e.Result.RiskLevel, e.Result.UrgencyLevel))
		if e.GeneralFeeling != nil {
			w.line(5, fmt.Sprintf("  General feeling: %d/5", e.GeneralFeeling.Scale))
		}
		w.paragraph(e.Result.Explanation)
		for _, r := range e.Result.Recommendations {
			w.line(5, fmt.Sprintf("  - %s", r))
		}
		w.pdf.Ln(3)
	}
	w.pdf.Ln(5)
}

func (w *writer) disclaimer() {
	w.pdf.SetFont("Arial", "I", 8)
	w.paragraph("This report is informational only and is not a medical diagnosis. Consult a healthcare professional about any health concern.")
}
