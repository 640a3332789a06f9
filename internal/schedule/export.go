package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

var csvHeader = []string{
	"Date",
	"Risk Level",
	"Urgency",
	"Explanation",
	"Key Findings",
	"Recommendations",
	"General Feeling (1-5)",
	"Heart Rate",
	"Temperature",
	"SpO2",
}

// WriteCSV writes one row per entry below a fixed header. List fields are joined with "; ".
func WriteCSV(w io.Writer, entries []model.HistoryEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, e := range entries {
		row := []string{
			e.Timestamp.Format(time.RFC3339),
			string(e.Result.RiskLevel),
			string(e.Result.UrgencyLevel),
			e.Result.Explanation,
			strings.Join(e.Result.KeyFindings, "; "),
			strings.Join(e.Result.Recommendations, "; "),
			"",
			"",
			"",
			"",
		}
		if e.GeneralFeeling != nil {
			row[6] = strconv.Itoa(e.GeneralFeeling.Scale)
		}
		if v := e.Vitals; v != nil {
			if v.HeartRate != nil {
				row[7] = strconv.Itoa(*v.HeartRate)
			}
			if v.Temperature != nil {
				row[8] = strconv.FormatFloat(*v.Temperature, 'f', 1, 64)
			}
			if v.SpO2 != nil {
				row[9] = strconv.Itoa(*v.SpO2)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
