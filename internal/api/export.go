package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"quadra/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reservations"

// handleExport renders the reservations of a date range as an xlsx workbook,
// keeps a copy under the exports directory and streams it back.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	views, err := s.reservations.ListByDateRange(r.Context(), from, to)
	if err != nil {
		s.mapError(w, err)
		return
	}

	f, err := buildReservationsWorkbook(views, from, to)
	if err != nil {
		s.mapError(w, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("reservations_%s_to_%s.xlsx", from, to)
	if err := s.saveExport(f, fileName); err != nil {
		s.log.Warn().Err(err).Str("file", fileName).Msg("export copy not saved")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		s.log.Error().Err(err).Msg("export stream failed")
	}
}

func (s *HTTPServer) saveExport(f *excelize.File, fileName string) error {
	if s.exports.Path == "" {
		return nil
	}
	if err := os.MkdirAll(s.exports.Path, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	return f.SaveAs(filepath.Join(s.exports.Path, fileName))
}

func buildReservationsWorkbook(views []models.ReservationView, from, to string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Reservations %s - %s", from, to))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(exportSheet, "A1", "I1")
	_ = f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)

	headers := []string{"ID", "Date", "Start", "End", "Location", "Sport", "User", "Status", "Price"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, v := range views {
		row := i + 3
		values := []any{
			v.ID,
			v.Date,
			fmt.Sprintf("%02d:00", v.StartHour),
			fmt.Sprintf("%02d:00", v.EndHour),
			v.LocationName,
			v.LocationSport,
			v.UserDisplayName,
			v.Status,
			v.TotalPrice,
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, val)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "I", 18)

	return f, nil
}
