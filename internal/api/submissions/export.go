package submissionsapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"auraweb-intake/database"
	"auraweb-intake/internal/domain/submissions"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var exportColumns = []struct {
	title string
	width float64
	value func(s submissions.Submission) interface{}
}{
	{"Order ID", 38, func(s submissions.Submission) interface{} { return s.ID }},
	{"Submitted", 20, func(s submissions.Submission) interface{} { return s.SubmittedAt.Format("2006-01-02 15:04") }},
	{"Status", 18, func(s submissions.Submission) interface{} { return string(s.Status) }},
	{"Package", 12, func(s submissions.Submission) interface{} { return s.PackageID }},
	{"Business", 30, func(s submissions.Submission) interface{} { return s.BusinessName }},
	{"Type", 16, func(s submissions.Submission) interface{} { return s.BusinessType }},
	{"Phone", 18, func(s submissions.Submission) interface{} { return s.Phone }},
	{"Email", 26, func(s submissions.Submission) interface{} { return deref(s.Email) }},
	{"Address", 30, func(s submissions.Submission) interface{} { return s.Address }},
	{"Services", 40, func(s submissions.Submission) interface{} { return strings.Join(s.Services, ", ") }},
	{"Deposit (ETB)", 14, func(s submissions.Submission) interface{} { return s.DepositAmount }},
	{"Payment", 12, func(s submissions.Submission) interface{} {
		if s.Payment == nil {
			return string(submissions.PaymentPending)
		}
		return string(s.Payment.Status)
	}},
	{"Assigned To", 18, func(s submissions.Submission) interface{} { return deref(s.AssignedTo) }},
	{"Delivery", 14, func(s submissions.Submission) interface{} { return deref(s.EstimatedDelivery) }},
	{"Admin Notes", 40, func(s submissions.Submission) interface{} { return deref(s.AdminNotes) }},
}

// GET /api/export/submissions.xlsx
func ExportSubmissions(c *gin.Context) {
	list, err := submissions.List(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submissions"})
		return
	}

	f, err := buildWorkbook(list)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate Excel file"})
		return
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}

	filename := fmt.Sprintf("submissions_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buffer.Bytes())
}

func buildWorkbook(list []submissions.Submission) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Submissions"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#1E40AF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col.title)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, col.width)
	}

	for r, s := range list {
		for i, col := range exportColumns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(sheet, cell, col.value(s))
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
