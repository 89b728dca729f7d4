package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"postlift/domain/attribution"
	"postlift/internal/errors"
)

const (
	summarySheet     = "Summary"
	influencersSheet = "Influencers"
	ordersSheet      = "Orders"
)

// ReportWriter renders an attribution result as an Excel workbook with a
// summary sheet, a per-influencer sheet, and a flattened order-level sheet.
type ReportWriter struct{}

// NewReportWriter creates a report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// Write renders the result to w as an xlsx workbook
func (rw *ReportWriter) Write(w io.Writer, result *attribution.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := rw.writeSummary(f, result); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	if err := rw.writeInfluencers(f, result); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	if err := rw.writeOrders(f, result); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}

	// The default sheet excelize creates becomes Summary.
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(summarySheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	return nil
}

func (rw *ReportWriter) writeSummary(f *excelize.File, result *attribution.Result) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Attributed Revenue", result.TotalAttributedRevenue},
		{"Total Attributed Orders", result.TotalAttributedOrders},
		{"Baseline Revenue", result.BaselineRevenue},
		{"Incremental Revenue", result.IncrementalRevenue},
		{"Confidence Score", result.ConfidenceScore},
		{"Result Fingerprint", string(result.Fingerprint)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	// Methodology lines follow the metrics block.
	base := len(rows) + 2
	header := []interface{}{"Methodology"}
	cell, _ := excelize.CoordinatesToCellName(1, base)
	if err := f.SetSheetRow(summarySheet, cell, &header); err != nil {
		return err
	}
	for i, line := range result.Methodology {
		cell, _ := excelize.CoordinatesToCellName(1, base+1+i)
		row := []interface{}{line}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (rw *ReportWriter) writeInfluencers(f *excelize.File, result *attribution.Result) error {
	if _, err := f.NewSheet(influencersSheet); err != nil {
		return err
	}

	header := []interface{}{
		"Username", "Attributed Revenue", "Attributed Orders", "Average Confidence",
		"Temporal", "New Customer", "Product Match", "Anomaly", "Baseline",
	}
	if err := f.SetSheetRow(influencersSheet, "A1", &header); err != nil {
		return err
	}

	for i, inf := range result.Influencers {
		row := []interface{}{
			inf.Username.String(),
			inf.AttributedRevenue,
			inf.AttributedOrders,
			inf.AverageConfidence,
			inf.Signals.Temporal,
			inf.Signals.NewCustomer,
			inf.Signals.ProductMatch,
			inf.Signals.Anomaly,
			inf.Signals.Baseline,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(influencersSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (rw *ReportWriter) writeOrders(f *excelize.File, result *attribution.Result) error {
	if _, err := f.NewSheet(ordersSheet); err != nil {
		return err
	}

	header := []interface{}{"Username", "Post ID", "Order ID", "Revenue", "Share", "Confidence"}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return err
	}

	rowNum := 2
	for _, inf := range result.Influencers {
		for _, post := range inf.Posts {
			for _, order := range post.Orders {
				row := []interface{}{
					inf.Username.String(),
					post.PostID.String(),
					order.OrderID.String(),
					order.Revenue,
					order.Share,
					order.Confidence,
				}
				cell, _ := excelize.CoordinatesToCellName(1, rowNum)
				if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
					return err
				}
				rowNum++
			}
		}
	}
	return nil
}

// Filename suggests a workbook name for a campaign export
func Filename(campaignName string) string {
	if campaignName == "" {
		campaignName = "campaign"
	}
	return fmt.Sprintf("attribution-%s.xlsx", campaignName)
}
