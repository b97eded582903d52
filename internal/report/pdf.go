// Package report renders a ProjectResult as a PDF, one page per account,
// in the teacher's money-formatting and page-per-entity style.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"projector/internal/models"
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// FormatMoney formats a float as an abbreviated USD currency string.
func FormatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount >= 1000000 {
		return fmt.Sprintf("%s$%.2fM", sign, amount/1000000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("%s$%.1fk", sign, amount/1000)
	}
	return fmt.Sprintf("%s$%.0f", sign, amount)
}

// FormatMoneyFull formats a float as full, unabbreviated USD currency.
func FormatMoneyFull(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// accountSummary is the set of figures the per-account page presents,
// derived once from an AccountResult's consolidated activity stream.
type accountSummary struct {
	account        models.AccountResult
	startBalance   float64
	endBalance     float64
	totalInterest  float64
	autoPullCount  int
	autoPushCount  int
	activityCount  int
}

func summarize(a models.AccountResult) accountSummary {
	s := accountSummary{account: a}
	if len(a.ConsolidatedActivity) == 0 {
		return s
	}

	s.startBalance = a.ConsolidatedActivity[0].Balance - a.ConsolidatedActivity[0].Amount
	s.endBalance = a.ConsolidatedActivity[len(a.ConsolidatedActivity)-1].Balance
	s.activityCount = len(a.ConsolidatedActivity)

	for _, ca := range a.ConsolidatedActivity {
		if ca.Category == "Interest" {
			s.totalInterest += ca.Amount
		}
		switch {
		case strings.HasPrefix(ca.ID, "AUTO-PULL_"):
			s.autoPullCount++
		case strings.HasPrefix(ca.ID, "AUTO-PUSH_"):
			s.autoPushCount++
		}
	}

	return s
}

// Report renders result as a multi-page PDF and returns the raw bytes.
type Report struct {
	pdf    *fpdf.Fpdf
	result *models.ProjectResult
}

// Generate builds a one-page-per-account PDF summarizing result.
func Generate(result *models.ProjectResult) ([]byte, error) {
	r := &Report{
		pdf:    fpdf.New("P", "mm", "A4", ""),
		result: result,
	}
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)

	r.addTitlePage()
	for _, a := range result.Accounts {
		r.addAccountPage(summarize(a))
	}

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Report) addTitlePage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 26)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(40)
	r.pdf.CellFormat(contentWidth, 14, "Account Projection Report", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 12)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Ln(8)
	period := fmt.Sprintf("%s to %s", r.result.Metadata.ActualStartDate.Format("2006-01-02"), r.result.Metadata.EndDate.Format("2006-01-02"))
	r.pdf.CellFormat(contentWidth, 8, period, "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")

	if r.result.Metadata.Incomplete {
		r.pdf.SetTextColor(180, 0, 0)
		r.pdf.Ln(6)
		r.pdf.CellFormat(contentWidth, 6, "Run was cancelled before completion; figures reflect a partial result.", "", 1, "C", false, 0, "")
		r.pdf.SetTextColor(80, 80, 80)
	}

	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, "Accounts", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	for _, a := range r.result.Accounts {
		r.pdf.CellFormat(contentWidth, 7, a.Name, "LR", 1, "C", true, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 1, "", "LRB", 1, "C", true, 0, "")

	if mc := r.result.Metadata.MonteCarlo; mc != nil {
		r.pdf.Ln(10)
		r.pdf.SetFont("Arial", "B", 12)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 8, "Monte Carlo Summary", "1", 1, "C", true, 0, "")

		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		rows := [][2]string{
			{"Runs", fmt.Sprintf("%d (%.0f%% succeeded)", mc.Runs, mc.SuccessRate*100)},
			{"Mean final balance", FormatMoney(mc.MeanBalance)},
			{"Median final balance", FormatMoney(mc.MedianBalance)},
			{"Std deviation", FormatMoney(mc.StdDev)},
			{"10th / 90th percentile", fmt.Sprintf("%s / %s", FormatMoney(mc.Percentile10), FormatMoney(mc.Percentile90))},
			{"Worst / best case", fmt.Sprintf("%s / %s", FormatMoney(mc.WorstCase), FormatMoney(mc.BestCase))},
		}
		for i, row := range rows {
			border := "LR"
			if i == len(rows)-1 {
				border = "LRB"
			}
			r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("%s: %s", row[0], row[1]), border, 1, "L", true, 0, "")
		}
	}
}

func (r *Report) addAccountPage(s accountSummary) {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 18)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, s.account.Name, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(6)

	r.drawSummaryRow("Starting balance", FormatMoneyFull(s.startBalance))
	r.drawSummaryRow("Ending balance", FormatMoneyFull(s.endBalance))
	r.drawSummaryRow("Net change", FormatMoneyFull(s.endBalance-s.startBalance))
	r.drawSummaryRow("Total interest earned", FormatMoneyFull(s.totalInterest))
	r.drawSummaryRow("Today's balance", FormatMoneyFull(s.account.TodayBalance))
	r.drawSummaryRow("Automatic pulls", fmt.Sprintf("%d", s.autoPullCount))
	r.drawSummaryRow("Automatic pushes", fmt.Sprintf("%d", s.autoPushCount))
	r.drawSummaryRow("Consolidated activity entries", fmt.Sprintf("%d", s.activityCount))

	r.pdf.Ln(8)
	r.pdf.SetFont("Arial", "B", 11)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 7, "Recent Activity", "", 1, "L", false, 0, "")

	r.drawActivityHeader()

	start := 0
	if len(s.account.ConsolidatedActivity) > 25 {
		start = len(s.account.ConsolidatedActivity) - 25
	}
	for i, ca := range s.account.ConsolidatedActivity[start:] {
		if r.pdf.GetY() > 260 {
			r.pdf.AddPage()
			r.drawActivityHeader()
		}
		r.drawActivityRow(ca, i%2 == 0)
	}
}

func (r *Report) drawSummaryRow(label, value string) {
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.CellFormat(70, 6, label, "", 0, "L", false, 0, "")
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.CellFormat(contentWidth-70, 6, value, "", 1, "L", false, 0, "")
}

func (r *Report) drawActivityHeader() {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 8)

	widths := []float64{25, 60, 30, 30, 35}
	headers := []string{"Date", "Name", "Category", "Amount", "Balance"}
	for i, h := range headers {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, h, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *Report) drawActivityRow(ca models.ConsolidatedActivity, alt bool) {
	if alt {
		r.pdf.SetFillColor(250, 250, 250)
	} else {
		r.pdf.SetFillColor(255, 255, 255)
	}
	r.pdf.SetFont("Arial", "", 8)
	r.pdf.SetTextColor(50, 50, 50)

	widths := []float64{25, 60, 30, 30, 35}
	r.pdf.CellFormat(widths[0], 5, ca.DateString(), "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(widths[1], 5, truncate(ca.Name, 38), "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(widths[2], 5, truncate(ca.Category, 18), "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(widths[3], 5, FormatMoneyFull(ca.Amount), "1", 0, "R", true, 0, "")
	r.pdf.CellFormat(widths[4], 5, FormatMoneyFull(ca.Balance), "1", 1, "R", true, 0, "")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
