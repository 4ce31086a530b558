package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/money"
	"github.com/nextax/nextax/internal/report"
	"github.com/nextax/nextax/internal/service"
	"github.com/nextax/nextax/internal/tax"
	"github.com/shopspring/decimal"
)

// NewTable returns a bordered table with the shared header and cell styles.
func NewTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

func typeLabel(t model.TransactionType) string {
	if t == model.TypeIncome {
		return IncomeStyle.Render("รายรับ")
	}
	return ExpenseStyle.Render("รายจ่าย")
}

func signed(t model.TransactionType, amount decimal.Decimal) string {
	if t == model.TypeIncome {
		return IncomeStyle.Render("+" + money.FormatTHB(amount))
	}
	return ExpenseStyle.Render("-" + money.FormatTHB(amount))
}

func categoryLabel(t model.Transaction) string {
	if t.CategoryName == "" {
		return SubtleStyle.Render(model.UncategorizedName)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.CategoryColor)).Render(t.CategoryName)
}

// RenderTransactions lists transactions newest first as the store returns them.
func RenderTransactions(transactions []model.Transaction) string {
	if len(transactions) == 0 {
		return InfoStyle.Render("No transactions found.")
	}

	t := NewTable("ID", "Date", "Description", "Category", "Type", "Amount", "VAT", "Total", "")
	for _, txn := range transactions {
		receipt := ""
		if txn.ReceiptPath != "" {
			receipt = ReceiptIcon
		}
		t.Row(
			strconv.FormatInt(txn.ID, 10),
			txn.Date.Format(model.DateLayout),
			txn.Description,
			categoryLabel(txn),
			typeLabel(txn.Type),
			money.FormatTHB(txn.Amount),
			money.FormatTHB(txn.VATAmount),
			signed(txn.Type, txn.TotalWithVAT),
			receipt,
		)
	}
	return t.String()
}

// RenderTransaction shows every field of one transaction. receiptPath is the
// absolute receipt location, empty when none is attached.
func RenderTransaction(txn *model.Transaction, receiptPath string) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}

	field("Date", fmt.Sprintf("%s (%s)", txn.Date.Format(model.DateLayout), thaiDate(txn.Date)))
	field("Type", typeLabel(txn.Type))
	field("Category", categoryLabel(*txn))
	field("Amount", money.FormatTHB(txn.Amount))
	field("VAT", fmt.Sprintf("%s (%s)", money.FormatTHB(txn.VATAmount), txn.VATType))
	field("Total", signed(txn.Type, txn.TotalWithVAT))
	if txn.Notes != "" {
		field("Notes", txn.Notes)
	}
	if receiptPath != "" {
		field("Receipt", ReceiptIcon+" "+receiptPath)
	}
	field("Source", string(txn.Source))

	return RenderBox(fmt.Sprintf("#%d %s", txn.ID, txn.Description), strings.TrimRight(b.String(), "\n"))
}

// thaiDate formats d as "15 ม.ค. 2568".
func thaiDate(d time.Time) string {
	return fmt.Sprintf("%d %s %d", d.Day(), report.ThaiMonthShort(d.Month()), report.BuddhistYear(d.Year()))
}

// RenderCategories lists categories with a color swatch.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return InfoStyle.Render("No categories found.")
	}

	t := NewTable("ID", "Name", "Type", "Color")
	for _, c := range categories {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■ " + c.Color)
		t.Row(strconv.Itoa(c.ID), c.Name, typeLabel(c.Type), swatch)
	}
	return t.String()
}

// RenderSummary shows income and expense totals for a date range.
func RenderSummary(summary *service.Summary, start, end time.Time) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", SubtleStyle.Render("Income: "), IncomeStyle.Render(money.FormatTHB(summary.Income))),
		fmt.Sprintf("%s %s", SubtleStyle.Render("Expense:"), ExpenseStyle.Render(money.FormatTHB(summary.Expense))),
		fmt.Sprintf("%s %s", SubtleStyle.Render("Net:    "), BoldStyle.Render(money.FormatTHB(summary.Net))),
		SubtleStyle.Render(fmt.Sprintf("%d transactions", summary.TransactionCount)),
	)
	title := fmt.Sprintf("%s Summary %s to %s", ChartIcon, start.Format(model.DateLayout), end.Format(model.DateLayout))
	return RenderBox(title, body)
}

// RenderTaxBreakdown shows the per-bracket table for a calculation.
func RenderTaxBreakdown(result tax.Result, amount decimal.Decimal) string {
	t := NewTable("Bracket (฿)", "Rate", "Taxable", "Tax")
	for _, d := range result.Details {
		t.Row(d.RangeLabel, d.RateLabel, money.FormatTHB(d.TaxableAmount), money.FormatTHB(d.TaxInBracket))
	}

	totals := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", SubtleStyle.Render("Taxable amount:"), money.FormatTHB(amount)),
		fmt.Sprintf("%s %s", SubtleStyle.Render("Total tax:     "), BoldStyle.Render(money.FormatTHB(result.TotalTax))),
		fmt.Sprintf("%s %s", SubtleStyle.Render("Effective rate:"), effectivePercent(result.EffectiveRate(amount))),
	)
	if len(result.Details) == 0 {
		return totals
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.String(), "", totals)
}

func effectivePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// RenderReport renders the annual report for the terminal.
func RenderReport(rpt *report.Report) string {
	sections := []string{
		TitleStyle.Render(fmt.Sprintf("%s รายงานประจำปี พ.ศ. %d (%d)", LedgerIcon, rpt.BuddhistYear(), rpt.Year)),
	}
	if rpt.BusinessName != "" {
		sections = append(sections, BoldStyle.Render(rpt.BusinessName))
	}

	sections = append(sections,
		renderReportSummary(rpt),
		SectionStyle.Render("ภาษีเงินได้ "+rpt.Regime.Label()),
		RenderTaxBreakdown(rpt.Tax, rpt.TaxableIncome),
		SectionStyle.Render("รายเดือน"),
		renderMonthly(rpt.Monthly),
		SectionStyle.Render("หมวดหมู่"),
		renderCategoryBreakdown(rpt.Categories),
		SectionStyle.Render("ภาษีมูลค่าเพิ่ม (VAT)"),
		renderVAT(rpt.VAT),
		SubtleStyle.Render("Generated "+rpt.GeneratedAt.Format("2006-01-02 15:04")),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderReportSummary(rpt *report.Report) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", SubtleStyle.Render("รายรับรวม:  "), IncomeStyle.Render(money.FormatTHB(rpt.TotalIncome))),
		fmt.Sprintf("%s %s", SubtleStyle.Render("รายจ่ายรวม: "), ExpenseStyle.Render(money.FormatTHB(rpt.TotalExpense))),
		fmt.Sprintf("%s %s", SubtleStyle.Render("กำไรสุทธิ:  "), BoldStyle.Render(money.FormatTHB(rpt.NetProfit))),
		"",
	)
}

func renderMonthly(rows []report.MonthlyRow) string {
	t := NewTable("เดือน", "รายรับ", "รายจ่าย", "กำไร")
	for _, row := range rows {
		profit := money.FormatTHB(row.Profit)
		if row.Profit.IsNegative() {
			profit = ExpenseStyle.Render(profit)
		}
		t.Row(report.ThaiMonth(row.Month), money.FormatTHB(row.Income), money.FormatTHB(row.Expense), profit)
	}
	return t.String()
}

func renderCategoryBreakdown(rows []report.CategoryRow) string {
	if len(rows) == 0 {
		return SubtleStyle.Render("ไม่มีรายการ")
	}

	t := NewTable("หมวดหมู่", "ประเภท", "จำนวน", "ยอดรวม", "%")
	for _, row := range rows {
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color)).Render("■ ") + row.Name
		t.Row(name, typeLabel(row.Type), strconv.Itoa(row.Count), money.FormatTHB(row.Total), row.Percent.StringFixed(1)+"%")
	}
	return t.String()
}

func renderVAT(vat report.VATSummary) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", SubtleStyle.Render("ภาษีขาย:     "), money.FormatTHB(vat.Output)),
		fmt.Sprintf("%s %s", SubtleStyle.Render("ภาษีซื้อ:     "), money.FormatTHB(vat.Input)),
		fmt.Sprintf("%s %s %s", SubtleStyle.Render("ภาษีสุทธิ:    "), money.FormatTHB(vat.Net.Abs()), BoldStyle.Render(vat.Status.ThaiLabel())),
		"",
	)
}
