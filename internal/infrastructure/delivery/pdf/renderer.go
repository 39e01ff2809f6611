// Package pdf renders payslips and offboarding letters.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 7.0
	labelWidth = 70.0
)

// Renderer produces A4 documents branded with the organisation name.
type Renderer struct {
	orgName string
	now     func() time.Time
}

func NewRenderer(orgName string) *Renderer {
	return &Renderer{orgName: orgName, now: time.Now}
}

func (r *Renderer) RenderPayslip(rec *domain.PayrollRecord, user *domain.User) ([]byte, error) {
	doc := r.newDocument("Payslip")

	doc.SetFont(fontFamily, "", 12)
	r.row(doc, "Employee", user.Name)
	r.row(doc, "Email", user.Email)
	r.row(doc, "Period", fmt.Sprintf("%s %d", time.Month(rec.Month), rec.Year))
	doc.Ln(lineHeight)

	r.row(doc, "Base salary", rec.BaseSalary.StringFixed(2))
	r.row(doc, "Working days", fmt.Sprint(rec.WorkingDays))
	r.row(doc, "Days present", fmt.Sprint(rec.DaysPresent))
	r.row(doc, "Daily rate", rec.DailyRate.StringFixed(2))
	r.row(doc, "Gross salary", rec.GrossSalary.StringFixed(2))
	doc.Ln(lineHeight / 2)

	doc.SetFont(fontFamily, "B", 12)
	doc.Cell(0, lineHeight, "Deductions")
	doc.Ln(lineHeight)
	doc.SetFont(fontFamily, "", 12)
	r.row(doc, "  Tax", rec.Tax.StringFixed(2))
	r.row(doc, "  Provident fund", rec.ProvidentFund.StringFixed(2))
	doc.Ln(lineHeight / 2)

	doc.SetFont(fontFamily, "B", 14)
	r.row(doc, "Net salary", rec.NetSalary.StringFixed(2))

	return r.output(doc)
}

func (r *Renderer) RenderLetter(kind ports.LetterKind, o *domain.Offboarding, user *domain.User) ([]byte, error) {
	lastDay := o.LastWorkingDate.Format("January 2, 2006")

	var title string
	var paragraphs []string
	switch kind {
	case ports.ExperienceLetter:
		title = "Experience Letter"
		paragraphs = []string{
			"To Whom It May Concern,",
			fmt.Sprintf("This letter confirms that %s was employed at %s from %s to %s, holding the role of %s.",
				user.Name, r.orgName, user.CreatedAt.Format("January 2, 2006"), lastDay, user.Role),
			"We wish them all the best in their future endeavours.",
		}
	case ports.RelievingLetter:
		title = "Relieving Letter"
		paragraphs = []string{
			fmt.Sprintf("Dear %s,", user.Name),
			fmt.Sprintf("Your resignation has been accepted and you are relieved from your duties at %s effective %s. All clearances have been completed.",
				r.orgName, lastDay),
			"We wish you every success in your future career.",
		}
	default:
		return nil, fmt.Errorf("render letter: unknown kind %q", kind)
	}

	doc := r.newDocument(title)
	doc.SetFont(fontFamily, "", 12)
	for _, p := range paragraphs {
		doc.MultiCell(0, lineHeight, p, "", "L", false)
		doc.Ln(lineHeight / 2)
	}
	doc.Ln(lineHeight * 2)
	doc.Cell(0, lineHeight, "Human Resources, "+r.orgName)

	return r.output(doc)
}

func (r *Renderer) newDocument(title string) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator(r.orgName, true)
	doc.SetCreationDate(r.now())
	doc.AddPage()

	doc.SetFont(fontFamily, "B", 10)
	doc.CellFormat(0, lineHeight, r.orgName, "", 1, "R", false, 0, "")
	doc.SetFont(fontFamily, "B", 22)
	doc.CellFormat(0, lineHeight*2, title, "", 1, "C", false, 0, "")
	doc.Ln(lineHeight)
	return doc
}

func (r *Renderer) row(doc *fpdf.Fpdf, label, value string) {
	doc.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
	doc.CellFormat(0, lineHeight, value, "", 1, "L", false, 0, "")
}

func (r *Renderer) output(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
