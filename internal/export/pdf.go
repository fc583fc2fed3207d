// Package export renders exams and coverage reports into printable
// byte blobs. The rest of the system treats it as an opaque
// collaborator; nothing in here feeds back into the bank.
package export

import (
	"bytes"
	"fmt"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vnexam/examgen/internal/exam"
	"github.com/vnexam/examgen/internal/question"
)

// Mode selects which audience an exported exam targets.
type Mode string

const (
	// ModeStudent omits answers and explanations entirely.
	ModeStudent Mode = "student"
	// ModeTeacher appends the answer key with units and explanations.
	ModeTeacher Mode = "teacher"
)

// Valid reports whether m is a known export mode.
func (m Mode) Valid() bool {
	return m == ModeStudent || m == ModeTeacher
}

// PDFExporter renders exams as PDF documents. Vietnamese text needs a
// UTF-8 font; point FontPath (and optionally FontBoldPath) at TTF
// files. Without them the core Helvetica font is used and non-latin
// glyphs degrade.
type PDFExporter struct {
	FontPath     string
	FontBoldPath string
}

const pdfFontFamily = "examfont"

var upper = cases.Upper(language.Vietnamese)

// Exam renders the exam into a PDF blob. Student mode carries no
// answer or explanation text anywhere in the document.
func (e *PDFExporter) Exam(header exam.Header, questions []question.Question, mode Mode) ([]byte, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown export mode %q", mode)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	family := e.registerFonts(pdf)
	pdf.SetTitle(fmt.Sprintf("%s — %s", header.Semester, header.Subject), true)
	pdf.AddPage()

	// Header block
	pdf.SetFont(family, "B", 12)
	pdf.CellFormat(0, 7, upper.String(header.School), "", 1, "C", false, 0, "")
	pdf.SetFont(family, "B", 14)
	title := fmt.Sprintf("ĐỀ KIỂM TRA %s — %s", upper.String(header.Semester), upper.String(header.Subject))
	pdf.CellFormat(0, 9, title, "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s • Thời gian: %s", header.Grade, header.Time), "", 1, "C", false, 0, "")
	if header.Note != "" {
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 6, header.Note, "", "L", false)
	}
	pdf.Ln(4)

	var objective, essay []question.Question
	for _, q := range questions {
		if q.Type.Objective() {
			objective = append(objective, q)
		} else {
			essay = append(essay, q)
		}
	}

	num := 1
	if len(objective) > 0 {
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, 7, "Phần A: Trắc nghiệm", "", 1, "L", false, 0, "")
		pdf.Ln(1)
		for _, q := range objective {
			writeQuestion(pdf, family, num, q)
			num++
		}
	}

	if len(essay) > 0 {
		pdf.Ln(2)
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, 7, "Phần B: Tự luận", "", 1, "L", false, 0, "")
		pdf.Ln(1)
		for _, q := range essay {
			writeQuestion(pdf, family, num, q)
			num++
		}
	}

	if mode == ModeTeacher {
		pdf.Ln(4)
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, 7, "Đáp án và gợi ý lời giải", "", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont(family, "", 11)
		for i, q := range append(append([]question.Question(nil), objective...), essay...) {
			answer := fmt.Sprintf("Câu %d: Đáp án: %s", i+1, q.Answer.String())
			if q.Unit != "" {
				answer += fmt.Sprintf(" (%s)", q.Unit)
			}
			pdf.MultiCell(0, 6, answer, "", "L", false)
			if q.Explanation != "" {
				pdf.MultiCell(0, 6, "Gợi ý: "+q.Explanation, "", "L", false)
			}
		}
	}

	pdf.Ln(4)
	pdf.SetFont(family, "I", 11)
	pdf.CellFormat(0, 7, "— Hết —", "", 1, "C", false, 0, "")

	return output(pdf)
}

func writeQuestion(pdf *fpdf.Fpdf, family string, num int, q question.Question) {
	points := strconv.FormatFloat(q.Points, 'f', -1, 64)
	pdf.SetFont(family, "B", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("Câu %d (%s điểm) — %s:", num, points, q.Type.Label()), "", "L", false)
	pdf.SetFont(family, "", 11)
	pdf.MultiCell(0, 6, q.Prompt, "", "L", false)

	switch q.Type {
	case question.MultipleChoice:
		for i, opt := range q.Options {
			if opt.IsZero() {
				continue
			}
			pdf.MultiCell(0, 6, fmt.Sprintf("%c. %s", 'A'+i, opt.String()), "", "L", false)
		}
	case question.TrueFalse:
		pdf.MultiCell(0, 6, "Khoanh tròn Đúng hoặc Sai.", "", "L", false)
	case question.FillBlank:
		pdf.MultiCell(0, 6, "Điền vào chỗ trống.", "", "L", false)
	case question.Matching:
		pdf.MultiCell(0, 6, "Ghép cột A với cột B (giáo viên bổ sung bảng).", "", "L", false)
	case question.Essay:
		pdf.MultiCell(0, 6, "Trình bày lời giải rõ ràng, đủ bước.", "", "L", false)
	}
	pdf.Ln(2)
}

// registerFonts installs the configured UTF-8 fonts and returns the
// family to use, falling back to Helvetica when none are configured.
func (e *PDFExporter) registerFonts(pdf *fpdf.Fpdf) string {
	if e.FontPath == "" {
		return "Helvetica"
	}
	pdf.AddUTF8Font(pdfFontFamily, "", e.FontPath)
	bold := e.FontBoldPath
	if bold == "" {
		bold = e.FontPath
	}
	pdf.AddUTF8Font(pdfFontFamily, "B", bold)
	pdf.AddUTF8Font(pdfFontFamily, "I", e.FontPath)
	return pdfFontFamily
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
