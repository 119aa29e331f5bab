// Package pdf はフィードバックレポートを PDF として組版する。
// レポート本文の定型文言は配布先（社外含む）を考慮して英語で統一している。
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

const (
	pageFooterFormat = "Hotel Feedback Management System - Page %d of {nb}"

	// bulkCommentPreviewRunes は一覧表のコメント列に載せる最大文字数。
	bulkCommentPreviewRunes = 48
)

// Renderer は単票・一括のフィードバックレポートを生成する。
type Renderer struct{}

// NewRenderer は Renderer を生成する。
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderSingle は 1 レコードの詳細レポートを生成する。
func (r *Renderer) RenderSingle(record admindomain.Feedback) (data []byte, err error) {
	defer recoverRenderError(&err)

	doc := newDocument()
	doc.AddPage()

	writeTitle(doc, "Guest Feedback Report")
	writeRecordDetail(doc, record)

	return output(doc)
}

// RenderBulk は選択済みレコードの一覧サマリを生成する。
func (r *Renderer) RenderBulk(records []admindomain.Feedback) (data []byte, err error) {
	defer recoverRenderError(&err)

	doc := newDocument()
	doc.AddPage()

	writeTitle(doc, "Bulk Feedback Report")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(80, 80, 80)
	doc.CellFormat(0, 6, fmt.Sprintf("%d records - generated %s", len(records), time.Now().UTC().Format("2006-01-02")), "", 1, "L", false, 0, "")
	doc.Ln(4)

	writeBulkTable(doc, records)

	return output(doc)
}

// newDocument はフッター設定済みの A4 縦ドキュメントを用意する。
func newDocument() *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 10, fmt.Sprintf(pageFooterFormat, doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.SetAutoPageBreak(true, 20)
	return doc
}

func writeTitle(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(33, 58, 138)
	doc.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	doc.Ln(4)
}

// writeRecordDetail は単票フォーマットの本体。基本情報、カテゴリ別評価表、
// コメント全文の順に並べる。
func writeRecordDetail(doc *fpdf.Fpdf, record admindomain.Feedback) {
	writeKeyValue(doc, "Guest", record.Name)
	if record.Email != "" {
		writeKeyValue(doc, "Email", record.Email.String())
	}
	writeKeyValue(doc, "Hotel", record.HotelName)
	if record.RoomNumber != "" {
		writeKeyValue(doc, "Room", record.RoomNumber)
	}
	if record.StayDate != "" {
		writeKeyValue(doc, "Stay date", record.StayDate)
	}
	writeKeyValue(doc, "Submitted", record.CreatedAt.UTC().Format("2006-01-02 15:04"))
	writeKeyValue(doc, "Status", record.Status.String())
	writeKeyValue(doc, "Average rating", formatRating(record.AverageRating()))
	doc.Ln(4)

	writeRatingsTable(doc, record.Ratings)
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 8, "Comments", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	comments := record.Comments
	if strings.TrimSpace(comments) == "" {
		comments = "(no comments)"
	}
	doc.MultiCell(0, 6, comments, "", "L", false)
}

func writeKeyValue(doc *fpdf.Fpdf, key, value string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(40, 7, key, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

// writeRatingsTable はカテゴリ名順の評価表を描く。
func writeRatingsTable(doc *fpdf.Fpdf, ratings admindomain.RatingSet) {
	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(33, 58, 138)
	doc.SetTextColor(255, 255, 255)
	doc.CellFormat(120, 8, "Category", "1", 0, "L", true, 0, "")
	doc.CellFormat(40, 8, "Rating", "1", 1, "C", true, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(0, 0, 0)
	for i, category := range ratings.Categories() {
		fill := i%2 == 1
		doc.SetFillColor(241, 245, 249)
		doc.CellFormat(120, 8, category, "1", 0, "L", fill, 0, "")
		doc.CellFormat(40, 8, fmt.Sprintf("%d / 5", ratings[category]), "1", 1, "C", fill, 0, "")
	}
}

// writeBulkTable は一括出力の一覧表を描く。ページ跨ぎはヘッダー行を再掲する。
func writeBulkTable(doc *fpdf.Fpdf, records []admindomain.Feedback) {
	widths := []float64{45, 28, 22, 26, 69}
	headers := []string{"Guest", "Submitted", "Rating", "Status", "Comments"}

	writeHeader := func() {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(33, 58, 138)
		doc.SetTextColor(255, 255, 255)
		for i, header := range headers {
			doc.CellFormat(widths[i], 8, header, "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
	}
	writeHeader()

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	_, pageHeight := doc.GetPageSize()
	for i, record := range records {
		if doc.GetY() > pageHeight-30 {
			doc.AddPage()
			writeHeader()
			doc.SetFont("Helvetica", "", 10)
			doc.SetTextColor(0, 0, 0)
		}
		fill := i%2 == 1
		doc.SetFillColor(241, 245, 249)
		doc.CellFormat(widths[0], 7, record.Name, "1", 0, "L", fill, 0, "")
		doc.CellFormat(widths[1], 7, record.CreatedAt.UTC().Format("2006-01-02"), "1", 0, "L", fill, 0, "")
		doc.CellFormat(widths[2], 7, formatRating(record.AverageRating()), "1", 0, "C", fill, 0, "")
		doc.CellFormat(widths[3], 7, record.Status.String(), "1", 0, "L", fill, 0, "")
		doc.CellFormat(widths[4], 7, previewComment(record.Comments), "1", 1, "L", fill, 0, "")
	}
}

// formatRating は平均評価を小数第 1 位で表示する。
func formatRating(value float64) string {
	return fmt.Sprintf("%.1f", value)
}

// previewComment は一覧表向けにコメントを 1 行へ畳み、長文は省略記号で切る。
func previewComment(comments string) string {
	flat := strings.Join(strings.Fields(comments), " ")
	runes := []rune(flat)
	if len(runes) <= bulkCommentPreviewRunes {
		return flat
	}
	return string(runes[:bulkCommentPreviewRunes]) + "..."
}

func output(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// recoverRenderError は組版ライブラリ内部の panic をエラーへ畳み、
// 呼び出し側の通知経路に乗せられるようにする。
func recoverRenderError(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("PDF の生成に失敗しました: %v", rec)
	}
}
