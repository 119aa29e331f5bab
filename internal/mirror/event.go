package mirror

import admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"

// Op は変更イベントの操作種別。
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event はストア起点の変更通知 1 件。insert/update は Feedback 全体を、
// delete は対象 ID のみを運ぶ。
type Event struct {
	Op       Op
	Feedback admindomain.Feedback
	ID       string
}
