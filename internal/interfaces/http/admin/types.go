package admin

import "time"

// adminFeedbackResponse は管理画面一覧・詳細で返すフィードバックの形。
type adminFeedbackResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	HotelID       string         `json:"hotelId,omitempty"`
	HotelName     string         `json:"hotelName"`
	RoomNumber    string         `json:"roomNumber,omitempty"`
	StayDate      string         `json:"stayDate,omitempty"`
	Ratings       map[string]int `json:"ratings"`
	AverageRating float64        `json:"averageRating"`
	Comments      string         `json:"comments"`
	Status        string         `json:"status"`
	UserID        string         `json:"userId,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// adminFeedbackListResponse はフィルタ適用済み一覧とミラー状態を同時に返す。
type adminFeedbackListResponse struct {
	Items         []adminFeedbackResponse `json:"items"`
	Total         int                     `json:"total"`
	AverageRating float64                 `json:"averageRating"`
	Loading       bool                    `json:"loading"`
	LastError     string                  `json:"lastError,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type adminMetricsResponse struct {
	Total            int                `json:"total"`
	AverageRating    float64            `json:"averageRating"`
	StatusCounts     map[string]int     `json:"statusCounts"`
	CategoryAverages map[string]float64 `json:"categoryAverages"`
}

type exportCreateRequest struct {
	IDs []string `json:"ids"`
}

type exportJobResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Filename  string    `json:"filename,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type backupResponse struct {
	Filename     string    `json:"filename"`
	RecordCount  int       `json:"recordCount"`
	LastBackupAt time.Time `json:"lastBackupAt"`
}

type lastBackupResponse struct {
	LastBackupAt *time.Time `json:"lastBackupAt"`
}

type refreshResponse struct {
	Total     int    `json:"total"`
	Loading   bool   `json:"loading"`
	LastError string `json:"lastError,omitempty"`
}
