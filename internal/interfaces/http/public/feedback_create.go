package public

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
	publicapp "github.com/stayscope/guest-feedback-services/api/internal/public/application"
)

func (h *Handler) feedbackCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFeedbackRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxFeedbackRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		cmd := publicapp.SubmitFeedbackCommand{
			Name:       req.Name,
			Email:      req.Email,
			HotelID:    req.HotelID,
			RoomNumber: req.RoomNumber,
			StayDate:   req.StayDate,
			Ratings:    common.CanonicalRatingCategories(req.Ratings),
			Comments:   req.Comments,
			UserID:     req.UserID,
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		feedback, err := h.feedbackCommands.Submit(ctx, cmd)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteError(h.logger, w, http.StatusNotFound, "ホテルが見つかりません")
				return
			}
			h.logger.Printf("feedback create failed: %v", err)
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		h.notifyFeedbackReceipt(feedback.Name, feedback.HotelName, feedback.AverageRating())

		common.WriteJSON(h.logger, w, http.StatusCreated, createFeedbackResponse{
			ID:            feedback.ID,
			HotelName:     feedback.HotelName,
			AverageRating: feedback.AverageRating(),
			Status:        feedback.Status,
			CreatedAt:     feedback.CreatedAt,
		})
	}
}

// notifyFeedbackReceipt は受付完了を通知面へ流す。送達はベストエフォートで、
// 投稿処理の成否には影響させない。
func (h *Handler) notifyFeedbackReceipt(name, hotelName string, averageRating float64) {
	if h.notifier == nil {
		return
	}
	message := fmt.Sprintf("%s さんからのフィードバックを受け付けました（%s / 平均 %.1f）。", name, hotelName, averageRating)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.notifier.Info(ctx, "フィードバック受付", message)
	}()
}
