package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
	"go.mongodb.org/mongo-driver/mongo"
)

func (h *Handler) feedbackListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria := parseFilterCriteria(r.URL.Query())
		records := h.feedbackService.List(criteria)

		items := make([]adminFeedbackResponse, 0, len(records))
		for _, record := range records {
			items = append(items, adminFeedbackDomainToResponse(record))
		}

		response := adminFeedbackListResponse{
			Items:         items,
			Total:         len(items),
			AverageRating: admindomain.AverageRating(records),
		}
		if h.mirror != nil {
			response.Loading = h.mirror.IsLoading()
			response.LastError = h.mirror.LastError()
		}
		common.WriteJSON(h.logger, w, http.StatusOK, response)
	}
}

func (h *Handler) feedbackDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "フィードバックIDが指定されていません")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := h.feedbackService.Detail(ctx, idParam)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteError(h.logger, w, http.StatusNotFound, "フィードバックが見つかりません")
				return
			}
			h.logger.Printf("admin feedback detail fetch failed id=%s err=%v", idParam, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "フィードバックの取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, adminFeedbackDomainToResponse(*record))
	}
}

func (h *Handler) feedbackStatusUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "フィードバックIDが指定されていません")
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxFeedbackRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := h.feedbackService.UpdateStatus(ctx, idParam, req.Status)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteError(h.logger, w, http.StatusNotFound, "フィードバックが見つかりません")
				return
			}
			if _, statusErr := admindomain.NewStatus(req.Status); statusErr != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, "status の値が不正です")
				return
			}
			h.logger.Printf("admin feedback status update failed id=%s err=%v", idParam, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ステータスの更新に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, adminFeedbackDomainToResponse(*record))
	}
}

func (h *Handler) feedbackMetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := h.feedbackService.Metrics()
		common.WriteJSON(h.logger, w, http.StatusOK, adminMetricsResponse{
			Total:            summary.Total,
			AverageRating:    summary.AverageRating,
			StatusCounts:     summary.StatusCounts,
			CategoryAverages: summary.CategoryAverages,
		})
	}
}

// feedbackRefreshHandler はポーリングを待たずに全件再取得を強制する。
func (h *Handler) feedbackRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.mirror == nil {
			common.WriteError(h.logger, w, http.StatusServiceUnavailable, "ミラーが初期化されていません")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		h.mirror.Refresh(ctx)
		common.WriteJSON(h.logger, w, http.StatusOK, refreshResponse{
			Total:     h.mirror.Count(),
			Loading:   h.mirror.IsLoading(),
			LastError: h.mirror.LastError(),
		})
	}
}
