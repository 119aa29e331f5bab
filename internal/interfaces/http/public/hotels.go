package public

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
	publicapp "github.com/stayscope/guest-feedback-services/api/internal/public/application"
)

func (h *Handler) hotelListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		keyword := strings.TrimSpace(query.Get("keyword"))
		limit, _ := common.ParsePositiveInt(query.Get("limit"), 50)

		hotels, err := h.hotelQueries.List(ctx, publicapp.HotelFilter{Keyword: keyword, Limit: limit})
		if err != nil {
			h.logger.Printf("hotel list fetch failed: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ホテル一覧の取得に失敗しました")
			return
		}

		items := make([]hotelSummaryResponse, 0, len(hotels))
		for _, hotel := range hotels {
			items = append(items, buildHotelSummaryResponse(hotel))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, hotelListResponse{Items: items, Total: len(items)})
	}
}

func (h *Handler) hotelDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "ホテルIDが指定されていません")
			return
		}
		if _, err := primitive.ObjectIDFromHex(idParam); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "ホテルIDの形式が不正です")
			return
		}

		hotel, err := h.hotelQueries.Detail(ctx, idParam)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteError(h.logger, w, http.StatusNotFound, "ホテルが見つかりません")
				return
			}
			h.logger.Printf("hotel detail fetch failed id=%q err=%v", idParam, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ホテル情報の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, hotelDomainToDetailResponse(*hotel))
	}
}
