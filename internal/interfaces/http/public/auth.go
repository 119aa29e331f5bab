package public

import (
	"net/http"

	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
)

type authVerifyResponse struct {
	Status string                   `json:"status"`
	User   common.AuthenticatedUser `json:"user"`
	Admin  bool                     `json:"admin"`
}

// authVerifyHandler はトークンの有効性確認用。ミドルウェア通過時点で検証済みの
// ユーザーをそのまま返す。
func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, "認証情報の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, authVerifyResponse{
			Status: "ok",
			User:   user,
			Admin:  user.HasRole("admin"),
		})
	}
}
