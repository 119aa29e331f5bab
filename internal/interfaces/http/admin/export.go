package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	adminapp "github.com/stayscope/guest-feedback-services/api/internal/admin/application"
	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
)

const (
	exportJobPending   = "pending"
	exportJobCompleted = "completed"
	exportJobFailed    = "failed"

	// exportJobTTL を過ぎた完了済みジョブは新規作成時に掃除する。
	exportJobTTL = 30 * time.Minute

	exportTimeout = 60 * time.Second
)

// exportJob は非同期エクスポート 1 回分の進行状態と生成物を保持する。
type exportJob struct {
	ID        string
	Status    string
	Artifact  *adminapp.Artifact
	Error     string
	CreatedAt time.Time
}

func (h *Handler) exportCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportCreateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxFeedbackRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "リクエストの形式が不正です")
			return
		}

		selection := admindomain.NewSelectionSet(req.IDs...)
		if selection.Len() == 0 {
			common.WriteError(h.logger, w, http.StatusBadRequest, "エクスポートするフィードバックを 1 件以上選択してください")
			return
		}

		job := &exportJob{
			ID:        uuid.NewString(),
			Status:    exportJobPending,
			CreatedAt: time.Now().UTC(),
		}
		h.jobsMu.Lock()
		h.pruneExpiredJobsLocked()
		h.jobs[job.ID] = job
		h.jobsMu.Unlock()

		response := exportJobResponseFrom(*job)

		// リクエストの打ち切りに巻き込まれないよう独立した寿命で実行する
		go h.runExportJob(job.ID, selection)

		common.WriteJSON(h.logger, w, http.StatusAccepted, response)
	}
}

func (h *Handler) runExportJob(jobID string, selection *admindomain.SelectionSet) {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	artifact, err := h.exportService.ExportSelected(ctx, selection)

	h.jobsMu.Lock()
	defer h.jobsMu.Unlock()
	job, ok := h.jobs[jobID]
	if !ok {
		return
	}
	if err != nil {
		job.Status = exportJobFailed
		job.Error = exportErrorMessage(err)
		if h.logger != nil {
			h.logger.Printf("export job failed id=%s err=%v", jobID, err)
		}
		return
	}
	job.Status = exportJobCompleted
	job.Artifact = artifact
}

func exportErrorMessage(err error) string {
	if errors.Is(err, adminapp.ErrNothingSelected) {
		return adminapp.ErrNothingSelected.Error()
	}
	return "PDF の生成に失敗しました"
}

func (h *Handler) exportStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := h.jobSnapshot(chi.URLParam(r, "jobId"))
		if !ok {
			common.WriteError(h.logger, w, http.StatusNotFound, "エクスポートジョブが見つかりません")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, exportJobResponseFrom(job))
	}
}

func (h *Handler) exportDownloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := h.jobSnapshot(chi.URLParam(r, "jobId"))
		if !ok {
			common.WriteError(h.logger, w, http.StatusNotFound, "エクスポートジョブが見つかりません")
			return
		}
		if job.Status != exportJobCompleted || job.Artifact == nil {
			common.WriteError(h.logger, w, http.StatusConflict, "エクスポートはまだ完了していません")
			return
		}
		writeArtifact(w, job.Artifact)
	}
}

// feedbackExportOneHandler は単票 PDF を同期生成してそのまま返す。
func (h *Handler) feedbackExportOneHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "フィードバックIDが指定されていません")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
		defer cancel()

		artifact, err := h.exportService.ExportOne(ctx, idParam)
		if err != nil {
			if errors.Is(err, adminapp.ErrFeedbackNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "フィードバックが見つかりません")
				return
			}
			h.logger.Printf("admin feedback export failed id=%s err=%v", idParam, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "PDF の生成に失敗しました")
			return
		}
		writeArtifact(w, artifact)
	}
}

func (h *Handler) backupCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
		defer cancel()

		artifact, at, err := h.exportService.BackupAll(ctx)
		if err != nil {
			h.logger.Printf("admin feedback backup failed: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "バックアップの作成に失敗しました")
			return
		}

		if strings.EqualFold(r.URL.Query().Get("download"), "true") {
			writeArtifact(w, artifact)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, backupResponse{
			Filename:     artifact.Filename,
			RecordCount:  h.mirrorCount(),
			LastBackupAt: at,
		})
	}
}

func (h *Handler) backupLastHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, ok := h.exportService.LastBackup()
		response := lastBackupResponse{}
		if ok {
			response.LastBackupAt = &at
		}
		common.WriteJSON(h.logger, w, http.StatusOK, response)
	}
}

// jobSnapshot はロック下でジョブ状態の写しを取る。Artifact は完了後に
// 書き換えないためポインタ共有で問題ない。
func (h *Handler) jobSnapshot(jobID string) (exportJob, bool) {
	jobID = strings.TrimSpace(jobID)
	h.jobsMu.Lock()
	defer h.jobsMu.Unlock()
	job, ok := h.jobs[jobID]
	if !ok {
		return exportJob{}, false
	}
	return *job, true
}

// pruneExpiredJobsLocked は TTL 超過の完了・失敗ジョブを捨てる。jobsMu 保持前提。
func (h *Handler) pruneExpiredJobsLocked() {
	deadline := time.Now().UTC().Add(-exportJobTTL)
	for id, job := range h.jobs {
		if job.Status != exportJobPending && job.CreatedAt.Before(deadline) {
			delete(h.jobs, id)
		}
	}
}

func (h *Handler) mirrorCount() int {
	if h.mirror == nil {
		return 0
	}
	return h.mirror.Count()
}

func exportJobResponseFrom(job exportJob) exportJobResponse {
	response := exportJobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
	}
	if job.Artifact != nil {
		response.Filename = job.Artifact.Filename
	}
	return response
}

func writeArtifact(w http.ResponseWriter, artifact *adminapp.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
