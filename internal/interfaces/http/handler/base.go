package handler

import (
	"net/http"

	"club-knowledge-api/internal/application/ingestion"
	apperrors "club-knowledge-api/pkg/errors"
)

// ingestionStatus 入库失败原因到 HTTP 状态与错误码
func ingestionStatus(reason ingestion.Reason) (int, apperrors.ErrorCode) {
	switch reason {
	case ingestion.ReasonInvalid:
		return http.StatusBadRequest, apperrors.CodeInvalidParam
	case ingestion.ReasonConnection:
		return http.StatusInternalServerError, apperrors.CodeDatabaseError
	case ingestion.ReasonEmbedding:
		return http.StatusInternalServerError, apperrors.CodeEmbeddingFailed
	default:
		return http.StatusInternalServerError, apperrors.CodeIngestionFailed
	}
}
