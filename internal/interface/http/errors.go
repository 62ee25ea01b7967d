package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-library-api/pkg/apperror"
	"github.com/oksasatya/go-library-api/pkg/response"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindInvalidBody:             http.StatusBadRequest,
	apperror.KindUnsupportedMediaType:    http.StatusUnsupportedMediaType,
	apperror.KindConflictingLogin:        http.StatusConflict,
	apperror.KindNotFound:                http.StatusNotFound,
	apperror.KindUnauthorized:            http.StatusUnauthorized,
	apperror.KindUploadFailed:            http.StatusBadGateway,
	apperror.KindPartialFailure:          http.StatusInternalServerError,
	apperror.KindInconsistentAssetRecord: http.StatusInternalServerError,
	apperror.KindNoImageSet:              http.StatusNotFound,
	apperror.KindBusy:                    http.StatusConflict,
	apperror.KindInternal:                http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	if s, ok := kindStatus[apperror.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// writeError sends the error envelope. Server-side failures are logged and
// their messages hidden unless they carry a kind.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := StatusFor(err)
	kind := apperror.KindOf(err)
	msg := apperror.MessageOf(err)

	if status >= http.StatusInternalServerError {
		fields := logrus.Fields{
			"request_id": c.GetString("request_id"),
			"kind":       kind.String(),
		}
		var ae *apperror.Error
		if errors.As(err, &ae) {
			if ae.RemoteID != "" {
				fields["remote_id"] = ae.RemoteID
			}
			if ae.AssetID != "" {
				fields["asset_id"] = ae.AssetID
			}
		}
		logger.WithError(err).WithFields(fields).Error("request failed")
		if kind == apperror.KindUnknown {
			msg = "internal server error"
		}
	}
	_ = c.Error(err)
	response.Error[any](c, status, msg, gin.H{"kind": kind.String()})
}
