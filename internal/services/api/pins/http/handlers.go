// Package http provides http transport for pins
package http

import (
	"io"
	stdhttp "net/http"
	"os"
	"path/filepath"

	"bluerail/internal/core/cidx"
	"bluerail/internal/modkit/httpkit"
	perr "bluerail/internal/platform/errors"
	"bluerail/internal/platform/logger"
	"bluerail/internal/platform/net/http/bind"
	"bluerail/internal/services/api/pins/domain"
	svc "bluerail/internal/services/api/pins/service"

	"github.com/google/uuid"
)

// MaxUploadBytes caps a single multipart upload
const MaxUploadBytes = 500 << 20 // 500MB

// Register mounts pins endpoints on the given router
func Register(r httpkit.Router, s svc.Service, stagingDir string) {
	_ = bind.RegisterValidation("cid", func(fl bind.FieldLevel) bool {
		v, ok := fl.Field().Interface().(string)
		return ok && cidx.Valid(v)
	})

	h := &handlers{svc: s, stagingDir: stagingDir}
	httpkit.PostJSON[domain.FromURLInput](r, "/from-url", h.fromURL)
	httpkit.PostJSON[domain.PinCIDInput](r, "/cid", h.pinCID)
	r.Post("/file", httpkit.Handle(h.file))
}

type handlers struct {
	svc        svc.Service
	stagingDir string
}

// swagger:route POST /pins/from-url Pins pinsFromURL
// @Summary Fetch remote media and pin it
// @Tags Pins
// @Accept json
// @Produce json
// @Param payload body domain.FromURLInput true "Media URL"
// @Success 200 {object} domain.PinResult "ok"
// @Router /pins/from-url [post]
func (h *handlers) fromURL(r *stdhttp.Request, in domain.FromURLInput) (any, error) {
	return h.svc.PinFromURL(r.Context(), in.URL)
}

// swagger:route POST /pins/cid Pins pinsCID
// @Summary Pin content that already exists on IPFS to the local node
// @Tags Pins
// @Accept json
// @Produce json
// @Param payload body domain.PinCIDInput true "Content identifier"
// @Success 200 {object} domain.PinCIDResult "ok"
// @Router /pins/cid [post]
func (h *handlers) pinCID(r *stdhttp.Request, in domain.PinCIDInput) (any, error) {
	return h.svc.PinExisting(r.Context(), in.CID)
}

// swagger:route POST /pins/file Pins pinsFile
// @Summary Upload a file and pin it
// @Tags Pins
// @Accept mpfd
// @Produce json
// @Param file formData file true "File to pin"
// @Success 200 {object} domain.PinResult "ok"
// @Router /pins/file [post]
func (h *handlers) file(r *stdhttp.Request) httpkit.Response {
	r.Body = stdhttp.MaxBytesReader(nil, r.Body, MaxUploadBytes)

	part, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *stdhttp.MaxBytesError
		if bind.As(err, &tooBig) {
			return httpkit.Error(perr.InvalidArgf("file exceeds %d byte limit", int64(MaxUploadBytes)))
		}
		return httpkit.Error(perr.Validationf("multipart file part missing"))
	}
	defer func() { _ = part.Close() }()

	// spool to staging under a throwaway name, the original filename is
	// metadata only
	staged := filepath.Join(h.stagingDir, "upload-"+uuid.NewString())
	dst, err := os.Create(staged)
	if err != nil {
		return httpkit.Error(perr.Wrapf(err, perr.ErrorCodeUnknown, "staging create failed"))
	}
	defer func() {
		if rmErr := os.Remove(staged); rmErr != nil {
			logger.C(r.Context()).Warn().Err(rmErr).Str("path", staged).Msg("staging cleanup failed")
		}
	}()

	if _, err := io.Copy(dst, part); err != nil {
		_ = dst.Close()
		var tooBig *stdhttp.MaxBytesError
		if bind.As(err, &tooBig) {
			return httpkit.Error(perr.InvalidArgf("file exceeds %d byte limit", int64(MaxUploadBytes)))
		}
		return httpkit.Error(perr.Wrapf(err, perr.ErrorCodeUnknown, "staging write failed"))
	}
	if err := dst.Close(); err != nil {
		return httpkit.Error(perr.Wrapf(err, perr.ErrorCodeUnknown, "staging close failed"))
	}

	res, err := h.svc.PinFile(r.Context(), staged, header.Filename)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.OK(res)
}
