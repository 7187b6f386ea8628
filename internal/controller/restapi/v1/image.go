package v1

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hikari-systems/image-service/internal/controller/restapi/v1/response"
	"github.com/hikari-systems/image-service/internal/dto"
	"github.com/hikari-systems/image-service/pkg/types/errs"
)

// @Summary  	Get image descriptor
// @Description Returns the stored record plus a resolved originalFileUrl
// @Tags 		images
// @Produce 	json
// @Param 		id path string true "Image ID"
// @Success 	200 {object} dto.ImageDescriptor
// @Failure 	404 {object} response.Error "Not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/image/{id} [get]
func (r *V1) getImage(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	desc, err := r.img.Descriptor(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) || errors.Is(err, errs.ErrNoUsableImage) {
			return errorResponse(ctx, http.StatusNotFound, "Not found")
		}
		r.logger.Error(err, "restapi - v1 - getImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(desc)
}

// @Summary  	Redirect to a resized variant
// @Description 302 to a signed URL; falls back size -> original -> downloaded -> source url
// @Tags 		images
// @Param 		id 	 path string true "Image ID"
// @Param 		size path string true "Size key"
// @Success 	302
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "No usable image data"
// @Router 		/api/image/r/{id}/{size} [get]
func (r *V1) getResizedImage(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	size := ctx.Params("size")

	target, err := r.img.VariantURL(ctx.UserContext(), id, size)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "Image not found: "+id)
		}
		r.logger.Error(err, "restapi - v1 - getResizedImage")

		return errorResponse(ctx, http.StatusInternalServerError, "no usable image data")
	}

	return ctx.Redirect(target, http.StatusFound)
}

// @Summary  	Upload an image
// @Description Stores the raw upload and, unless deferred, derives every configured size
// @Tags 		images
// @Accept 		mpfd
// @Produce 	json
// @Param 		category path     string true  "Category selecting the scaling set"
// @Param 		image 	 formData file   true  "Image file"
// @Param 		forceImmediateResize query string false "true forces inline transcoding"
// @Success 	201 {object} response.Image
// @Failure 	400 {object} response.Error "No image file supplied"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/image/{category} [post]
func (r *V1) uploadImage(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("image")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "No image file supplied")
	}

	force := strings.EqualFold(strings.TrimSpace(ctx.Query("forceImmediateResize")), "true")

	localPath := filepath.Join(r.uploadDir, uuid.NewString())
	if err := ctx.SaveFile(file, localPath); err != nil {
		r.logger.Error(err, "restapi - v1 - uploadImage - ctx.SaveFile")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with saving the file")
	}
	reap(ctx, localPath)

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	outcome, err := r.img.Ingest(ctx.UserContext(), dto.IngestInput{
		LocalPath:      localPath,
		Extension:      filepath.Ext(file.Filename),
		MimeType:       mimeType,
		Category:       ctx.Params("category"),
		ForceImmediate: force,
	})
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusCreated).JSON(response.NewImage(outcome))
}

// @Summary  	Re-transcode an existing image
// @Description Fetches the stored bytes back down and regenerates the original and every size
// @Tags 		images
// @Produce 	json
// @Param 		id path string true "Image ID"
// @Success 	201 {object} response.Image
// @Failure 	404 {object} response.Error "Image not found or never fetched"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/image/{id}/transcode [post]
func (r *V1) transcodeImage(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	rec, err := r.img.Get(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - transcodeImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	if rec.DownloadedS3Path == "" {
		return errorResponse(ctx, http.StatusNotFound, "image has no downloaded copy to transcode")
	}

	outcome, err := r.img.FullTranscode(ctx.UserContext(), rec)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - transcodeImage")

		return errorResponse(ctx, http.StatusInternalServerError, "transcode failed")
	}

	return ctx.Status(http.StatusCreated).JSON(response.NewImage(outcome))
}
