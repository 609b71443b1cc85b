package handler

import (
	"encoding/json"
	"io"
	"math"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"matreshka-feed/internal/config"
	"matreshka-feed/internal/domain"
	"matreshka-feed/internal/middleware"
	"matreshka-feed/internal/service"
)

type PhotoHandler struct {
	photoService service.PhotoService
	cfg          *config.Config
}

func NewPhotoHandler(photoService service.PhotoService, cfg *config.Config) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		cfg:          cfg,
	}
}

// uploadFields are the optional form values accepted next to the file,
// either as individual fields or bundled in a "metadata" JSON blob.
type uploadFields struct {
	Owner       string `json:"owner"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return middleware.BadRequest("No photo provided")
	}

	input, err := h.readUpload(file, parseFields(c))
	if err != nil {
		return err
	}

	photo, err := h.photoService.Upload(c.Context(), *input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"id":           photo.ID,
		"filename":     photo.FileName,
		"url":          photo.URL,
		"thumbnailUrl": photo.ThumbnailURL,
		"width":        photo.Width,
		"height":       photo.Height,
		"size":         photo.SizeBytes,
	})
}

func (h *PhotoHandler) UploadBatch(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return middleware.BadRequest("Invalid multipart form")
	}

	files := form.File["photos[]"]
	if len(files) == 0 {
		files = form.File["photos"]
	}
	if len(files) == 0 {
		return middleware.BadRequest("No photos provided")
	}

	fields := parseFields(c)
	inputs := make([]domain.UploadInput, 0, len(files))
	for _, file := range files {
		input, err := h.readUpload(file, fields)
		if err != nil {
			// Unreadable parts join the per-item failures instead of
			// aborting the batch.
			inputs = append(inputs, domain.UploadInput{FileName: file.Filename})
			continue
		}
		inputs = append(inputs, *input)
	}

	result, err := h.photoService.UploadBatch(c.Context(), inputs)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"uploaded": result.Uploaded,
		"failed":   result.Failed,
		"photos":   result.Photos,
		"errors":   result.Errors,
	})
}

func (h *PhotoHandler) Feed(c *fiber.Ctx) error {
	params := domain.PageParams{
		Limit:  c.QueryInt("limit", domain.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}
	params.Validate()

	photos, total, err := h.photoService.List(c.Context(), params)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"photos":  photos,
		"count":   len(photos),
		"total":   total,
		"limit":   params.Limit,
		"offset":  params.Offset,
	})
}

func (h *PhotoHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid photo ID")
	}

	photo, err := h.photoService.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"photo":   photo,
	})
}

func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid photo ID")
	}

	if err := h.photoService.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *PhotoHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.photoService.Stats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"total_photos":     stats.TotalPhotos,
		"distinct_owners":  stats.DistinctOwners,
		"total_size_bytes": stats.TotalSizeBytes,
		"total_size_mb":    math.Round(float64(stats.TotalSizeBytes)/(1024*1024)*100) / 100,
	})
}

func (h *PhotoHandler) Health(c *fiber.Ctx) error {
	if err := h.photoService.Health(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"status":  "unhealthy",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  "ok",
		"storage": h.cfg.StorageBackend,
	})
}

// ServeFile streams stored image bytes on the local backend's /uploads
// route. The hosted backend serves images from MinIO's public URLs and
// never hits this path.
func (h *PhotoHandler) ServeFile(c *fiber.Ctx) error {
	ref := c.Params("*")
	if ref == "" {
		return middleware.NotFound("File not found")
	}

	reader, err := h.photoService.OpenBlob(c.Context(), ref)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.SendStream(reader)
}

// readUpload pulls one multipart file into an UploadInput. The size
// gate runs on the declared size before any bytes are read.
func (h *PhotoHandler) readUpload(file *multipart.FileHeader, fields uploadFields) (*domain.UploadInput, error) {
	if file.Size > h.cfg.MaxUploadBytes {
		return nil, domain.Validationf("file too large: %d bytes (max %d)", file.Size, h.cfg.MaxUploadBytes)
	}

	f, err := file.Open()
	if err != nil {
		return nil, middleware.BadRequest("Failed to read file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, middleware.BadRequest("Failed to read file")
	}

	return &domain.UploadInput{
		FileName:    file.Filename,
		Data:        data,
		Owner:       fields.Owner,
		Category:    fields.Category,
		Description: fields.Description,
	}, nil
}

func parseFields(c *fiber.Ctx) uploadFields {
	fields := uploadFields{}
	if meta := c.FormValue("metadata"); meta != "" {
		// Best effort; unparseable metadata is ignored like any other
		// missing optional field.
		_ = json.Unmarshal([]byte(meta), &fields)
	}
	if v := c.FormValue("owner"); v != "" {
		fields.Owner = v
	}
	if v := c.FormValue("category"); v != "" {
		fields.Category = v
	}
	if v := c.FormValue("description"); v != "" {
		fields.Description = v
	}
	return fields
}
