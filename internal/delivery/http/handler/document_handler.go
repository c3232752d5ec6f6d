package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pdfqa/internal/delivery/http/dto"
	"pdfqa/internal/domain/entity"
	"pdfqa/internal/usecase/document"
)

type DocumentHandler struct {
	docUsecase *document.DocumentUsecase
}

func NewDocumentHandler(docUsecase *document.DocumentUsecase) *DocumentHandler {
	return &DocumentHandler{docUsecase: docUsecase}
}

// Upload godoc
// @Summary      Upload a document
// @Description  Upload a PDF; the vector index is built in the background
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file   formData  file    true   "PDF file to upload"
// @Param        title  formData  string  false  "Optional display title"
// @Success      201  {object}  dto.DocumentInfo
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/documents/upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to open upload"})
	}
	defer src.Close()

	doc, err := h.docUsecase.Upload(c.Context(), file.Filename, c.FormValue("title"), src, file.Size)
	if err != nil {
		if entity.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentInfo(doc))
}

// List godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Success      200  {array}   dto.DocumentInfo
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs, err := h.docUsecase.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	infos := make([]dto.DocumentInfo, 0, len(docs))
	for i := range docs {
		infos = append(infos, dto.NewDocumentInfo(&docs[i]))
	}
	return c.Status(fiber.StatusOK).JSON(infos)
}

// GetByID godoc
// @Summary      Get document by ID
// @Tags         Documents
// @Produce      json
// @Param        id  path  int  true  "Document ID"
// @Success      200  {object}  dto.DocumentInfo
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid document id"})
	}

	doc, err := h.docUsecase.Get(c.Context(), id)
	if errors.Is(err, entity.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.NewDocumentInfo(doc))
}

// Delete godoc
// @Summary      Delete a document
// @Description  Remove the PDF, its index directory, and the record
// @Tags         Documents
// @Param        id  path  int  true  "Document ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid document id"})
	}

	if err := h.docUsecase.Delete(c.Context(), id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
