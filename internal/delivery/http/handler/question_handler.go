package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfqa/internal/delivery/http/dto"
	"pdfqa/internal/domain/entity"
	"pdfqa/internal/usecase/qa"
)

// minQuestionLen rejects questions too short to retrieve anything useful.
const minQuestionLen = 5

type QuestionHandler struct {
	qaUsecase *qa.QAUsecase
}

func NewQuestionHandler(qaUsecase *qa.QAUsecase) *QuestionHandler {
	return &QuestionHandler{qaUsecase: qaUsecase}
}

// Ask godoc
// @Summary      Ask a question about a document
// @Description  Answer a question grounded in the document's vector index
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Document ID"
// @Param        request  body  dto.QuestionRequest  true  "Question payload"
// @Success      200  {object}  dto.QuestionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/ask [post]
func (h *QuestionHandler) Ask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid document id"})
	}

	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	question := strings.TrimSpace(req.Question)
	if len(question) < minQuestionLen {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "question must be at least 5 characters"})
	}

	answer, sources, err := h.qaUsecase.Answer(c.Context(), id, question)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document not found"})
	case errors.Is(err, entity.ErrIndexNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document index not found, indexing may still be in progress"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	nodes := make([]dto.SourceNode, len(sources))
	for i, src := range sources {
		nodes[i] = dto.SourceNode{Text: src.Text, Score: src.Score}
	}

	return c.Status(fiber.StatusOK).JSON(dto.QuestionResponse{
		DocumentID:  id,
		Question:    question,
		Answer:      answer,
		SourceNodes: nodes,
	})
}
