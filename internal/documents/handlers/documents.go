package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"takeoff/internal/annotation/models"
	"takeoff/internal/common/middleware"
	"takeoff/internal/documents/repository"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Documents Handler
// ============================================================

type DocumentsHandler struct {
	repo *repository.Repository
}

func NewDocumentsHandler(repo *repository.Repository) *DocumentsHandler {
	return &DocumentsHandler{repo: repo}
}

// Register вешает маршруты документов на router.
func (h *DocumentsHandler) Register(r fiber.Router) {
	r.Post("/documents", h.Create)
	r.Get("/documents", h.List)
	r.Get("/documents/:id", h.Get)
	r.Patch("/documents/:id", h.Save)
	r.Put("/documents/:id/name", h.Rename)
	r.Delete("/documents/:id", h.Delete)
}

type createRequest struct {
	Name               string          `json:"name"`
	FileName           string          `json:"fileName"`
	FileURL            string          `json:"fileUrl"`
	Kind               models.Kind     `json:"kind"`
	OwnerUserID        string          `json:"ownerUserId"`
	ProjectID          string          `json:"projectId"`
	CompanyID          string          `json:"companyId"`
	ViewportDimensions models.Viewport `json:"viewportDimensions"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// Create заводит пустой документ.
func (h *DocumentsHandler) Create(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var req createRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name required"})
	}
	if !req.Kind.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "kind must be measurement or fixture"})
	}

	if req.OwnerUserID == "" {
		req.OwnerUserID = middleware.UserID(c)
	}

	doc := &models.Document{
		Name:               req.Name,
		FileName:           req.FileName,
		FileURL:            req.FileURL,
		Kind:               req.Kind,
		OwnerUserID:        req.OwnerUserID,
		ProjectID:          req.ProjectID,
		CompanyID:          req.CompanyID,
		ViewportDimensions: req.ViewportDimensions,
	}
	if err := h.repo.Create(c.Context(), doc); err != nil {
		log.Printf("[DOCS] create error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create document"})
	}

	return c.Status(http.StatusCreated).JSON(doc)
}

// List отдаёт документы проекта (?project=).
func (h *DocumentsHandler) List(c fiber.Ctx) error {
	docs, err := h.repo.List(c.Context(), c.Query("project"))
	if err != nil {
		log.Printf("[DOCS] list error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list documents"})
	}
	return c.JSON(fiber.Map{"documents": docs})
}

// Get отдаёт документ целиком.
func (h *DocumentsHandler) Get(c fiber.Ctx) error {
	doc, err := h.repo.Load(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "load", err)
	}
	return c.JSON(doc)
}

// Save перезаписывает только поля разметки (autosave).
func (h *DocumentsHandler) Save(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var fields models.SaveFields
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if !fields.Kind.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "kind must be measurement or fixture"})
	}

	if err := h.repo.Save(c.Context(), c.Params("id"), fields); err != nil {
		return h.fail(c, "save", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *DocumentsHandler) Rename(c fiber.Ctx) error {
	var req renameRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name required"})
	}

	if err := h.repo.Rename(c.Context(), c.Params("id"), req.Name); err != nil {
		return h.fail(c, "rename", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *DocumentsHandler) Delete(c fiber.Ctx) error {
	if err := h.repo.Delete(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "delete", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *DocumentsHandler) fail(c fiber.Ctx, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
	}
	log.Printf("[DOCS] %s error: %v", op, err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to " + op + " document"})
}
