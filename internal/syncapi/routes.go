package syncapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Valstan/MatricaRMZ-sub006/common/mhttp"
	"github.com/Valstan/MatricaRMZ-sub006/internal/auth"
)

// RegisterRoutes wires the push/pull endpoints onto the given router
// group, following the teacher's routes.go convention of one function
// per component mounting its own subtree.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	sync := router.Group("/sync")
	sync.Post("/push", h.handlePush)
	sync.Get("/pull", h.handlePull)
}

// @Summary Push local changes
// @Tags sync
// @Accept json
// @Produce json
// @Param request body PushRequest true "Upserts"
// @Success 200 {object} PushResponse
// @Router /sync/push [post]
func (h *Handler) handlePush(c *fiber.Ctx) error {
	var req PushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(mhttp.ResponseError{Title: "Bad Request", Message: "malformed push body"})
	}

	actor := auth.ActorFromCtx(c)

	resp, err := h.Push(c.UserContext(), req, actor)
	if err != nil {
		return mhttp.WithError(c, err)
	}

	return mhttp.OK(c, resp)
}

// @Summary Pull outstanding changes
// @Tags sync
// @Produce json
// @Param cursor_seq query int true "last applied server_seq"
// @Param limit query int false "max rows"
// @Success 200 {object} PullResponse
// @Router /sync/pull [get]
func (h *Handler) handlePull(c *fiber.Ctx) error {
	cursor, _ := strconv.ParseUint(c.Query("cursor_seq", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	resp, err := h.Pull(c.UserContext(), PullRequest{CursorSeq: cursor, Limit: limit})
	if err != nil {
		return mhttp.WithError(c, err)
	}

	return mhttp.OK(c, resp)
}
