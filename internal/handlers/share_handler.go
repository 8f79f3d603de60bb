package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gruby/internal/share"
)

type ShareResolver interface {
	Resolve(ctx context.Context, kind share.Kind, id, userAgent string) (*share.Target, error)
	RedirectURL(kind share.Kind, id, userAgent string) string
}

type ShareHandler struct {
	shares ShareResolver
}

func NewShareHandler(shares ShareResolver) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// GetShareTarget returns the deep link, store link and a preview of the shared record.
func (h *ShareHandler) GetShareTarget(c *gin.Context) {
	kind, err := share.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err, "share target")
		return
	}

	target, err := h.shares.Resolve(c.Request.Context(), kind, c.Param("id"), c.GetHeader("User-Agent"))
	if err != nil {
		respondError(c, err, string(kind))
		return
	}
	c.JSON(http.StatusOK, target)
}

// RedirectShare sends a browser that followed a shared link to the right store or web page.
func (h *ShareHandler) RedirectShare(c *gin.Context) {
	kind, err := share.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err, "share target")
		return
	}
	c.Redirect(http.StatusFound, h.shares.RedirectURL(kind, c.Param("id"), c.GetHeader("User-Agent")))
}
