package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hoaxify/attachments"
	"hoaxify/models"
	"hoaxify/posts"
	"hoaxify/timeline"
	"hoaxify/utils"
)

type AttachmentRef struct {
	ID uint64 `json:"id"`
}

type HoaxCreateRequest struct {
	Content    string         `json:"content" binding:"required,min=10,max=5000"`
	Attachment *AttachmentRef `json:"attachment"`
}

type HoaxHandlers struct {
	service  *posts.Service
	uploader *attachments.Uploader
	log      zerolog.Logger
}

func NewHoaxHandlers(service *posts.Service, uploader *attachments.Uploader, log zerolog.Logger) *HoaxHandlers {
	return &HoaxHandlers{
		service:  service,
		uploader: uploader,
		log:      log.With().Str("component", "http").Logger(),
	}
}

func pageRequest(c *gin.Context) timeline.PageRequest {
	return timeline.PageRequest{
		Number: utils.StringToInt(c.Query("page"), 0),
		Size:   utils.StringToInt(c.Query("size"), 0),
	}
}

func (h *HoaxHandlers) Create(c *gin.Context, user *models.User) {
	r := HoaxCreateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		respondBindError(c, err)
		return
	}
	var ref *uint64
	if r.Attachment != nil {
		ref = &r.Attachment.ID
	}
	post, err := h.service.Create(c.Request.Context(), user.ID, r.Content, ref)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, NewHoaxVM(*post))
}

func (h *HoaxHandlers) List(c *gin.Context) {
	h.list(c, "")
}

func (h *HoaxHandlers) ListForUser(c *gin.Context) {
	h.list(c, c.Param("username"))
}

func (h *HoaxHandlers) list(c *gin.Context, username string) {
	page, err := h.service.List(c.Request.Context(), username, pageRequest(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newHoaxPage(page))
}

// Relative serves /hoaxes/:id with direction=before|after, count=true and
// sort=field[,desc]
func (h *HoaxHandlers) Relative(c *gin.Context) {
	h.relative(c, "")
}

func (h *HoaxHandlers) RelativeForUser(c *gin.Context) {
	h.relative(c, c.Param("username"))
}

func (h *HoaxHandlers) relative(c *gin.Context, username string) {
	anchor := utils.StringToUInt64Ptr(c.Param("id"))
	if anchor == nil {
		utils.AbortWithApiError(c, http.StatusBadRequest, "invalid hoax id")
		return
	}
	result, err := h.service.Query(c.Request.Context(), timeline.Query{
		Username:  username,
		Anchor:    anchor,
		Direction: timeline.ParseDirection(c.Query("direction")),
		Page:      pageRequest(c),
		Sort:      timeline.ParseSort(c.Query("sort")),
		Count:     c.Query("count") == "true",
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	switch {
	case result.Page != nil:
		c.JSON(http.StatusOK, newHoaxPage(result.Page))
	case result.List != nil:
		c.JSON(http.StatusOK, newHoaxVMs(result.List))
	default:
		c.JSON(http.StatusOK, CountResponse{Count: result.Count})
	}
}

func (h *HoaxHandlers) Upload(c *gin.Context, user *models.User) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.AbortWithApiError(c, http.StatusBadRequest, "missing file")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	attachment, err := h.uploader.Upload(c.Request.Context(), file)
	switch {
	case errors.Is(err, attachments.ErrTooLarge):
		utils.AbortWithApiError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, attachments.ErrEmptyFile):
		utils.AbortWithApiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, attachments.ErrInsufficientSpace):
		utils.AbortWithApiError(c, http.StatusInsufficientStorage, err.Error())
	case err != nil:
		respondError(c, h.log, err)
	default:
		h.log.Debug().Uint64("user", user.ID).Uint64("attachment", attachment.ID).Msg("upload")
		c.JSON(http.StatusOK, NewAttachmentVM(attachment))
	}
}
