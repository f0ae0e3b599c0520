package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"hoaxify/models"
	"hoaxify/timeline"
	"hoaxify/utils"
)

type UserVM struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image"`
}

type AttachmentVM struct {
	ID       uint64 `json:"id"`
	Date     int64  `json:"date"`
	Name     string `json:"name"`
	FileType string `json:"fileType"`
}

type HoaxVM struct {
	ID         uint64        `json:"id"`
	Content    string        `json:"content"`
	Date       int64         `json:"date"`
	User       UserVM        `json:"user"`
	Attachment *AttachmentVM `json:"attachment,omitempty"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func init() {
	// Report validation errors under the JSON field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	}
}

func NewUserVM(user *models.User) UserVM {
	return UserVM{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Image:       user.Image,
	}
}

func NewAttachmentVM(attachment *models.Attachment) *AttachmentVM {
	if attachment == nil {
		return nil
	}
	return &AttachmentVM{
		ID:       attachment.ID,
		Date:     attachment.CreatedAt,
		Name:     attachment.StorageName,
		FileType: attachment.MimeType,
	}
}

func NewHoaxVM(post models.Post) HoaxVM {
	return HoaxVM{
		ID:         post.ID,
		Content:    post.Content,
		Date:       post.CreatedAt,
		User:       NewUserVM(&post.Author),
		Attachment: NewAttachmentVM(post.Attachment),
	}
}

func newHoaxVMs(posts []models.Post) []HoaxVM {
	result := make([]HoaxVM, 0, len(posts))
	for _, p := range posts {
		result = append(result, NewHoaxVM(p))
	}
	return result
}

func newHoaxPage(page *timeline.Page[models.Post]) *timeline.Page[HoaxVM] {
	return timeline.MapPage(page, NewHoaxVM)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be null"
	case "min":
		return "size must be at least " + fe.Param()
	case "max":
		return "size must be at most " + fe.Param()
	}
	return "is invalid"
}

// respondBindError answers 400, listing the failed fields when the body was
// well-formed but invalid
func respondBindError(c *gin.Context, err error) {
	apiError := utils.NewApiError(c, http.StatusBadRequest, "Validation error")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apiError.ValidationErrors = map[string]string{}
		for _, fe := range verrs {
			apiError.ValidationErrors[fe.Field()] = validationMessage(fe)
		}
	} else {
		apiError.Message = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError)
}

// respondError maps service errors to their HTTP status
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	if errors.Is(err, models.ErrNotFound) {
		utils.AbortWithApiError(c, http.StatusNotFound, err.Error())
		return
	}
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	utils.AbortWithApiError(c, http.StatusInternalServerError, "Internal error")
}
