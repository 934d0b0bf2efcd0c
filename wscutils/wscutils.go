// Package wscutils holds the request and response envelope shared by errack web
// services, and the message id catalogue behind ErrorMessage.
package wscutils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	errorTypesMu sync.RWMutex
	// errorTypes maps error codes to message ids.
	errorTypes = defaultErrorTypes()
)

// LoadErrorTypes merges a YAML map of errcode: msgid into the catalogue.
func LoadErrorTypes(r io.Reader) error {
	byteValue, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read error types: %w", err)
	}

	loaded := map[string]int{}
	if err := yaml.Unmarshal(byteValue, &loaded); err != nil {
		return fmt.Errorf("invalid error types: %w", err)
	}

	errorTypesMu.Lock()
	defer errorTypesMu.Unlock()
	for code, id := range loaded {
		errorTypes[code] = id
	}
	return nil
}

// Request represents the standard structure of a request to the web service.
type Request struct {
	Data any `json:"data" binding:"required"`
}

// Response represents the standard structure of a response of the web service.
type Response struct {
	Status   string         `json:"status"`
	Data     any            `json:"data"`
	Messages []ErrorMessage `json:"messages"`
}

// ErrorMessage defines the format of error part of the standard response object.
type ErrorMessage struct {
	MsgID   int      `json:"msgid"`
	ErrCode string   `json:"errcode"`
	Field   *string  `json:"field,omitempty"`
	Vals    []string `json:"vals,omitempty"`
}

// WscValidate validates data according to its struct tags and returns one
// ErrorMessage per failed field. The validation tag is used as the error code.
func WscValidate[T any](data T, getVals func(err validator.FieldError) []string) []ErrorMessage {
	var validationErrors []ErrorMessage

	err := validator.New().Struct(data)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, err := range validationErrs {
				var vals []string
				if getVals != nil {
					vals = getVals(err)
				}
				field := err.Field()
				validationErrors = append(validationErrors, BuildErrorMessage(err.Tag(), &field, vals...))
			}
		}
	}
	return validationErrors
}

// BuildErrorMessage looks up the message id for errcode. Unknown codes get DefaultMsgID.
func BuildErrorMessage(errcode string, fieldName *string, vals ...string) ErrorMessage {
	errorTypesMu.RLock()
	msgid, exists := errorTypes[errcode]
	errorTypesMu.RUnlock()
	if !exists {
		msgid = DefaultMsgID
	}

	return ErrorMessage{
		MsgID:   msgid,
		ErrCode: errcode,
		Field:   fieldName,
		Vals:    vals,
	}
}

func NewResponse(status string, data any, messages []ErrorMessage) *Response {
	return &Response{
		Status:   status,
		Data:     data,
		Messages: messages,
	}
}

// BindJSON binds the data member of the request envelope. On failure it has already
// written a 400 response.
func BindJSON(c *gin.Context, data any) error {
	req := Request{Data: data}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(ErrcodeInvalidJson))
		return err
	}
	return nil
}

// NewErrorResponse creates an error response with a single message.
func NewErrorResponse(errcode string, vals ...string) *Response {
	return NewResponse(ErrorStatus, nil, []ErrorMessage{BuildErrorMessage(errcode, nil, vals...)})
}

func NewSuccessResponse(data any) *Response {
	return NewResponse(SuccessStatus, data, nil)
}

func SendSuccessResponse(c *gin.Context, response *Response) {
	c.JSON(http.StatusOK, response)
}

// SendErrorResponse sends response with the given HTTP status.
func SendErrorResponse(c *gin.Context, httpStatus int, response *Response) {
	c.JSON(httpStatus, response)
}
