package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

const defaultMaxUploadSize = 10 * 1024 * 1024 // 10 MB

// ClippingsController parses uploaded clippings files without publishing them.
type ClippingsController struct {
	parser  *clippings.Parser
	maxSize int64
}

func NewClippingsController(parser *clippings.Parser, maxSize int64) *ClippingsController {
	if maxSize <= 0 {
		maxSize = defaultMaxUploadSize
	}
	return &ClippingsController{parser: parser, maxSize: maxSize}
}

// ParseResponse is returned by POST /api/clippings/parse.
type ParseResponse struct {
	Records  int                     `json:"records"`
	Clips    int                     `json:"clips"`
	Books    []clippings.BookClips   `json:"books"`
	Rejected []clippings.RecordError `json:"rejected,omitempty"`
}

// Parse handles POST /api/clippings/parse with a multipart "clippings_file".
func (cc *ClippingsController) Parse(c *gin.Context) {
	file, header, err := c.Request.FormFile("clippings_file")
	if err != nil {
		respondBadRequest(c, "clippings_file not provided")
		return
	}
	defer file.Close()

	if header.Size > cc.maxSize {
		respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file too large (max %d MB)", cc.maxSize>>20))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, cc.maxSize+1))
	if err != nil {
		respondBadRequest(c, "failed to read clippings_file")
		return
	}
	if int64(len(data)) > cc.maxSize {
		respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file too large (max %d MB)", cc.maxSize>>20))
		return
	}

	result, err := cc.parser.Parse(string(data))
	if err != nil {
		respondParseError(c, err)
		return
	}

	books := result.Books
	if books == nil {
		books = []clippings.BookClips{}
	}
	c.JSON(http.StatusOK, ParseResponse{
		Records:  result.Records,
		Clips:    result.ClipCount(),
		Books:    books,
		Rejected: result.Rejected,
	})
}

func respondParseError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: clippings.ErrorKind(err)}

	var recErr *clippings.RecordError
	if errors.As(err, &recErr) {
		resp.Details = gin.H{"index": recErr.Index, "raw": recErr.Raw}
	}
	c.JSON(http.StatusUnprocessableEntity, resp)
}
