package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mustafahasanain/bookstock/internal/googlebooks"
)

// SearchController exposes Google Books lookups.
type SearchController struct {
	client BookSearchClient
}

func NewSearchController(client BookSearchClient) *SearchController {
	return &SearchController{client: client}
}

type searchRequest struct {
	Query      string `json:"query" binding:"required"`
	Filter     string `json:"filter"`
	MaxResults int    `json:"max_results"`
}

// Search runs a multi-result volume search. The optional filter narrows the
// query by author or subject.
func (controller *SearchController) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "query is required")
		return
	}

	books, err := controller.client.Search(c.Request.Context(), req.Query, req.Filter, req.MaxResults)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNoAPIKey) {
			respondBadRequest(c, "Google Books API key is not configured")
			return
		}
		// Transient remote failures degrade to an empty result; they are
		// logged, not surfaced to the caller.
		log.Printf("Book search failed for %q: %v", req.Query, err)
		books = nil
	}

	if books == nil {
		books = []googlebooks.Book{}
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// SearchOne looks up the single most relevant volume for a title.
func (controller *SearchController) SearchOne(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		respondBadRequest(c, "title query parameter is required")
		return
	}

	book, err := controller.client.SearchBook(c.Request.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, googlebooks.ErrNoAPIKey):
			respondBadRequest(c, "Google Books API key is not configured")
		case errors.Is(err, googlebooks.ErrNotFound):
			respondNotFound(c, "book")
		default:
			// Remote failures degrade to the same not-found answer.
			log.Printf("Book lookup failed for %q: %v", title, err)
			respondNotFound(c, "book")
		}
		return
	}

	c.IndentedJSON(http.StatusOK, book)
}

// TestKey probes the Google Books API with the given key. Without an
// explicit key, the configured one is probed instead.
func (controller *SearchController) TestKey(c *gin.Context) {
	valid := controller.client.TestKey(c.Request.Context(), c.Query("key"))
	c.IndentedJSON(http.StatusOK, gin.H{"valid": valid})
}
