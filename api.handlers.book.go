package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// writeError sends the json error response and logs any failure to do so.
func (api *APIHandler) writeError(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	errResp := NewAPIError(requestID, status, message, data)
	if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send error response", zap.Error(err))
	}
}

// writeBookNotFound sends the plain text not found response for the given id.
func (api *APIHandler) writeBookNotFound(w http.ResponseWriter, r *http.Request, id uint32) {
	logger := api.GetLoggerFromContext(r.Context())
	logger.Info("book does not exist", zap.Uint32("book.id", id))
	if err := WriteBookNotFoundResponse(r.Context(), w, id); err != nil {
		logger.Error("failed to send not found response", zap.Error(err))
	}
}

// readBookID extracts the book id from the route. It sends the
// bad request response itself and returns false on failure.
func (api *APIHandler) readBookID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (uint32, bool) {
	raw := ps.ByName("id")
	id, err := ParseBookID(raw)
	if err != nil {
		api.GetLoggerFromContext(r.Context()).Info("book id provided is not valid", zap.String("book.id", raw))
		api.writeError(w, r, http.StatusBadRequest, "book id provided is not valid", ErrInvalidBookID.Error())
		return 0, false
	}
	return id, true
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Stores a new book. The id is assigned by the server.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book  body      CreateBookRequest  true  "book to create"
// @Success      201   {object}  Book
// @Failure      400   {object}  APIError
// @Router       /books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	var req CreateBookRequest
	if err := DecodeCreateBookRequestBody(w, r, &req); err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.writeError(w, r, http.StatusBadRequest, "failed to create the book", err.Error())
		return
	}

	book, err := api.bookService.Add(r.Context(), req)
	if err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.writeError(w, r, http.StatusInternalServerError, "failed to create the book", EmptyData)
		return
	}

	logger.Info("success to create book", zap.Uint32("book.id", book.ID))
	if err = WriteResponse(r.Context(), w, http.StatusCreated, book); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// GetAllBooks godoc
// @Summary      List books
// @Tags         books
// @Produce      json
// @Success      200  {array}   Book
// @Router       /books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to get all books", zap.Error(err))
		api.writeError(w, r, http.StatusInternalServerError, "failed to get all books", EmptyData)
		return
	}

	logger.Info("success to get all books", zap.Int("books.total", len(books)))
	if err = WriteResponse(r.Context(), w, http.StatusOK, books); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// GetOneBook godoc
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "book id"
// @Success      200  {object}  Book
// @Failure      400  {object}  APIError
// @Failure      404  {string}  string
// @Router       /books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readBookID(w, r, ps)
	if !ok {
		return
	}

	logger := api.GetLoggerFromContext(r.Context())
	book, err := api.bookService.GetOne(r.Context(), id)
	if errors.Is(err, ErrBookNotFound) {
		api.writeBookNotFound(w, r, id)
		return
	}
	if err != nil {
		logger.Error("failed to get book", zap.Uint32("book.id", id), zap.Error(err))
		api.writeError(w, r, http.StatusInternalServerError, "failed to get the book", EmptyData)
		return
	}

	logger.Info("success to get book", zap.Uint32("book.id", id))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Title and author are kept when omitted. Published year, genre and isbn are cleared when omitted.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "book id"
// @Param        book  body      UpdateBookRequest  true  "changes to apply"
// @Success      200   {object}  Book
// @Failure      400   {object}  APIError
// @Failure      404   {string}  string
// @Router       /books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readBookID(w, r, ps)
	if !ok {
		return
	}

	logger := api.GetLoggerFromContext(r.Context())
	var req UpdateBookRequest
	if err := DecodeUpdateBookRequestBody(w, r, &req); err != nil {
		logger.Error("failed to update book", zap.Uint32("book.id", id), zap.Error(err))
		api.writeError(w, r, http.StatusBadRequest, "failed to update the book", err.Error())
		return
	}

	book, err := api.bookService.Update(r.Context(), id, req)
	if errors.Is(err, ErrBookNotFound) {
		api.writeBookNotFound(w, r, id)
		return
	}
	if err != nil {
		logger.Error("failed to update book", zap.Uint32("book.id", id), zap.Error(err))
		api.writeError(w, r, http.StatusInternalServerError, "failed to update the book", EmptyData)
		return
	}

	logger.Info("success to update book", zap.Uint32("book.id", id))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// DeleteOneBook godoc
// @Summary      Delete a book
// @Tags         books
// @Param        id   path      int  true  "book id"
// @Success      204
// @Failure      400  {object}  APIError
// @Failure      404  {string}  string
// @Router       /books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readBookID(w, r, ps)
	if !ok {
		return
	}

	logger := api.GetLoggerFromContext(r.Context())
	found, err := api.bookService.Delete(r.Context(), id)
	if err != nil {
		logger.Error("failed to delete book", zap.Uint32("book.id", id), zap.Error(err))
		api.writeError(w, r, http.StatusInternalServerError, "failed to delete the book", EmptyData)
		return
	}
	if !found {
		api.writeBookNotFound(w, r, id)
		return
	}

	logger.Info("success to delete book", zap.Uint32("book.id", id))
	if err = WriteNoContentResponse(r.Context(), w); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}
