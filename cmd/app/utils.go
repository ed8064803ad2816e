package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/haerin/internal/blogservice"
	"github.com/sushihentaime/haerin/internal/mediaservice"
)

type envelope map[string]any

// writeSuccess writes the success envelope. data is omitted when nil.
func (app *application) writeSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	env := envelope{"success": true, "message": message}
	if data != nil {
		env["data"] = data
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	json, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(json)

	return nil
}

func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return fmt.Errorf("request body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}
	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}
	return nil
}

func (app *application) readIDParam(r *http.Request, key string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseInt(params.ByName(key), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}

	return id, nil
}

// readIntParam returns 0 when the query parameter is absent.
func (app *application) readIntParam(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}

	return i, nil
}

func (app *application) readPageParams(r *http.Request) (blogservice.Page, error) {
	page, err := app.readIntParam(r, "page")
	if err != nil {
		return blogservice.Page{}, err
	}

	limit, err := app.readIntParam(r, "limit")
	if err != nil {
		return blogservice.Page{}, err
	}

	return blogservice.Page{Page: page, Limit: limit}, nil
}

type blogRequest struct {
	Title   string             `json:"title"`
	Content string             `json:"content"`
	Status  blogservice.Status `json:"status"`
}

// readBlogSubmission accepts a multipart form with an optional coverImage file, or a JSON body
// without an image. The returned close function releases the uploaded file.
func (app *application) readBlogSubmission(w http.ResponseWriter, r *http.Request) (blogservice.Submission, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input blogRequest
		if err := app.parseJSON(w, r, &input); err != nil {
			return blogservice.Submission{}, noop, err
		}

		return blogservice.Submission{Title: input.Title, Content: input.Content, Status: input.Status}, noop, nil
	}

	maxBytes := int64(mediaservice.MaxUploadSize + 1_048_576)
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	err := r.ParseMultipartForm(maxBytes)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return blogservice.Submission{}, noop, fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		}
		return blogservice.Submission{}, noop, errors.New("request body contains a malformed multipart form")
	}

	sub := blogservice.Submission{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Status:  blogservice.Status(r.FormValue("status")),
	}

	cleanup := func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			app.logger.Error("could not remove multipart files", slog.String("error", err.Error()))
		}
	}

	file, _, err := r.FormFile("coverImage")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return sub, cleanup, nil
	case err != nil:
		cleanup()
		return blogservice.Submission{}, noop, errors.New("could not read the coverImage file")
	}

	sub.Cover = file

	return sub, func() {
		file.Close()
		cleanup()
	}, nil
}
