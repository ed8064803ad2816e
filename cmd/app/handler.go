package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/haerin/internal/blogservice"
	"github.com/sushihentaime/haerin/internal/common"
	"github.com/sushihentaime/haerin/internal/userservice"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input registerUserRequest

	// Parse the request body
	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.Register(r.Context(), userservice.RegisterRequest{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Bio:      input.Bio,
	})
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, "user registered", res)
}

type loginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	// Parse the request body
	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrInvalidCredentials):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "logged in", res)
}

func (app *application) getMeHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	app.writeSuccess(w, r, http.StatusOK, "profile retrieved", envelope{"user": user})
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var input updateProfileRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.UpdateProfile(r.Context(), app.getUserContext(r).ID, userservice.UpdateProfileRequest{
		Name:     input.Name,
		Bio:      input.Bio,
		Avatar:   input.Avatar,
		Password: input.Password,
	})
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.invalidAuthenticationTokenResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "profile updated", envelope{"user": user})
}

// blogErrorResponse maps the blog service errors to responses.
func (app *application) blogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.Is(err, blogservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrUserForeignKey):
		app.invalidAuthenticationTokenResponse(w, r)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func savedMessage(blog *blogservice.Blog) string {
	if blog.Status == blogservice.StatusPublished {
		return "blog published"
	}
	return "draft saved"
}

func (app *application) listPublishedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, pagination, err := app.blogService.ListPublished(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "blogs retrieved", envelope{"blogs": blogs, "pagination": pagination})
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	sub, closeFn, err := app.readBlogSubmission(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer closeFn()

	blog, err := app.blogService.CreateBlog(r.Context(), app.getUserContext(r).ID, sub)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, savedMessage(blog), envelope{"blog": blog})
}

func (app *application) listMyBlogsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var status *blogservice.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := blogservice.Status(s)
		status = &st
	}

	blogs, pagination, err := app.blogService.ListMyBlogs(r.Context(), app.getUserContext(r).ID, status, page)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "blogs retrieved", envelope{"blogs": blogs, "pagination": pagination})
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	// httprouter cannot register /api/blogs/mine next to /api/blogs/:id
	if httprouter.ParamsFromContext(r.Context()).ByName("id") == "mine" {
		app.requireAuthUser(app.listMyBlogsHandler)(w, r)
		return
	}

	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlog(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "blog retrieved", envelope{"blog": blog})
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	sub, closeFn, err := app.readBlogSubmission(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer closeFn()

	blog, err := app.blogService.UpdateBlog(r.Context(), app.getUserContext(r).ID, id, sub)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, savedMessage(blog), envelope{"blog": blog})
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "blog deleted", nil)
}

func (app *application) toggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	liked, likes, err := app.blogService.ToggleLike(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	message := "blog unliked"
	if liked {
		message = "blog liked"
	}

	app.writeSuccess(w, r, http.StatusOK, message, envelope{"liked": liked, "likes_count": likes})
}
