package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/internal/service"
)

func badRequest(err error) *Error {
	return NewError(http.StatusBadRequest, err.Error())
}

// pageParams binds page and limit from the query string
func pageParams(c *gin.Context) (query.Params, bool) {
	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		abort(c, badRequest(err))
		return params, false
	}
	return params, true
}

func (r *Router) listPosts(c *gin.Context) {
	filter, err := query.FilterFromValues(c.Request.URL.Query())
	if err != nil {
		r.fail(c, err)
		return
	}
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := r.services.Posts.List(c.Request.Context(), filter, params, viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) createPost(c *gin.Context) {
	var in service.CreatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, badRequest(err))
		return
	}

	post, err := r.services.Posts.Create(c.Request.Context(), viewer(c), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (r *Router) getPost(c *gin.Context) {
	post, err := r.services.Posts.Get(c.Request.Context(), c.Param("id"), viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Router) updatePost(c *gin.Context) {
	var in service.UpdatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, badRequest(err))
		return
	}

	post, err := r.services.Posts.Update(c.Request.Context(), c.Param("id"), viewer(c), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Router) deletePost(c *gin.Context) {
	r.respond(c, r.services.Posts.Delete)
}

func (r *Router) likePost(c *gin.Context) {
	r.respond(c, r.services.Posts.Like)
}

func (r *Router) unlikePost(c *gin.Context) {
	r.respond(c, r.services.Posts.Unlike)
}

func (r *Router) listComments(c *gin.Context) {
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := r.services.Comments.ListByPost(c.Request.Context(), c.Param("id"), params, viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) createComment(c *gin.Context) {
	var in service.CreateCommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, badRequest(err))
		return
	}

	comment, err := r.services.Comments.Create(c.Request.Context(), c.Param("id"), viewer(c), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (r *Router) getComment(c *gin.Context) {
	comment, err := r.services.Comments.Get(c.Request.Context(), c.Param("id"), viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (r *Router) updateComment(c *gin.Context) {
	var in service.UpdateCommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, badRequest(err))
		return
	}

	comment, err := r.services.Comments.Update(c.Request.Context(), c.Param("id"), viewer(c), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (r *Router) deleteComment(c *gin.Context) {
	r.respond(c, r.services.Comments.Delete)
}

func (r *Router) likeComment(c *gin.Context) {
	r.respond(c, r.services.Comments.Like)
}

func (r *Router) unlikeComment(c *gin.Context) {
	r.respond(c, r.services.Comments.Unlike)
}

func (r *Router) search(c *gin.Context) {
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := r.services.Search.Posts(c.Request.Context(), c.Query("q"), params, viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) getUser(c *gin.Context) {
	profile, err := r.services.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (r *Router) getUserByUsername(c *gin.Context) {
	profile, err := r.services.Users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (r *Router) userPosts(c *gin.Context) {
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := r.services.Users.Posts(c.Request.Context(), c.Param("id"), params, viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) userStats(c *gin.Context) {
	stats, err := r.services.Users.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (r *Router) getMe(c *gin.Context) {
	profile, err := r.services.Users.GetByID(c.Request.Context(), viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (r *Router) updateMe(c *gin.Context) {
	var in service.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, badRequest(err))
		return
	}

	profile, err := r.services.Users.UpdateProfile(c.Request.Context(), viewer(c), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (r *Router) dashboardStats(c *gin.Context) {
	stats, err := r.services.Dashboard.Stats(c.Request.Context(), viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (r *Router) dashboardPosts(c *gin.Context) {
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := r.services.Dashboard.MyPosts(c.Request.Context(), viewer(c), c.Query("status"), params)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// respond runs an (id, actor) mutation and writes its message
func (r *Router) respond(c *gin.Context, op func(ctx context.Context, id, actor string) (service.Message, error)) {
	msg, err := op(c.Request.Context(), c.Param("id"), viewer(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
