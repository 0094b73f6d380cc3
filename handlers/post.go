package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"socialapi/database"
	"socialapi/models"
	"socialapi/push"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	noPost    = "There is no post"
	noComment = "There is no comment"
)

type createPostRequest struct {
	Text string `json:"text" binding:"required" msg:"Text is required"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required" msg:"Comment text is required"`
}

// postError answers the store outcomes every post route shares and reports
// whether err was handled.
func (h *Handler) postError(c *gin.Context, handler string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, database.ErrNotFound):
		message(c, http.StatusBadRequest, noPost)
	case errors.Is(err, database.ErrCommentNotFound):
		message(c, http.StatusBadRequest, noComment)
	default:
		h.serverError(c, handler, err)
	}
	return true
}

// author loads the caller so the post or comment can carry a snapshot.
func (h *Handler) author(c *gin.Context, handler string, userID primitive.ObjectID) (*models.User, bool) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, "User not found")
		return nil, false
	}
	if err != nil {
		h.serverError(c, handler, err)
		return nil, false
	}
	return user, true
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.author(c, "CreatePost", userID)
	if !ok {
		return
	}

	post := &models.Post{
		User:           userID,
		AuthorSnapshot: user.Snapshot(),
		Text:           req.Text,
		Likes:          []models.Like{},
		Comments:       []models.Comment{},
		Date:           time.Now(),
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.posts.Create(ctx, post); err != nil {
		h.serverError(c, "CreatePost", err)
		return
	}

	h.broadcast("post_created", post)
	c.JSON(http.StatusOK, post)
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	posts, err := h.posts.List(ctx)
	if err != nil {
		h.serverError(c, "ListPosts", err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /api/posts/:post_id.
func (h *Handler) GetPost(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.FindByID(ctx, postID)
	if h.postError(c, "GetPost", err) {
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:post_id. Only the author may delete.
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.FindByID(ctx, postID)
	if h.postError(c, "DeletePost", err) {
		return
	}

	if post.User != userID {
		message(c, http.StatusBadRequest, "Don't try to delete other user's post")
		return
	}

	if h.postError(c, "DeletePost", h.posts.Delete(ctx, postID)) {
		return
	}

	h.broadcast("post_deleted", gin.H{"_id": postID.Hex()})
	message(c, http.StatusOK, "Post deleted!")
}

// LikePost handles PUT /api/posts/like/:post_id.
func (h *Handler) LikePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.Like(ctx, postID, userID)
	if errors.Is(err, database.ErrAlreadyLiked) {
		message(c, http.StatusBadRequest, "You've already liked this post")
		return
	}
	if h.postError(c, "LikePost", err) {
		return
	}

	h.broadcast("post_liked", gin.H{"_id": postID.Hex(), "likes": post.Likes})
	if post.User != userID {
		h.notify(post.User, push.Notification{
			Title: "New like",
			Body:  "Someone liked your post",
			URL:   "/posts/" + postID.Hex(),
		})
	}
	c.JSON(http.StatusOK, post)
}

// UnlikePost handles DELETE /api/posts/like/:post_id. Removing a like that
// does not exist returns the post unchanged.
func (h *Handler) UnlikePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.Unlike(ctx, postID, userID)
	if h.postError(c, "UnlikePost", err) {
		return
	}

	h.broadcast("post_unliked", gin.H{"_id": postID.Hex(), "likes": post.Likes})
	c.JSON(http.StatusOK, post)
}

// AddComment handles POST /api/posts/comment/:post_id.
func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.author(c, "AddComment", userID)
	if !ok {
		return
	}

	comment := models.Comment{
		ID:             primitive.NewObjectID(),
		User:           userID,
		AuthorSnapshot: user.Snapshot(),
		Text:           req.Text,
		Likes:          []models.Like{},
		Date:           time.Now(),
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.AddComment(ctx, postID, comment)
	if h.postError(c, "AddComment", err) {
		return
	}

	h.broadcast("comment_added", gin.H{"post": postID.Hex(), "comment": comment})
	if post.User != userID {
		h.notify(post.User, push.Notification{
			Title: user.Name + " commented on your post",
			Body:  truncate(req.Text, 100),
			URL:   "/posts/" + postID.Hex(),
		})
	}
	c.JSON(http.StatusOK, post)
}

// DeleteComment handles DELETE /api/posts/comment/:post_id/:comment_id.
// The comment's author and the post's author may remove it.
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.FindByID(ctx, postID)
	if h.postError(c, "DeleteComment", err) {
		return
	}

	comment := post.Comment(commentID)
	if comment == nil {
		message(c, http.StatusBadRequest, noComment)
		return
	}
	if comment.User != userID && post.User != userID {
		message(c, http.StatusBadRequest, "Don't try to delete other user's comment")
		return
	}

	post, err = h.posts.RemoveComment(ctx, postID, commentID)
	if h.postError(c, "DeleteComment", err) {
		return
	}

	h.broadcast("comment_removed", gin.H{"post": postID.Hex(), "comment": commentID.Hex()})
	c.JSON(http.StatusOK, post)
}

// LikeComment handles PUT /api/posts/comment/like/:post_id/:comment_id.
func (h *Handler) LikeComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.LikeComment(ctx, postID, commentID, userID)
	if errors.Is(err, database.ErrAlreadyLiked) {
		message(c, http.StatusBadRequest, "You've already liked this comment")
		return
	}
	if h.postError(c, "LikeComment", err) {
		return
	}

	if comment := post.Comment(commentID); comment != nil && comment.User != userID {
		h.notify(comment.User, push.Notification{
			Title: "New like",
			Body:  "Someone liked your comment",
			URL:   "/posts/" + postID.Hex(),
		})
	}
	c.JSON(http.StatusOK, post)
}

// UnlikeComment handles DELETE /api/posts/comment/like/:post_id/:comment_id.
func (h *Handler) UnlikeComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.posts.UnlikeComment(ctx, postID, commentID, userID)
	if h.postError(c, "UnlikeComment", err) {
		return
	}

	c.JSON(http.StatusOK, post)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
