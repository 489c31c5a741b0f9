package handlers

import (
	"net/http"

	"socialshop/internal/apperror"
	"socialshop/internal/config"
	"socialshop/internal/middleware"
	"socialshop/internal/services"
	"socialshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts    *services.PostService
	authMode string
}

func NewPostHandler(posts *services.PostService, authMode string) *PostHandler {
	return &PostHandler{posts: posts, authMode: authMode}
}

type createPostRequest struct {
	Email   string   `json:"email"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type updatePostRequest struct {
	Email   string   `json:"email"`
	PostID  string   `json:"postId" binding:"required"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type deletePostRequest struct {
	Email  string `json:"email"`
	PostID string `json:"postId" binding:"required"`
}

// List - GET /api/posts?page=
func (h *PostHandler) List(c *gin.Context) {
	page := utils.ParsePage(c.Query("page"))

	result, err := h.posts.List(c.Request.Context(), page)
	if err != nil {
		fail(c, "GET_POSTS", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Fetched all posts successfully!",
		"size":    result.Size,
		"posts":   result.Posts,
	})
}

// Get - GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "GET_POST", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetched post successfully!", "data": post})
}

// Create - POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, "CREATE_POST", err)
		return
	}
	email, err := h.callerEmail(c, req.Email)
	if err != nil {
		fail(c, "CREATE_POST", err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), email, services.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		fail(c, "CREATE_POST", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully!", "data": post})
}

// Update - PUT /api/posts
func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, "UPDATE_POST", err)
		return
	}
	email, err := h.callerEmail(c, req.Email)
	if err != nil {
		fail(c, "UPDATE_POST", err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), email, req.PostID, services.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		fail(c, "UPDATE_POST", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully!", "data": post})
}

// Delete - DELETE /api/posts
func (h *PostHandler) Delete(c *gin.Context) {
	var req deletePostRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, "DELETE_POST", err)
		return
	}
	email, err := h.callerEmail(c, req.Email)
	if err != nil {
		fail(c, "DELETE_POST", err)
		return
	}

	if err := h.posts.Delete(c.Request.Context(), email, req.PostID); err != nil {
		fail(c, "DELETE_POST", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully!"})
}

// callerEmail picks the identity the services resolve. In verified mode a
// body email must match the credential.
func (h *PostHandler) callerEmail(c *gin.Context, bodyEmail string) (string, error) {
	verified, ok := middleware.VerifiedEmail(c)

	if h.authMode == config.AuthModeEmail {
		if bodyEmail != "" {
			return bodyEmail, nil
		}
		return verified, nil
	}

	if !ok {
		return "", apperror.Unauthorized()
	}
	if bodyEmail != "" && bodyEmail != verified {
		return "", apperror.Unauthorized()
	}
	return verified, nil
}
