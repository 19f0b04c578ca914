package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/session"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/internal/web"
)

const FlashLoginToComment = "you need to log in or register to comment."

type blogRepo interface {
	AllPosts(ctx context.Context) ([]*Post, error)
	GetPost(ctx context.Context, id int) (*Post, error)
	AddPost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id int) error
	PostComments(ctx context.Context, postID int) ([]*Comment, error)
	AddComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id int) (*Comment, error)
	DeleteComment(ctx context.Context, id int) error
}

type Handler struct {
	repo           blogRepo
	renderer       *web.Renderer
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(
	repo blogRepo,
	renderer *web.Renderer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		renderer:       renderer,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// SetupRoutes registers the blog routes. adminOnly guards post management,
// commentOwnerOnly guards comment deletion.
func (handler *Handler) SetupRoutes(
	router *mux.Router,
	adminOnly func(http.Handler) http.Handler,
	commentOwnerOnly func(http.Handler) http.Handler,
) {
	router.HandleFunc("/", handler.handleAllPosts).Methods("GET").Name("all-posts")
	router.HandleFunc("/post/{id:[0-9]+}", handler.handleShowPost).Methods("GET").Name("show-post")
	router.HandleFunc("/post/{id:[0-9]+}", handler.handleAddComment).Methods("POST").Name("add-comment")

	router.Handle("/new-post", adminOnly(http.HandlerFunc(handler.handleNewPostForm))).Methods("GET").Name("new-post-form")
	router.Handle("/new-post", adminOnly(http.HandlerFunc(handler.handleNewPost))).Methods("POST").Name("new-post")
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(http.HandlerFunc(handler.handleEditPostForm))).Methods("GET").Name("edit-post-form")
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(http.HandlerFunc(handler.handleEditPost))).Methods("POST").Name("edit-post")
	router.Handle("/delete/{id:[0-9]+}", adminOnly(http.HandlerFunc(handler.handleDeletePost))).Methods("GET").Name("delete-post")

	router.Handle(
		"/delete/comment/{commentId:[0-9]+}/{postId:[0-9]+}",
		commentOwnerOnly(http.HandlerFunc(handler.handleDeleteComment)),
	).Methods("GET").Name("delete-comment")
}

func (handler *Handler) handleAllPosts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.allPosts")
	defer span.End()

	posts, err := handler.repo.AllPosts(ctx)
	if err != nil {
		log.Errorf("get all posts: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []*Post{}
	}

	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	handler.renderer.Render(w, r, "index", map[string]any{
		"posts": posts,
	})
}

func (handler *Handler) handleShowPost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.showPost")
	defer span.End()

	post, ok := handler.postFromPath(ctx, w, r, "id")
	if !ok {
		return
	}

	handler.renderPost(ctx, w, r, post, CommentForm{}, nil)
}

func (handler *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.addComment")
	defer span.End()

	post, ok := handler.postFromPath(ctx, w, r, "id")
	if !ok {
		return
	}

	var form CommentForm
	if err := web.Bind(r, &form); err != nil {
		log.Debugf("add comment, bind form: %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if fieldErrors := web.Validate(&form); fieldErrors != nil {
		handler.renderPost(ctx, w, r, post, form, fieldErrors)
		return
	}

	user := session.CurrentUser(ctx)
	if user == nil {
		handler.renderer.FlashAndRedirect(w, r, FlashLoginToComment, "/login")
		return
	}

	comment := &Comment{
		AuthorID: user.ID,
		PostID:   post.ID,
		Text:     form.Text,
	}
	if err := handler.repo.AddComment(ctx, comment); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		log.Errorf("add comment to post %d: %s", post.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterComments.WithLabelValues("created").Inc()
	log.Tracef("new comment %d on post %d by user %d", comment.ID, post.ID, user.ID)

	handler.renderPost(ctx, w, r, post, CommentForm{}, nil)
}

func (handler *Handler) handleNewPostForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, "new-post", web.FormData(PostForm{}, nil))
}

func (handler *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.newPost")
	defer span.End()

	var form PostForm
	if err := web.Bind(r, &form); err != nil {
		log.Debugf("new post, bind form: %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if fieldErrors := web.Validate(&form); fieldErrors != nil {
		handler.renderer.Render(w, r, "new-post", web.FormData(form, fieldErrors))
		return
	}

	post := &Post{
		AuthorID: session.CurrentUser(ctx).ID,
		Date:     handler.now().Format(DateLayout),
	}
	form.apply(post)

	if err := handler.repo.AddPost(ctx, post); err != nil {
		if errors.Is(err, ErrPostTitleExists) {
			handler.renderer.Render(w, r, "new-post", web.FormData(form, titleExistsError()))
			return
		}
		log.Errorf("add new post: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("post.id", post.ID))
	handler.metricsManager.CounterPosts.WithLabelValues("created").Inc()
	log.Tracef("new post %d: [%s] added", post.ID, post.Title)

	handler.renderer.Redirect(w, r, "/")
}

func (handler *Handler) handleEditPostForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.editPostForm")
	defer span.End()

	post, ok := handler.postFromPath(ctx, w, r, "id")
	if !ok {
		return
	}

	data := web.FormData(postForm(post), nil)
	data["post_id"] = post.ID
	handler.renderer.Render(w, r, "edit-post", data)
}

func (handler *Handler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.editPost")
	defer span.End()

	post, ok := handler.postFromPath(ctx, w, r, "id")
	if !ok {
		return
	}

	var form PostForm
	if err := web.Bind(r, &form); err != nil {
		log.Debugf("edit post, bind form: %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	renderForm := func(fieldErrors map[string]string) {
		data := web.FormData(form, fieldErrors)
		data["post_id"] = post.ID
		handler.renderer.Render(w, r, "edit-post", data)
	}
	if fieldErrors := web.Validate(&form); fieldErrors != nil {
		renderForm(fieldErrors)
		return
	}

	form.apply(post)
	// the editor becomes the author
	post.AuthorID = session.CurrentUser(ctx).ID

	if err := handler.repo.UpdatePost(ctx, post); err != nil {
		switch {
		case errors.Is(err, ErrPostTitleExists):
			renderForm(titleExistsError())
		case errors.Is(err, ErrPostNotFound):
			http.Error(w, "post not found", http.StatusNotFound)
		default:
			log.Errorf("update post %d: %s", post.ID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	handler.metricsManager.CounterPosts.WithLabelValues("updated").Inc()
	log.Tracef("post %d updated", post.ID)

	handler.renderer.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID))
}

func (handler *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.deletePost")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "post not found", http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.Int("post.id", id))

	if err := handler.repo.DeletePost(ctx, id); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete post %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterPosts.WithLabelValues("deleted").Inc()
	log.Tracef("post %d deleted", id)

	handler.renderer.Redirect(w, r, "/")
}

func (handler *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "blogHandler.deleteComment")
	defer span.End()

	vars := mux.Vars(r)
	commentID, err := strconv.Atoi(vars["commentId"])
	if err != nil {
		http.Error(w, "comment not found", http.StatusNotFound)
		return
	}
	postID, err := strconv.Atoi(vars["postId"])
	if err != nil {
		http.Error(w, "post not found", http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.Int("comment.id", commentID))

	if err := handler.repo.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			http.Error(w, "comment not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete comment %d: %s", commentID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterComments.WithLabelValues("deleted").Inc()
	log.Tracef("comment %d deleted", commentID)

	handler.renderer.Redirect(w, r, fmt.Sprintf("/post/%d", postID))
}

// postFromPath loads the post named by the path variable, answering 404/500 itself when it cannot
func (handler *Handler) postFromPath(ctx context.Context, w http.ResponseWriter, r *http.Request, varName string) (*Post, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[varName])
	if err != nil {
		http.Error(w, "post not found", http.StatusNotFound)
		return nil, false
	}

	post, err := handler.repo.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get post %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	return post, true
}

func (handler *Handler) renderPost(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	post *Post,
	form CommentForm,
	fieldErrors map[string]string,
) {
	comments, err := handler.repo.PostComments(ctx, post.ID)
	if err != nil {
		log.Errorf("get comments of post %d: %s", post.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if comments == nil {
		comments = []*Comment{}
	}

	data := web.FormData(form, fieldErrors)
	data["post"] = post
	data["comments"] = comments
	handler.renderer.Render(w, r, "post", data)
}

func titleExistsError() map[string]string {
	return map[string]string{
		"title": "a post with this title already exists",
	}
}
