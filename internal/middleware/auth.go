package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/serjblog/internal/session"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/internal/users"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type Authenticator interface {
	Authenticate(r *http.Request) (*users.User, error)
	ClearSession(w http.ResponseWriter)
}

type CommentAuthorLookup interface {
	FirstCommentAuthorID(ctx context.Context, authorID int) (int, bool, error)
	CommentAuthorID(ctx context.Context, commentID int) (int, bool, error)
}

// LoadSession puts the authenticated user (if any) into the request context.
// Requests with a stale session continue as anonymous, and the cookie is dropped.
func LoadSession(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.StartSpan(r.Context(), "middleware.loadSession")

			user, err := authenticator.Authenticate(r.WithContext(ctx))
			switch {
			case err == nil:
				span.SetAttributes(attribute.Int("user.id", user.ID))
				ctx = session.WithUser(ctx, user)
			case errors.Is(err, session.ErrNoSession):
				// anonymous
			case errors.Is(err, session.ErrInvalidSession):
				log.Debugf("[stale session] => %s: %s", r.URL.Path, err)
				authenticator.ClearSession(w)
			default:
				log.Errorf("[failed session load] => %s: %s", r.URL.Path, err)
				span.RecordError(err)
			}
			span.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type Guards struct {
	adminUserID            int
	comments               CommentAuthorLookup
	strictCommentOwnership bool
	metricsManager         *metrics.Manager
}

func NewGuards(
	adminUserID int,
	comments CommentAuthorLookup,
	strictCommentOwnership bool,
	metricsManager *metrics.Manager,
) *Guards {
	return &Guards{
		adminUserID:            adminUserID,
		comments:               comments,
		strictCommentOwnership: strictCommentOwnership,
		metricsManager:         metricsManager,
	}
}

// AdminOnly lets through only the admin user, everybody else gets 403
func (g *Guards) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, span := tracing.StartSpan(r.Context(), "middleware.adminOnly")
		defer span.End()

		user := session.CurrentUser(r.Context())
		if user == nil || user.ID != g.adminUserID {
			g.forbid(w, "admin")
			span.SetStatus(codes.Error, "not-admin")
			return
		}

		span.SetStatus(codes.Ok, "ok")
		next.ServeHTTP(w, r)
	})
}

// CommentOwnerOnly requires a logged-in user who has authored a comment.
// By default the check is made against any comment of the user, not the
// requested one. With strict comment ownership the author of the requested
// comment ({commentId} route var) must be the user; unknown comments are
// left for the handler to answer.
func (g *Guards) CommentOwnerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "middleware.commentOwnerOnly")
		defer span.End()

		user := session.CurrentUser(ctx)
		if user == nil {
			g.forbid(w, "comment_owner")
			span.SetStatus(codes.Error, "anonymous")
			return
		}

		var (
			authorID int
			found    bool
			err      error
		)
		if g.strictCommentOwnership {
			commentID, convErr := strconv.Atoi(mux.Vars(r)["commentId"])
			if convErr != nil {
				http.Error(w, "comment not found", http.StatusNotFound)
				return
			}
			authorID, found, err = g.comments.CommentAuthorID(ctx, commentID)
			if err == nil && !found {
				next.ServeHTTP(w, r)
				return
			}
		} else {
			authorID, found, err = g.comments.FirstCommentAuthorID(ctx, user.ID)
		}

		if err != nil {
			log.Errorf("comment owner check for user %d: %s", user.ID, err)
			span.RecordError(err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if !found || authorID != user.ID {
			g.forbid(w, "comment_owner")
			span.SetStatus(codes.Error, "not-owner")
			return
		}

		span.SetStatus(codes.Ok, "ok")
		next.ServeHTTP(w, r)
	})
}

func (g *Guards) forbid(w http.ResponseWriter, guard string) {
	if g.metricsManager != nil {
		g.metricsManager.CounterForbidden.WithLabelValues(guard).Inc()
	}
	http.Error(w, "forbidden", http.StatusForbidden)
}
