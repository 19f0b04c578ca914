package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

// manual caching of prepared statements not needed:
// https://github.com/jackc/pgx/wiki/Automatic-Prepared-Statement-Caching

const selectPosts = `
SELECT p.id, COALESCE(p.author_id, 0), COALESCE(u.name, ''), p.title, p.subtitle, p.date, p.body, p.img_url
FROM blog_posts p
LEFT JOIN users u ON u.id = p.author_id`

var _ blogRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AllPosts(ctx context.Context) (_ []*Post, err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.AllPosts")
	defer func() { tracing.EndSpan(span, err) }()

	rows, err := r.db.Query(ctx, selectPosts+` ORDER BY p.id;`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}

	return posts, nil
}

func (r *Repo) GetPost(ctx context.Context, id int) (_ *Post, err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.GetPost")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	return scanPost(r.db.QueryRow(ctx, selectPosts+` WHERE p.id = $1;`, id))
}

func (r *Repo) AddPost(ctx context.Context, post *Post) (err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.AddPost")
	defer func() { tracing.EndSpan(span, err) }()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL,
	).Scan(&post.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrPostTitleExists
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// UpdatePost overwrites the title, subtitle, body, image and the author of the post.
// The date is not changed.
func (r *Repo) UpdatePost(ctx context.Context, post *Post) (err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.UpdatePost")
	span.SetAttributes(attribute.Int("id", post.ID))
	defer func() { tracing.EndSpan(span, err) }()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog_posts SET author_id = $1, title = $2, subtitle = $3, body = $4, img_url = $5 WHERE id = $6;`,
		post.AuthorID, post.Title, post.Subtitle, post.Body, post.ImgURL, post.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrPostTitleExists
		}
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes the post together with its comments, in one transaction
func (r *Repo) DeletePost(ctx context.Context, id int) (err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.DeletePost")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("delete post %d, rollback: %s", id, rbErr)
		}
	}()

	commentsTag, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete post: %w", err)
	}

	log.Tracef("post %d deleted with %d comments", id, commentsTag.RowsAffected())
	return nil
}

func (r *Repo) PostComments(ctx context.Context, postID int) (_ []*Comment, err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.PostComments")
	span.SetAttributes(attribute.Int("post.id", postID))
	defer func() { tracing.EndSpan(span, err) }()

	rows, err := r.db.Query(
		ctx,
		`SELECT c.id, c.author_id, u.name, c.post_id, c.text
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.id;`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.PostID, &c.Text); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read comments: %w", err)
	}

	return comments, nil
}

func (r *Repo) AddComment(ctx context.Context, comment *Comment) (err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.AddComment")
	defer func() { tracing.EndSpan(span, err) }()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO comments (author_id, post_id, text) VALUES ($1, $2, $3) RETURNING id;`,
		comment.AuthorID, comment.PostID, comment.Text,
	).Scan(&comment.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) && pkg.ViolatedConstraint(err) == "comments_post_id_fkey" {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *Repo) GetComment(ctx context.Context, id int) (_ *Comment, err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.GetComment")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	var c Comment
	err = r.db.QueryRow(
		ctx,
		`SELECT c.id, c.author_id, u.name, c.post_id, c.text
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1;`,
		id,
	).Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.PostID, &c.Text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

// FirstCommentAuthorID returns the author of the oldest comment written by authorID.
// found is false when the user has no comments.
func (r *Repo) FirstCommentAuthorID(ctx context.Context, authorID int) (_ int, found bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.FirstCommentAuthorID")
	defer func() { tracing.EndSpan(span, err) }()

	var id int
	err = r.db.QueryRow(
		ctx,
		`SELECT author_id FROM comments WHERE author_id = $1 ORDER BY id LIMIT 1;`,
		authorID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get first comment author: %w", err)
	}

	return id, true, nil
}

// CommentAuthorID returns the author of the comment. found is false for unknown comments.
func (r *Repo) CommentAuthorID(ctx context.Context, commentID int) (_ int, found bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.CommentAuthorID")
	defer func() { tracing.EndSpan(span, err) }()

	var id int
	err = r.db.QueryRow(ctx, `SELECT author_id FROM comments WHERE id = $1;`, commentID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get comment author: %w", err)
	}

	return id, true, nil
}

func (r *Repo) DeleteComment(ctx context.Context, id int) (err error) {
	ctx, span := tracing.StartSpan(ctx, "blogRepo.DeleteComment")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}

	return nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &p, nil
}
