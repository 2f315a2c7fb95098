package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentRepository is the shared CRUD implementation behind every content
// collection. Each collection supplies its writable columns plus a scanner
// and a value extractor that agree on column order.
type ContentRepository[T any] struct {
	pool     *pgxpool.Pool
	kind     domain.EntityKind
	columns  []string
	orderBy  string
	featured bool
	scan     func(rowScanner) (*T, error)
	values   func(*T) []any
}

func (r *ContentRepository[T]) Kind() domain.EntityKind { return r.kind }

func (r *ContentRepository[T]) selectColumns() string {
	return "id, " + strings.Join(r.columns, ", ") + ", created_at, updated_at"
}

func (r *ContentRepository[T]) where(filter domain.ContentFilter, conds ...string) string {
	if filter.PublishedOnly {
		conds = append(conds, "is_published")
	}
	if filter.FeaturedOnly && r.featured {
		conds = append(conds, "is_featured")
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *ContentRepository[T]) List(ctx context.Context, filter domain.ContentFilter) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		r.selectColumns(), r.kind.Table(), r.where(filter), r.orderBy)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ContentRepository[T]) GetByID(ctx context.Context, id string, filter domain.ContentFilter) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s%s",
		r.selectColumns(), r.kind.Table(), r.where(filter, "id = $1"))

	item, err := r.scan(r.pool.QueryRow(ctx, query, id))
	if isBadID(err) {
		return nil, domain.ErrContentNotFound
	}
	return item, err
}

func (r *ContentRepository[T]) Create(ctx context.Context, item *T) (*T, error) {
	placeholders := make([]string, len(r.columns))
	for i := range r.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.kind.Table(), strings.Join(r.columns, ", "), strings.Join(placeholders, ", "), r.selectColumns())

	return r.scan(r.pool.QueryRow(ctx, query, r.values(item)...))
}

func (r *ContentRepository[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	sets := make([]string, len(r.columns))
	for i, col := range r.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW() WHERE id = $1 RETURNING %s",
		r.kind.Table(), strings.Join(sets, ", "), r.selectColumns())

	args := append([]any{id}, r.values(item)...)
	updated, err := r.scan(r.pool.QueryRow(ctx, query, args...))
	if isBadID(err) {
		return nil, domain.ErrContentNotFound
	}
	return updated, err
}

func (r *ContentRepository[T]) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.kind.Table()), id)
	if err != nil {
		if isBadID(err) {
			return domain.ErrContentNotFound
		}
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func scanErr(kind domain.EntityKind, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrContentNotFound
	}
	return fmt.Errorf("scan %s: %w", kind, err)
}

func NewEducationRepository(pool *pgxpool.Pool) *ContentRepository[domain.Education] {
	return &ContentRepository[domain.Education]{
		pool:    pool,
		kind:    domain.KindEducation,
		columns: []string{"institution", "degree", "period", "grade", "certificate_link", "display_order", "is_published"},
		orderBy: "display_order ASC, created_at DESC",
		scan: func(row rowScanner) (*domain.Education, error) {
			var e domain.Education
			if err := row.Scan(&e.ID, &e.Institution, &e.Degree, &e.Period, &e.Grade, &e.CertificateLink,
				&e.DisplayOrder, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt); err != nil {
				return nil, scanErr(domain.KindEducation, err)
			}
			return &e, nil
		},
		values: func(e *domain.Education) []any {
			return []any{e.Institution, e.Degree, e.Period, e.Grade, e.CertificateLink, e.DisplayOrder, e.IsPublished}
		},
	}
}

func NewExperienceRepository(pool *pgxpool.Pool) *ContentRepository[domain.Experience] {
	return &ContentRepository[domain.Experience]{
		pool:    pool,
		kind:    domain.KindExperience,
		columns: []string{"title", "company", "period", "responsibilities", "certificate_link", "display_order", "is_published"},
		orderBy: "display_order ASC, created_at DESC",
		scan: func(row rowScanner) (*domain.Experience, error) {
			var e domain.Experience
			if err := row.Scan(&e.ID, &e.Title, &e.Company, &e.Period, &e.Responsibilities, &e.CertificateLink,
				&e.DisplayOrder, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt); err != nil {
				return nil, scanErr(domain.KindExperience, err)
			}
			return &e, nil
		},
		values: func(e *domain.Experience) []any {
			return []any{e.Title, e.Company, e.Period, nonNil(e.Responsibilities), e.CertificateLink, e.DisplayOrder, e.IsPublished}
		},
	}
}

func NewCertificationRepository(pool *pgxpool.Pool) *ContentRepository[domain.Certification] {
	return &ContentRepository[domain.Certification]{
		pool:    pool,
		kind:    domain.KindCertification,
		columns: []string{"title", "issuer", "issue_date", "image", "verification_link", "display_order", "is_published"},
		orderBy: "display_order ASC, issue_date DESC NULLS LAST",
		scan: func(row rowScanner) (*domain.Certification, error) {
			var c domain.Certification
			if err := row.Scan(&c.ID, &c.Title, &c.Issuer, &c.IssueDate, &c.Image, &c.VerificationLink,
				&c.DisplayOrder, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt); err != nil {
				return nil, scanErr(domain.KindCertification, err)
			}
			return &c, nil
		},
		values: func(c *domain.Certification) []any {
			return []any{c.Title, c.Issuer, c.IssueDate, c.Image, c.VerificationLink, c.DisplayOrder, c.IsPublished}
		},
	}
}

func NewAchievementRepository(pool *pgxpool.Pool) *ContentRepository[domain.Achievement] {
	return &ContentRepository[domain.Achievement]{
		pool:    pool,
		kind:    domain.KindAchievement,
		columns: []string{"title", "description", "link", "icon_type", "display_order", "is_published"},
		orderBy: "display_order ASC, created_at DESC",
		scan: func(row rowScanner) (*domain.Achievement, error) {
			var a domain.Achievement
			var icon string
			if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Link, &icon,
				&a.DisplayOrder, &a.IsPublished, &a.CreatedAt, &a.UpdatedAt); err != nil {
				return nil, scanErr(domain.KindAchievement, err)
			}
			a.Icon = domain.ParseIconType(icon)
			return &a, nil
		},
		values: func(a *domain.Achievement) []any {
			return []any{a.Title, a.Description, a.Link, string(a.Icon), a.DisplayOrder, a.IsPublished}
		},
	}
}

func NewPublicationRepository(pool *pgxpool.Pool) *ContentRepository[domain.Publication] {
	return &ContentRepository[domain.Publication]{
		pool:    pool,
		kind:    domain.KindPublication,
		columns: []string{"title", "authors", "description", "doi", "link", "publication_date", "publisher", "is_published"},
		orderBy: "publication_date DESC NULLS LAST, created_at DESC",
		scan: func(row rowScanner) (*domain.Publication, error) {
			var p domain.Publication
			if err := row.Scan(&p.ID, &p.Title, &p.Authors, &p.Description, &p.DOI, &p.Link,
				&p.PublicationDate, &p.Publisher, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return nil, scanErr(domain.KindPublication, err)
			}
			return &p, nil
		},
		values: func(p *domain.Publication) []any {
			return []any{p.Title, nonNil(p.Authors), p.Description, p.DOI, p.Link, p.PublicationDate, p.Publisher, p.IsPublished}
		},
	}
}

// ProjectRepository adds thumbnail updates on top of the shared CRUD.
type ProjectRepository struct {
	*ContentRepository[domain.Project]
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{&ContentRepository[domain.Project]{
		pool:     pool,
		kind:     domain.KindProject,
		featured: true,
		columns: []string{
			"title", "short_description", "full_description", "technologies", "images", "thumbnail",
			"github_link", "live_link", "data_link", "is_featured", "is_published", "display_order",
		},
		orderBy: "display_order ASC, created_at DESC",
		scan: func(row rowScanner) (*domain.Project, error) {
			var p domain.Project
			if err := row.Scan(&p.ID, &p.Title, &p.ShortDescription, &p.FullDescription, &p.Technologies,
				&p.Images, &p.Thumbnail, &p.GithubLink, &p.LiveLink, &p.DataLink, &p.IsFeatured,
				&p.IsPublished, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return nil, scanErr(domain.KindProject, err)
			}
			return &p, nil
		},
		values: func(p *domain.Project) []any {
			return []any{
				p.Title, p.ShortDescription, p.FullDescription, nonNil(p.Technologies), nonNil(p.Images), p.Thumbnail,
				p.GithubLink, p.LiveLink, p.DataLink, p.IsFeatured, p.IsPublished, p.DisplayOrder,
			}
		},
	}}
}

func (r *ProjectRepository) SetThumbnail(ctx context.Context, id, url string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET thumbnail = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		if isBadID(err) {
			return domain.ErrContentNotFound
		}
		return fmt.Errorf("set thumbnail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
