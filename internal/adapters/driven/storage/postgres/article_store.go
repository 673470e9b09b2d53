// Package postgres reads and loads the article corpus from PostgreSQL,
// using the database's own full-text search for filter sets.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Schema creates the tables read by ArticleStore.
const Schema = `
CREATE TABLE IF NOT EXISTS articles (
    article_id       BIGINT PRIMARY KEY,
    pmid             BIGINT,
    title            TEXT NOT NULL DEFAULT '',
    abstract         TEXT NOT NULL DEFAULT '',
    publication_date TEXT,
    temporary        BOOLEAN NOT NULL DEFAULT FALSE,
    embedding        DOUBLE PRECISION[],
    mesh_terms       TEXT[] NOT NULL DEFAULT '{}',
    search_vector    TSVECTOR GENERATED ALWAYS AS (
        to_tsvector('english', coalesce(title, '') || ' ' || coalesce(abstract, ''))
    ) STORED
);
CREATE INDEX IF NOT EXISTS articles_search_idx ON articles USING GIN (search_vector);
`

// TextSearchConfig is the PostgreSQL text search configuration used for queries.
const TextSearchConfig = "english"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArticleStore implements driven.ArticleStore and driven.ArticleLoader.
type ArticleStore struct {
	db *sql.DB
}

var (
	_ driven.ArticleStore  = (*ArticleStore)(nil)
	_ driven.ArticleLoader = (*ArticleStore)(nil)
)

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*ArticleStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewArticleStore(db), nil
}

// NewArticleStore wraps an open database.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// EnsureSchema creates the articles table if it is missing.
func (s *ArticleStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}

// SaveArticles upserts the records in one transaction.
func (s *ArticleStore) SaveArticles(ctx context.Context, records []domain.ArticleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if r.ArticleID == 0 {
			return fmt.Errorf("%w: article without id", domain.ErrInvalidInput)
		}
		stmt, args, err := upsertQuery(r)
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("upsert article %d: %w", r.ArticleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FilterArticles runs the query through websearch_to_tsquery.
func (s *ArticleStore) FilterArticles(ctx context.Context, query string, limit *int) ([]int64, error) {
	stmt, args, err := filterQuery(query, limit)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	ids := make([]int64, 0)
	err = s.each(ctx, stmt, args, func(rows *sql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filter articles: %w", err)
	}
	return ids, nil
}

// GetArticles returns the known articles among ids, in the order given.
func (s *ArticleStore) GetArticles(ctx context.Context, ids []int64) ([]domain.Article, error) {
	stmt, args, err := byIDs(ids, "article_id", "pmid", "title", "abstract", "publication_date", "temporary").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	found := make(map[int64]domain.Article, len(ids))
	err = s.each(ctx, stmt, args, func(rows *sql.Rows) error {
		var (
			a    domain.Article
			pmid sql.NullInt64
			date sql.NullString
		)
		if err := rows.Scan(&a.ArticleID, &pmid, &a.Title, &a.Abstract, &date, &a.Temporary); err != nil {
			return err
		}
		a.PMID = pmid.Int64
		a.PublicationDate = date.String
		found[a.ArticleID] = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get articles: %w", err)
	}

	out := make([]domain.Article, 0, len(found))
	for _, id := range ids {
		if a, ok := found[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetEmbeddings returns embeddings for the ids that have one.
func (s *ArticleStore) GetEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error) {
	stmt, args, err := byIDs(ids, "article_id", "embedding").
		Where("embedding IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	out := make(map[int64][]float32, len(ids))
	err = s.each(ctx, stmt, args, func(rows *sql.Rows) error {
		var (
			id  int64
			vec pq.Float64Array
		)
		if err := rows.Scan(&id, &vec); err != nil {
			return err
		}
		if len(vec) > 0 {
			out[id] = toFloat32(vec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	return out, nil
}

// GetMeSHTerms returns the MeSH headings of each known article.
func (s *ArticleStore) GetMeSHTerms(ctx context.Context, ids []int64) (map[int64][]string, error) {
	stmt, args, err := byIDs(ids, "article_id", "mesh_terms").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	out := make(map[int64][]string, len(ids))
	err = s.each(ctx, stmt, args, func(rows *sql.Rows) error {
		var (
			id    int64
			terms pq.StringArray
		)
		if err := rows.Scan(&id, &terms); err != nil {
			return err
		}
		out[id] = []string(terms)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get mesh terms: %w", err)
	}
	return out, nil
}

func (s *ArticleStore) each(ctx context.Context, stmt string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		if err := scan(rows); err != nil {
			_ = rows.Close()
			return err
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}

// ==================== Query Builders ====================

func filterQuery(query string, limit *int) (string, []any, error) {
	b := psql.Select("article_id").
		From("articles").
		Where(sq.Eq{"temporary": false}).
		OrderBy("article_id")
	if !domain.ParseQuery(query).Empty() {
		b = b.Where(
			"search_vector @@ websearch_to_tsquery('"+TextSearchConfig+"', ?)",
			domain.NormalizeQuery(query),
		)
	}
	if limit != nil && *limit >= 0 {
		b = b.Limit(uint64(*limit))
	}
	return b.ToSql()
}

func byIDs(ids []int64, columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).
		From("articles").
		Where("article_id = ANY(?)", pq.Int64Array(ids))
}

func upsertQuery(r domain.ArticleRecord) (string, []any, error) {
	var embedding any
	if len(r.Embedding) > 0 {
		embedding = pq.Float64Array(toFloat64(r.Embedding))
	}
	terms := r.MeSHTerms
	if terms == nil {
		terms = []string{}
	}

	var date any
	if r.PublicationDate != "" {
		date = r.PublicationDate
	}

	return psql.Insert("articles").
		Columns("article_id", "pmid", "title", "abstract", "publication_date", "temporary", "embedding", "mesh_terms").
		Values(r.ArticleID, r.PMID, r.Title, r.Abstract, date, r.Temporary, embedding, pq.StringArray(terms)).
		Suffix(`ON CONFLICT (article_id) DO UPDATE SET
			pmid = EXCLUDED.pmid,
			title = EXCLUDED.title,
			abstract = EXCLUDED.abstract,
			publication_date = EXCLUDED.publication_date,
			temporary = EXCLUDED.temporary,
			embedding = EXCLUDED.embedding,
			mesh_terms = EXCLUDED.mesh_terms`).
		ToSql()
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
