package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// ArticleStore implements driven.ArticleStore and driven.ArticleLoader
// over the articles table and its FTS5 index.
type ArticleStore struct {
	store *Store
}

var (
	_ driven.ArticleStore  = (*ArticleStore)(nil)
	_ driven.ArticleLoader = (*ArticleStore)(nil)
)

// idBatchSize keeps IN lists below SQLite's bound parameter limit.
const idBatchSize = 500

// SaveArticles upserts articles with their embeddings and MeSH terms.
func (s *ArticleStore) SaveArticles(ctx context.Context, records []domain.ArticleRecord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if r.ArticleID == 0 {
			return fmt.Errorf("%w: article without id", domain.ErrInvalidInput)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO articles (article_id, pmid, title, abstract, publication_date, temporary, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(article_id) DO UPDATE SET
				pmid = excluded.pmid,
				title = excluded.title,
				abstract = excluded.abstract,
				publication_date = excluded.publication_date,
				temporary = excluded.temporary,
				embedding = excluded.embedding
		`, r.ArticleID, r.PMID, r.Title, r.Abstract, nullString(r.PublicationDate),
			boolToInt(r.Temporary), float32SliceToBytes(r.Embedding))
		if err != nil {
			return fmt.Errorf("saving article %d: %w", r.ArticleID, err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM article_mesh_terms WHERE article_id = ?", r.ArticleID); err != nil {
			return fmt.Errorf("clearing mesh terms of %d: %w", r.ArticleID, err)
		}
		for i, term := range r.MeSHTerms {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO article_mesh_terms (article_id, position, term) VALUES (?, ?, ?)",
				r.ArticleID, i, term); err != nil {
				return fmt.Errorf("saving mesh term of %d: %w", r.ArticleID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing articles: %w", err)
	}
	return nil
}

// FilterArticles returns permanent articles matching the query in id order.
func (s *ArticleStore) FilterArticles(ctx context.Context, query string, limit *int) ([]int64, error) {
	b := sq.Select("article_id").
		From("articles").
		Where(sq.Eq{"temporary": 0}).
		OrderBy("article_id")
	if cond := matchCondition(domain.ParseQuery(query)); cond != nil {
		b = b.Where(cond)
	}
	if limit != nil && *limit >= 0 {
		b = b.Limit(uint64(*limit))
	}

	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building filter query: %w", err)
	}
	rows, err := s.store.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering articles: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning article id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return ids, nil
}

// matchCondition renders the query as OR-ed groups of FTS5 phrase lookups.
// Returns nil for an empty query.
func matchCondition(q domain.SearchQuery) sq.Sqlizer {
	if q.Empty() {
		return nil
	}
	or := sq.Or{}
	for _, group := range q.Groups {
		and := sq.And{}
		for _, term := range group {
			op := "IN"
			if term.Negated {
				op = "NOT IN"
			}
			and = append(and, sq.Expr(
				"article_id "+op+" (SELECT rowid FROM articles_fts WHERE articles_fts MATCH ?)",
				ftsPhrase(term.Words)))
		}
		or = append(or, and)
	}
	return or
}

// ftsPhrase quotes words as a single FTS5 phrase.
func ftsPhrase(words []string) string {
	return `"` + strings.ReplaceAll(strings.Join(words, " "), `"`, `""`) + `"`
}

// GetArticles returns the known articles among ids, in the order given.
func (s *ArticleStore) GetArticles(ctx context.Context, ids []int64) ([]domain.Article, error) {
	found := make(map[int64]domain.Article, len(ids))
	err := s.eachBatch(ctx, ids,
		sq.Select("article_id", "pmid", "title", "abstract", "publication_date", "temporary").From("articles"),
		func(rows *sql.Rows) error {
			var (
				a    domain.Article
				pmid sql.NullInt64
				date sql.NullString
				temp int
			)
			if err := rows.Scan(&a.ArticleID, &pmid, &a.Title, &a.Abstract, &date, &temp); err != nil {
				return err
			}
			a.PMID = pmid.Int64
			a.PublicationDate = date.String
			a.Temporary = temp == 1
			found[a.ArticleID] = a
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("getting articles: %w", err)
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
	out := make(map[int64][]float32, len(ids))
	err := s.eachBatch(ctx, ids,
		sq.Select("article_id", "embedding").From("articles").Where("embedding IS NOT NULL"),
		func(rows *sql.Rows) error {
			var (
				id   int64
				blob []byte
			)
			if err := rows.Scan(&id, &blob); err != nil {
				return err
			}
			if vec := bytesToFloat32Slice(blob); len(vec) > 0 {
				out[id] = vec
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("getting embeddings: %w", err)
	}
	return out, nil
}

// GetMeSHTerms returns the MeSH headings of each article in stored order.
func (s *ArticleStore) GetMeSHTerms(ctx context.Context, ids []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	err := s.eachBatch(ctx, ids,
		sq.Select("article_id", "term").From("article_mesh_terms").OrderBy("article_id", "position"),
		func(rows *sql.Rows) error {
			var (
				id   int64
				term string
			)
			if err := rows.Scan(&id, &term); err != nil {
				return err
			}
			out[id] = append(out[id], term)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("getting mesh terms: %w", err)
	}
	return out, nil
}

// eachBatch runs base restricted to each batch of ids and scans every row.
func (s *ArticleStore) eachBatch(
	ctx context.Context,
	ids []int64,
	base sq.SelectBuilder,
	scan func(*sql.Rows) error,
) error {
	for start := 0; start < len(ids); start += idBatchSize {
		end := min(start+idBatchSize, len(ids))
		stmt, args, err := base.Where(sq.Eq{"article_id": ids[start:end]}).ToSql()
		if err != nil {
			return err
		}
		if err := s.query(ctx, stmt, args, scan); err != nil {
			return err
		}
	}
	return nil
}

func (s *ArticleStore) query(ctx context.Context, stmt string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.store.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
