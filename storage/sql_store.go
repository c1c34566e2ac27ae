package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"restaurant-insights/models"
)

const insertBatchSize = 50

// sqlStore holds the statements shared by the Postgres and SQLite stores.
// placeholder renders the n-th (1-based) bind parameter of the dialect.
type sqlStore struct {
	db          *sql.DB
	name        string
	placeholder func(n int) string
}

func (s *sqlStore) migrate(ddl string) error {
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("%s: migrate: %w", s.name, err)
	}
	return nil
}

// clear deletes previously stored rows of the dataset.
func (s *sqlStore) clear(tx *sql.Tx, dataset string) error {
	_, err := tx.Exec("DELETE FROM restaurants WHERE dataset = "+s.placeholder(1), dataset)
	if err != nil {
		return fmt.Errorf("%s: clear: %w", s.name, err)
	}
	return nil
}

// Write replaces every row of dataset with the rows of t, in one transaction.
func (s *sqlStore) Write(dataset string, t *models.RestaurantTable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.clear(tx, dataset); err != nil {
		return err
	}

	rows := t.Rows()
	opt := t.Optional()
	for i := 0; i < len(rows); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.insertBatch(tx, dataset, i, rows[i:end], opt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.name, err)
	}
	return nil
}

func (s *sqlStore) insertBatch(tx *sql.Tx, dataset string, offset int, batch []models.Restaurant, opt models.OptionalColumns) error {
	const perRow = 9
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*perRow)

	for idx, r := range batch {
		ph := make([]string, perRow)
		for k := range ph {
			ph[k] = s.placeholder(idx*perRow + k + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			dataset, offset+idx, r.Title, r.Category, r.ReviewCount, r.OnlineOrder,
			nullable(r.PopularFood, opt.PopularFood), nullable(r.ReviewComment, opt.ReviewComment),
			opt.PopularFood)
	}

	query := fmt.Sprintf(`
		INSERT INTO restaurants (dataset, row_index, title, category, review_count, online_order,
			popular_food, review_comment, has_popular_food)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert batch: %w", s.name, err)
	}
	return nil
}

// FetchAll reads the rows of dataset back in their original order.
func (s *sqlStore) FetchAll(dataset string) (*models.RestaurantTable, error) {
	rows, err := s.db.Query(`
		SELECT title, category, review_count, online_order, popular_food, review_comment, has_popular_food
		FROM restaurants
		WHERE dataset = `+s.placeholder(1)+`
		ORDER BY row_index
	`, dataset)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.name, err)
	}
	defer rows.Close()

	var (
		out []models.Restaurant
		opt models.OptionalColumns
	)
	for rows.Next() {
		var (
			r              models.Restaurant
			food, comment  sql.NullString
			hasPopularFood bool
		)
		if err := rows.Scan(&r.Title, &r.Category, &r.ReviewCount, &r.OnlineOrder,
			&food, &comment, &hasPopularFood); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.name, err)
		}
		r.PopularFood = food.String
		r.ReviewComment = comment.String
		opt.PopularFood = hasPopularFood
		if comment.Valid {
			opt.ReviewComment = true
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate rows: %w", s.name, err)
	}
	return models.NewRestaurantTable(out, opt), nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// nullable stores absent optional columns as NULL so that column presence
// survives a round trip.
func nullable(v string, present bool) sql.NullString {
	return sql.NullString{String: v, Valid: present}
}
