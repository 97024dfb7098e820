package gateway

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"estate-cms/internal/models"
)

// PostgresRows implements Rows on PostgreSQL with database/sql. Selected by
// the database.type config; covers the same tables as the GORM path.
type PostgresRows struct {
	conn *sql.DB
}

func NewPostgresRows(host, port, user, password, dbname, sslmode string) (*PostgresRows, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return &PostgresRows{conn: conn}, nil
}

func (p *PostgresRows) Close() error {
	return p.conn.Close()
}

// InitSchema creates the tables if they don't exist.
func (p *PostgresRows) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(36) PRIMARY KEY,
		title TEXT NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		listing_type VARCHAR(10) NOT NULL DEFAULT 'rental',
		rental_price DECIMAL(12,2),
		sale_price DECIMAL(12,2),
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		bedrooms INTEGER,
		bathrooms INTEGER,
		max_guests INTEGER,
		location TEXT,
		description TEXT,
		amenities TEXT,
		video_url TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		hero_image TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_listing_type ON properties(listing_type);
	CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);

	CREATE TABLE IF NOT EXISTS property_images (
		id BIGSERIAL PRIMARY KEY,
		property_id VARCHAR(36) NOT NULL,
		path TEXT NOT NULL,
		alt_text TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		image_hash VARCHAR(32),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_property_images_property ON property_images(property_id);

	CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		description TEXT,
		hero_image TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS blog_posts (
		id VARCHAR(36) PRIMARY KEY,
		title TEXT NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		content TEXT,
		excerpt TEXT,
		hero_image TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR(36) PRIMARY KEY,
		author_name VARCHAR(255) NOT NULL,
		rating INTEGER NOT NULL,
		body TEXT,
		photo TEXT,
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err := p.conn.Exec(query)
	return err
}

func (p *PostgresRows) Select(table string, q Query, dest interface{}) error {
	where, args := buildWhere(q)

	order := ""
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		order = fmt.Sprintf(" ORDER BY %s %s", q.OrderBy, dir)
	}
	limit := ""
	if q.Limit > 0 {
		limit = fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		limit += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	switch out := dest.(type) {
	case *[]models.Property:
		query := "SELECT id, title, slug, listing_type, rental_price, sale_price, currency, bedrooms, bathrooms, max_guests, COALESCE(location, ''), COALESCE(description, ''), COALESCE(amenities, ''), COALESCE(video_url, ''), status, is_active, is_featured, COALESCE(hero_image, ''), created_at, updated_at FROM " + table + where + order + limit
		rows, err := p.conn.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m models.Property
			if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &m.ListingType, &m.RentalPrice, &m.SalePrice, &m.Currency,
				&m.Bedrooms, &m.Bathrooms, &m.MaxGuests, &m.Location, &m.Description, &m.Amenities, &m.VideoURL,
				&m.Status, &m.IsActive, &m.IsFeatured, &m.HeroImage, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			*out = append(*out, m)
		}
		return rows.Err()

	case *[]models.PropertyImage:
		query := "SELECT id, property_id, path, COALESCE(alt_text, ''), sort_order, is_active, COALESCE(image_hash, ''), created_at, updated_at FROM " + table + where + order + limit
		rows, err := p.conn.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m models.PropertyImage
			if err := rows.Scan(&m.ID, &m.PropertyID, &m.Path, &m.AltText, &m.SortOrder, &m.IsActive, &m.ImageHash, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			*out = append(*out, m)
		}
		return rows.Err()

	case *[]models.Category:
		query := "SELECT id, name, slug, COALESCE(description, ''), COALESCE(hero_image, ''), is_active, sort_order, created_at, updated_at FROM " + table + where + order + limit
		rows, err := p.conn.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m models.Category
			if err := rows.Scan(&m.ID, &m.Name, &m.Slug, &m.Description, &m.HeroImage, &m.IsActive, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			*out = append(*out, m)
		}
		return rows.Err()

	case *[]models.BlogPost:
		query := "SELECT id, title, slug, COALESCE(content, ''), COALESCE(excerpt, ''), COALESCE(hero_image, ''), status, created_at, updated_at FROM " + table + where + order + limit
		rows, err := p.conn.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m models.BlogPost
			if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &m.Content, &m.Excerpt, &m.HeroImage, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			*out = append(*out, m)
		}
		return rows.Err()

	case *[]models.Review:
		query := "SELECT id, author_name, rating, COALESCE(body, ''), COALESCE(photo, ''), is_approved, created_at, updated_at FROM " + table + where + order + limit
		rows, err := p.conn.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m models.Review
			if err := rows.Scan(&m.ID, &m.AuthorName, &m.Rating, &m.Body, &m.Photo, &m.IsApproved, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			*out = append(*out, m)
		}
		return rows.Err()
	}

	return fmt.Errorf("select %s: unsupported destination type %T", table, dest)
}

func (p *PostgresRows) Insert(table string, row interface{}) error {
	switch m := row.(type) {
	case *models.Property:
		_, err := p.conn.Exec(`INSERT INTO properties
			(id, title, slug, listing_type, rental_price, sale_price, currency, bedrooms, bathrooms, max_guests,
			 location, description, amenities, video_url, status, is_active, is_featured, hero_image)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			m.ID, m.Title, m.Slug, m.ListingType, m.RentalPrice, m.SalePrice, m.Currency,
			m.Bedrooms, m.Bathrooms, m.MaxGuests, m.Location, m.Description, m.Amenities, m.VideoURL,
			m.Status, m.IsActive, m.IsFeatured, m.HeroImage)
		return err
	case *models.PropertyImage:
		return p.conn.QueryRow(`INSERT INTO property_images
			(property_id, path, alt_text, sort_order, is_active, image_hash)
			VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			m.PropertyID, m.Path, m.AltText, m.SortOrder, m.IsActive, m.ImageHash).Scan(&m.ID)
	case *models.Category:
		_, err := p.conn.Exec(`INSERT INTO categories
			(id, name, slug, description, hero_image, is_active, sort_order)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			m.ID, m.Name, m.Slug, m.Description, m.HeroImage, m.IsActive, m.SortOrder)
		return err
	case *models.BlogPost:
		_, err := p.conn.Exec(`INSERT INTO blog_posts
			(id, title, slug, content, excerpt, hero_image, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			m.ID, m.Title, m.Slug, m.Content, m.Excerpt, m.HeroImage, m.Status)
		return err
	case *models.Review:
		_, err := p.conn.Exec(`INSERT INTO reviews
			(id, author_name, rating, body, photo, is_approved)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.AuthorName, m.Rating, m.Body, m.Photo, m.IsApproved)
		return err
	}
	return fmt.Errorf("insert %s: unsupported row type %T", table, row)
}

func (p *PostgresRows) Update(table string, id string, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return nil
	}

	// Deterministic column order keeps the statement stable for logging.
	cols := make([]string, 0, len(patch))
	for col := range patch {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, patch[col])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(cols)+1)
	res, err := p.conn.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update %s: no row with id %s", table, id)
	}
	return nil
}

func (p *PostgresRows) Delete(table string, id string) error {
	_, err := p.conn.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	return err
}

// buildWhere renders the query predicates as a WHERE clause with $n args.
func buildWhere(q Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argID := 1

	render := func(p Predicate) string {
		var c string
		switch p.Op {
		case OpEq:
			c = fmt.Sprintf("%s = $%d", p.Field, argID)
			args = append(args, p.Value)
		case OpContains:
			c = fmt.Sprintf("%s ILIKE $%d", p.Field, argID)
			args = append(args, "%"+fmt.Sprint(p.Value)+"%")
		case OpGte:
			c = fmt.Sprintf("%s >= $%d", p.Field, argID)
			args = append(args, p.Value)
		case OpLte:
			c = fmt.Sprintf("%s <= $%d", p.Field, argID)
			args = append(args, p.Value)
		case OpIn:
			c = fmt.Sprintf("%s = ANY($%d)", p.Field, argID)
			args = append(args, p.Value)
		}
		argID++
		return c
	}

	for _, p := range q.Where {
		conditions = append(conditions, render(p))
	}
	for _, group := range q.OrGroups {
		parts := make([]string, 0, len(group))
		for _, p := range group {
			parts = append(parts, render(p))
		}
		conditions = append(conditions, "("+strings.Join(parts, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
