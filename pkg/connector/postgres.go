package connector

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// GetPostgresConnector открывает соединение с базой. Хэндл создается один раз
// на процесс и передается во все репозитории
func GetPostgresConnector(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(0)
	return db, nil
}
