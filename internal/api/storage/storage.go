package storage

import (
	"log/slog"
	"strings"

	"github.com/cuongbtq/jobboard/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

type Storage struct {
	client *postgresql.Client
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		client: pg,
		db:     pg.GetDB(),
		logger: logger,
	}
}

// likePattern wraps term for a contains match, escaping LIKE wildcards
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
