package repositories

import (
	"database/sql"

	intconfig "busbenin/internal/config"
	"busbenin/internal/domain"
	"busbenin/internal/domain/models"
)

type CompagnieRepository struct {
	DB *sql.DB
}

func (r CompagnieRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r CompagnieRepository) List() ([]models.Compagnie, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "base de données non disponible"}
	}

	rows, err := db.Query(`SELECT id, COALESCE(nom,'') FROM compagnies ORDER BY nom`)
	if err != nil {
		return nil, domain.InternalError{Msg: "lecture compagnies", Err: err}
	}
	defer rows.Close()

	out := []models.Compagnie{}
	for rows.Next() {
		var c models.Compagnie
		if err := rows.Scan(&c.ID, &c.Nom); err != nil {
			return nil, domain.InternalError{Msg: "lecture compagnie", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "lecture compagnies", Err: err}
	}
	return out, nil
}

func (r CompagnieRepository) GetByID(id int64) (models.Compagnie, error) {
	if id <= 0 {
		return models.Compagnie{}, domain.ValidationError{Field: "compagnie_id", Msg: "id invalide"}
	}
	db := r.db()
	if db == nil {
		return models.Compagnie{}, domain.InternalError{Msg: "base de données non disponible"}
	}

	var c models.Compagnie
	err := db.QueryRow(`SELECT id, COALESCE(nom,'') FROM compagnies WHERE id=? LIMIT 1`, id).Scan(&c.ID, &c.Nom)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Compagnie{}, domain.NotFoundError{Resource: "compagnie"}
		}
		return models.Compagnie{}, domain.InternalError{Msg: "lecture compagnie", Err: err}
	}
	return c, nil
}
