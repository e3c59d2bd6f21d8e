package repositories

import (
	"database/sql"
	"encoding/json"
	"strings"

	intconfig "busbenin/internal/config"
	intdb "busbenin/internal/db"
	"busbenin/internal/domain"
	"busbenin/internal/domain/models"
)

type TrajetRepository struct {
	DB *sql.DB
}

func (r TrajetRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const trajetColumns = `
		t.id,
		COALESCE(t.depart,''),
		COALESCE(t.arrivee,''),
		COALESCE(t.prix,0),
		COALESCE(t.horaires,'[]'),
		COALESCE(t.compagnie_id,0),
		COALESCE(c.nom,''),
		t.created_at`

func scanTrajet(row interface{ Scan(...any) error }) (models.Trajet, error) {
	var (
		t        models.Trajet
		horaires string
	)
	err := row.Scan(
		&t.ID,
		&t.Depart,
		&t.Arrivee,
		&t.Prix,
		&horaires,
		&t.CompagnieID,
		&t.Compagnie,
		&t.CreatedAt,
	)
	if err != nil {
		return models.Trajet{}, err
	}
	if err := json.Unmarshal([]byte(horaires), &t.Horaires); err != nil {
		t.Horaires = nil
	}
	return t, nil
}

func (r TrajetRepository) GetByID(id int64) (models.Trajet, error) {
	if id <= 0 {
		return models.Trajet{}, domain.ValidationError{Field: "trajet_id", Msg: "id invalide"}
	}
	db := r.db()
	if db == nil {
		return models.Trajet{}, domain.InternalError{Msg: "base de données non disponible"}
	}

	t, err := scanTrajet(db.QueryRow(`
		SELECT `+trajetColumns+`
		FROM trajets t
		LEFT JOIN compagnies c ON c.id = t.compagnie_id
		WHERE t.id=? LIMIT 1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Trajet{}, domain.NotFoundError{Resource: "trajet"}
		}
		return models.Trajet{}, domain.InternalError{Msg: "lecture trajet", Err: err}
	}
	return t, nil
}

// Search mirrors the app's search behavior: strict depart+arrivee match
// first, then the same pair swapped, then a broader either-field match.
// Without filters, everything is returned newest first.
func (r TrajetRepository) Search(depart, arrivee string) ([]models.Trajet, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "base de données non disponible"}
	}

	dep := strings.TrimSpace(depart)
	arr := strings.TrimSpace(arrivee)

	base := `
		SELECT ` + trajetColumns + `
		FROM trajets t
		LEFT JOIN compagnies c ON c.id = t.compagnie_id
	`

	switch {
	case dep != "" && arr != "":
		out, err := r.query(base+`WHERE t.depart LIKE ? AND t.arrivee LIKE ? ORDER BY t.created_at DESC, t.id DESC`,
			like(dep), like(arr))
		if err != nil || len(out) > 0 {
			return out, err
		}
		// swapped: user might have inverted the fields
		out, err = r.query(base+`WHERE t.depart LIKE ? AND t.arrivee LIKE ? ORDER BY t.created_at DESC, t.id DESC`,
			like(arr), like(dep))
		if err != nil || len(out) > 0 {
			return out, err
		}
		return r.query(base+`WHERE t.depart LIKE ? OR t.arrivee LIKE ? ORDER BY t.created_at DESC, t.id DESC`,
			like(dep), like(arr))
	case dep != "" || arr != "":
		term := dep
		if term == "" {
			term = arr
		}
		return r.query(base+`WHERE t.depart LIKE ? OR t.arrivee LIKE ? ORDER BY t.created_at DESC, t.id DESC`,
			like(term), like(term))
	default:
		return r.query(base + `ORDER BY t.created_at DESC, t.id DESC`)
	}
}

// Upsert creates or updates a trajet (admin screen).
func (r TrajetRepository) Upsert(t models.Trajet) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, domain.InternalError{Msg: "base de données non disponible"}
	}

	horaires, err := json.Marshal(t.Horaires)
	if err != nil {
		return 0, domain.InternalError{Msg: "encodage horaires", Err: err}
	}

	if t.ID > 0 {
		_, err := db.Exec(`
			UPDATE trajets
			SET depart=?, arrivee=?, prix=?, horaires=?, compagnie_id=?, updated_at=NOW()
			WHERE id=?
		`, t.Depart, t.Arrivee, t.Prix, string(horaires), t.CompagnieID, t.ID)
		if err != nil {
			return 0, domain.InternalError{Msg: "mise à jour trajet", Err: err}
		}
		return t.ID, nil
	}

	out, err := db.Exec(`
		INSERT INTO trajets (depart, arrivee, prix, horaires, compagnie_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
	`, t.Depart, t.Arrivee, t.Prix, string(horaires), t.CompagnieID)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "trajet", Err: err}
		}
		return 0, domain.InternalError{Msg: "création trajet", Err: err}
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "lecture id trajet", Err: err}
	}
	return id, nil
}

func (r TrajetRepository) Delete(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "trajet_id", Msg: "id invalide"}
	}
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "base de données non disponible"}
	}
	out, err := db.Exec(`DELETE FROM trajets WHERE id=?`, id)
	if err != nil {
		return domain.InternalError{Msg: "suppression trajet", Err: err}
	}
	if affected, err := out.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "trajet"}
	}
	return nil
}

func (r TrajetRepository) query(query string, args ...any) ([]models.Trajet, error) {
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "lecture trajets", Err: err}
	}
	defer rows.Close()

	out := []models.Trajet{}
	for rows.Next() {
		t, err := scanTrajet(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "lecture trajet", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "lecture trajets", Err: err}
	}
	return out, nil
}

func like(term string) string {
	return "%" + term + "%"
}
