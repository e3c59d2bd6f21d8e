package repositories

import (
	"database/sql"
	"strings"

	intconfig "busbenin/internal/config"
	intdb "busbenin/internal/db"
	"busbenin/internal/domain"
	"busbenin/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, nom, email, COALESCE(telephone,''), password_hash, admin, COALESCE(compagnie_id,0), created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Nom, &u.Email, &u.Telephone, &u.PasswordHash, &u.Admin, &u.CompagnieID, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a new account; the email must be unique.
func (r UserRepository) CreateUser(u models.User) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, domain.InternalError{Msg: "base de données non disponible"}
	}

	res, err := db.Exec(`INSERT INTO users (nom, email, telephone, password_hash, admin, compagnie_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Nom,
		strings.ToLower(strings.TrimSpace(u.Email)),
		intdb.NullIfEmpty(u.Telephone),
		u.PasswordHash,
		u.Admin,
		nullIfZero(u.CompagnieID),
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "user", Msg: "un compte existe déjà avec cet email"}
		}
		return 0, domain.InternalError{Msg: "création du compte", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "création du compte", Err: err}
	}
	return id, nil
}

// GetByEmail looks up an account by email, case-insensitively.
func (r UserRepository) GetByEmail(email string) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, domain.InternalError{Msg: "base de données non disponible"}
	}

	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`,
		strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, domain.InternalError{Msg: "lecture du compte", Err: err}
	}
	return u, nil
}

func (r UserRepository) GetByID(id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "user_id", Msg: "id invalide"}
	}
	db := r.db()
	if db == nil {
		return models.User{}, domain.InternalError{Msg: "base de données non disponible"}
	}

	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, domain.InternalError{Msg: "lecture du compte", Err: err}
	}
	return u, nil
}

func nullIfZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
