package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	intconfig "busbenin/internal/config"
	intdb "busbenin/internal/db"
	"busbenin/internal/domain"
	"busbenin/internal/domain/models"
)

type ReservationRepository struct {
	DB *sql.DB
}

func (r ReservationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const reservationColumns = `
		id,
		trajet_id,
		user_id,
		nb_places,
		COALESCE(horaire,''),
		COALESCE(date_voyage,''),
		COALESCE(nom_passager,''),
		COALESCE(telephone_passager,''),
		COALESCE(email_passager,''),
		COALESCE(montant_total,0),
		COALESCE(statut,''),
		COALESCE(statut_paiement,''),
		COALESCE(fedapay_transaction_id,''),
		COALESCE(fedapay_token,''),
		created_at`

func scanReservation(row interface{ Scan(...any) error }) (models.Reservation, error) {
	var res models.Reservation
	err := row.Scan(
		&res.ID,
		&res.TrajetID,
		&res.UserID,
		&res.NbPlaces,
		&res.Horaire,
		&res.DateVoyage,
		&res.NomPassager,
		&res.TelephonePassager,
		&res.EmailPassager,
		&res.MontantTotal,
		&res.Statut,
		&res.StatutPaiement,
		&res.FedapayTransactionID,
		&res.FedapayToken,
		&res.CreatedAt,
	)
	return res, err
}

// CreateReservation inserts a new row with statut=en_attente and
// statut_paiement=pending and returns its id.
func (r ReservationRepository) CreateReservation(res models.Reservation) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, domain.InternalError{Msg: "base de données non disponible"}
	}

	out, err := db.Exec(`
		INSERT INTO reservations
			(trajet_id, user_id, nb_places, horaire, date_voyage,
			 nom_passager, telephone_passager, email_passager,
			 montant_total, statut, statut_paiement, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`,
		res.TrajetID,
		res.UserID,
		res.NbPlaces,
		res.Horaire,
		res.DateVoyage,
		res.NomPassager,
		res.TelephonePassager,
		intdb.NullIfEmpty(res.EmailPassager),
		res.MontantTotal,
		models.StatutEnAttente,
		models.PaiementPending,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "reservation", Err: err}
		}
		return 0, domain.InternalError{Msg: "création réservation échouée", Err: err}
	}

	id, err := out.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "lecture id réservation", Err: err}
	}
	return id, nil
}

// AttachPaymentInfo stores the gateway correlation identifiers on the
// reservation. Idempotent upsert: re-running with the same values is safe.
func (r ReservationRepository) AttachPaymentInfo(id int64, transactionID, token, statutPaiement string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "reservation_id", Msg: "id invalide"}
	}
	if !models.PaiementValide(statutPaiement) {
		return domain.ValidationError{Field: "statut_paiement", Msg: "statut de paiement inconnu"}
	}
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "base de données non disponible"}
	}

	var existing int64
	if err := db.QueryRow(`SELECT id FROM reservations WHERE id=? LIMIT 1`, id).Scan(&existing); err != nil {
		if err == sql.ErrNoRows {
			return domain.NotFoundError{Resource: "reservation"}
		}
		return domain.InternalError{Msg: "lecture réservation", Err: err}
	}

	_, err := db.Exec(`
		UPDATE reservations
		SET fedapay_transaction_id=?, fedapay_token=?, statut_paiement=?, updated_at=NOW()
		WHERE id=?
	`, transactionID, intdb.NullIfEmpty(token), statutPaiement, id)
	if err != nil {
		return domain.InternalError{Msg: "enregistrement infos paiement", Err: err}
	}
	return nil
}

// UpdateReservationStatus writes both statuses. Idempotent, last-write-wins;
// the row serializes concurrent writers, no optimistic locking here.
func (r ReservationRepository) UpdateReservationStatus(id int64, statut, statutPaiement string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "reservation_id", Msg: "id invalide"}
	}
	if !models.PaiementValide(statutPaiement) {
		return domain.ValidationError{Field: "statut_paiement", Msg: "statut de paiement inconnu"}
	}
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "base de données non disponible"}
	}

	var existing int64
	if err := db.QueryRow(`SELECT id FROM reservations WHERE id=? LIMIT 1`, id).Scan(&existing); err != nil {
		if err == sql.ErrNoRows {
			return domain.NotFoundError{Resource: "reservation"}
		}
		return domain.InternalError{Msg: "lecture réservation", Err: err}
	}

	_, err := db.Exec(`
		UPDATE reservations
		SET statut=?, statut_paiement=?, updated_at=NOW()
		WHERE id=?
	`, statut, statutPaiement, id)
	if err != nil {
		return domain.InternalError{Msg: "mise à jour statut réservation", Err: err}
	}
	return nil
}

// CancelReservation flips statut to annulee only while it is still
// en_attente. Returns false (no-op) otherwise: a confirmed or already
// terminal reservation cannot be canceled here.
func (r ReservationRepository) CancelReservation(id int64) (bool, error) {
	if id <= 0 {
		return false, domain.ValidationError{Field: "reservation_id", Msg: "id invalide"}
	}
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "base de données non disponible"}
	}

	out, err := db.Exec(`
		UPDATE reservations
		SET statut=?, updated_at=NOW()
		WHERE id=? AND statut=?
	`, models.StatutAnnulee, id, models.StatutEnAttente)
	if err != nil {
		return false, domain.InternalError{Msg: "annulation réservation", Err: err}
	}

	affected, err := out.RowsAffected()
	if err != nil {
		return false, domain.InternalError{Msg: "lecture résultat annulation", Err: err}
	}
	return affected > 0, nil
}

func (r ReservationRepository) GetByID(id int64) (models.Reservation, error) {
	if id <= 0 {
		return models.Reservation{}, domain.ValidationError{Field: "reservation_id", Msg: "id invalide"}
	}
	db := r.db()
	if db == nil {
		return models.Reservation{}, domain.InternalError{Msg: "base de données non disponible"}
	}

	res, err := scanReservation(db.QueryRow(`SELECT `+reservationColumns+` FROM reservations WHERE id=? LIMIT 1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Reservation{}, domain.NotFoundError{Resource: "reservation"}
		}
		return models.Reservation{}, domain.InternalError{Msg: "lecture réservation", Err: err}
	}
	return res, nil
}

// ListByUser returns the caller's reservations, newest first.
func (r ReservationRepository) ListByUser(userID int64) ([]models.Reservation, error) {
	return r.list(`WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
}

// ListAll returns every reservation, newest first (admin view).
func (r ReservationRepository) ListAll() ([]models.Reservation, error) {
	return r.list(`ORDER BY created_at DESC, id DESC`)
}

// ListByCompagnie returns reservations placed on the compagnie's trajets
// (company-account view).
func (r ReservationRepository) ListByCompagnie(compagnieID int64) ([]models.Reservation, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "base de données non disponible"}
	}

	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE trajet_id IN (SELECT id FROM trajets WHERE compagnie_id=?)
		ORDER BY created_at DESC, id DESC
	`, strings.TrimSpace(reservationColumns))
	return r.query(query, compagnieID)
}

func (r ReservationRepository) list(clause string, args ...any) ([]models.Reservation, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "base de données non disponible"}
	}
	query := fmt.Sprintf(`SELECT %s FROM reservations %s`, strings.TrimSpace(reservationColumns), clause)
	return r.query(query, args...)
}

func (r ReservationRepository) query(query string, args ...any) ([]models.Reservation, error) {
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "lecture réservations", Err: err}
	}
	defer rows.Close()

	out := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "lecture réservation", Err: err}
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "lecture réservations", Err: err}
	}
	return out, nil
}
