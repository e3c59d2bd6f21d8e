package repositories

import (
	"database/sql"
	"testing"
	"time"

	"busbenin/internal/domain"
	"busbenin/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newMockRepo(t *testing.T) (ReservationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return ReservationRepository{DB: db}, mock
}

func sampleReservation() models.Reservation {
	return models.Reservation{
		TrajetID:          3,
		UserID:            42,
		NbPlaces:          2,
		Horaire:           "08:00",
		DateVoyage:        "2030-06-15",
		NomPassager:       "Awa Dossou",
		TelephonePassager: "+2290197000001",
		EmailPassager:     "awa@example.com",
		MontantTotal:      2000,
	}
}

func TestCreateReservationInsertsPendingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(int64(3), int64(42), 2, "08:00", "2030-06-15",
			"Awa Dossou", "+2290197000001", "awa@example.com",
			int64(2000), models.StatutEnAttente, models.PaiementPending).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.CreateReservation(sampleReservation())
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sql expectations: %v", err)
	}
}

func TestCreateReservationDuplicateKeyIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.CreateReservation(sampleReservation())
	if !domain.IsConflict(err) {
		t.Fatalf("want ConflictError on duplicate key, got %v", err)
	}
}

func TestAttachPaymentInfo(t *testing.T) {
	repo, mock := newMockRepo(t)

	// re-running with the same values is a plain second update
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT id FROM reservations").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec("UPDATE reservations").
			WithArgs("T1", "TOK1", models.PaiementPending, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, int64(1-i)))
	}

	for i := 0; i < 2; i++ {
		if err := repo.AttachPaymentInfo(7, "T1", "TOK1", models.PaiementPending); err != nil {
			t.Fatalf("AttachPaymentInfo run %d: %v", i+1, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sql expectations: %v", err)
	}
}

func TestAttachPaymentInfoMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id FROM reservations").
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	err := repo.AttachPaymentInfo(7, "T1", "TOK1", models.PaiementPending)
	if !domain.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestUpdateReservationStatusIdempotent(t *testing.T) {
	repo, mock := newMockRepo(t)

	// second write changes no rows; still a success
	for _, affected := range []int64{1, 0} {
		mock.ExpectQuery("SELECT id FROM reservations").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec("UPDATE reservations").
			WithArgs(models.StatutConfirmee, models.PaiementApproved, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, affected))
	}

	for i := 0; i < 2; i++ {
		if err := repo.UpdateReservationStatus(7, models.StatutConfirmee, models.PaiementApproved); err != nil {
			t.Fatalf("UpdateReservationStatus run %d: %v", i+1, err)
		}
	}
}

func TestCancelReservationOnlyWhilePending(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE reservations").
		WithArgs(models.StatutAnnulee, int64(7), models.StatutEnAttente).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.CancelReservation(7)
	if err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if !ok {
		t.Error("pending reservation must cancel")
	}

	// already confirmed: the WHERE clause matches nothing
	mock.ExpectExec("UPDATE reservations").
		WithArgs(models.StatutAnnulee, int64(7), models.StatutEnAttente).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.CancelReservation(7)
	if err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if ok {
		t.Error("non-pending reservation must not cancel")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM reservations").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(404)
	if !domain.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "trajet_id", "user_id", "nb_places", "horaire", "date_voyage",
		"nom_passager", "telephone_passager", "email_passager", "montant_total",
		"statut", "statut_paiement", "fedapay_transaction_id", "fedapay_token", "created_at",
	}).
		AddRow(8, 3, 42, 1, "14:00", "2030-07-01", "Awa Dossou", "+2290197000001", "", 1000,
			"en_attente", "pending", "", "", time.Now()).
		AddRow(7, 3, 42, 2, "08:00", "2030-06-15", "Awa Dossou", "+2290197000001", "awa@example.com", 2000,
			"confirmee", "approved", "T1", "TOK1", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM reservations").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	out, err := repo.ListByUser(42)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].ID != 8 || out[1].ID != 7 {
		t.Errorf("order = %d,%d, want 8,7", out[0].ID, out[1].ID)
	}
	if out[1].FedapayTransactionID != "T1" {
		t.Errorf("transaction id = %q", out[1].FedapayTransactionID)
	}
}

func TestReservationInvalidID(t *testing.T) {
	repo, _ := newMockRepo(t)

	if _, err := repo.GetByID(0); !domain.IsValidation(err) {
		t.Errorf("GetByID(0): want ValidationError, got %v", err)
	}
	if err := repo.AttachPaymentInfo(-1, "T1", "", ""); !domain.IsValidation(err) {
		t.Errorf("AttachPaymentInfo(-1): want ValidationError, got %v", err)
	}
	if _, err := repo.CancelReservation(0); !domain.IsValidation(err) {
		t.Errorf("CancelReservation(0): want ValidationError, got %v", err)
	}
}

func TestRejectsUnknownPaymentStatus(t *testing.T) {
	repo, _ := newMockRepo(t)

	// "complete" is not one of the four canonical gateway statuses
	if err := repo.AttachPaymentInfo(7, "T1", "TOK1", "complete"); !domain.IsValidation(err) {
		t.Errorf("AttachPaymentInfo: want ValidationError, got %v", err)
	}
	if err := repo.UpdateReservationStatus(7, models.StatutConfirmee, "complete"); !domain.IsValidation(err) {
		t.Errorf("UpdateReservationStatus: want ValidationError, got %v", err)
	}
}
