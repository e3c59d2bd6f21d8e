package services

import (
	"context"
	"fmt"
	"time"

	"busbenin/internal/domain"
	"busbenin/internal/domain/models"
	"busbenin/internal/events"
	"busbenin/internal/fedapay"
	"busbenin/internal/repositories"
	"busbenin/internal/utils"
)

// Gateway is the payment-gateway surface the flow needs. *fedapay.Client
// satisfies it; tests inject a fake.
type Gateway interface {
	CreateTransaction(ctx context.Context, p fedapay.TransactionParams) (fedapay.Transaction, error)
	CheckStatus(ctx context.Context, transactionID string) (string, error)
}

// ReservationService orchestre la réservation et la réconciliation du
// paiement: création de la réservation, création de la transaction FedaPay,
// puis recopie du statut observé côté gateway dans le statut stocké.
type ReservationService struct {
	ReservationRepo repositories.ReservationRepository
	TrajetRepo      repositories.TrajetRepository
	Gateway         Gateway
	Events          *events.Bus
	RequestID       string
}

// Mobile Money operators accepted on the booking form.
var operateursValides = map[string]bool{
	"mtn":     true,
	"moov":    true,
	"celtiis": true,
}

type ReservationInput struct {
	TrajetID          int64  `json:"trajet_id"`
	UserID            int64  `json:"-"`
	NbPlaces          int    `json:"nb_places"`
	Horaire           string `json:"horaire"`
	DateVoyage        string `json:"date_voyage"`
	NomPassager       string `json:"nom_passager"`
	TelephonePassager string `json:"telephone_passager"`
	EmailPassager     string `json:"email_passager"`
	OperateurMobile   string `json:"operateur_mobile"`
}

// PaymentIntent is what the caller needs to send the user to the payment
// page and come back for verification.
type PaymentIntent struct {
	ReservationID int64  `json:"reservation_id"`
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url"`
	MontantTotal  int64  `json:"montant_total"`
}

// ReconcileResult reports one reconciliation attempt.
type ReconcileResult struct {
	ReservationID  int64  `json:"reservation_id"`
	Statut         string `json:"statut"`
	StatutPaiement string `json:"statut_paiement"`
	Terminal       bool   `json:"terminal"`
	Message        string `json:"message"`
}

// Validate checks the booking input. No side effects: every rejection here
// happens before any remote call.
func (in ReservationInput) Validate() error {
	if in.TrajetID <= 0 {
		return domain.ValidationError{Field: "trajet_id", Msg: "trajet requis"}
	}
	if in.NbPlaces < 1 || in.NbPlaces > 10 {
		return domain.ValidationError{Field: "nb_places", Msg: "le nombre de places doit être entre 1 et 10"}
	}
	if utils.TrimOrEmpty(in.Horaire) == "" {
		return domain.ValidationError{Field: "horaire", Msg: "veuillez sélectionner un horaire"}
	}
	if utils.TrimOrEmpty(in.DateVoyage) == "" {
		return domain.ValidationError{Field: "date_voyage", Msg: "veuillez sélectionner une date de voyage"}
	}
	if _, err := utils.ParseDate(in.DateVoyage); err != nil {
		return domain.ValidationError{Field: "date_voyage", Msg: "date invalide (format AAAA-MM-JJ)"}
	}
	if utils.DateInPast(in.DateVoyage, time.Now()) {
		return domain.ValidationError{Field: "date_voyage", Msg: "la date de voyage ne peut pas être dans le passé"}
	}
	if utils.TrimOrEmpty(in.NomPassager) == "" {
		return domain.ValidationError{Field: "nom_passager", Msg: "veuillez entrer votre nom"}
	}
	if !utils.ValidPhoneBJ(in.TelephonePassager) {
		return domain.ValidationError{Field: "telephone_passager", Msg: "le numéro doit être au format +22901XXXXXXXX"}
	}
	if !operateursValides[in.OperateurMobile] {
		return domain.ValidationError{Field: "operateur_mobile", Msg: "veuillez sélectionner votre opérateur Mobile Money"}
	}
	return nil
}

// CreateAndPay runs the booking sequence: create the reservation row
// (en_attente/pending), create the matching gateway transaction, attach the
// correlation identifiers. If the gateway call fails after the row exists,
// the reservation is left orphaned (no payment info, nothing will ever poll
// it): it is logged and the error surfaced, with no rollback.
func (s ReservationService) CreateAndPay(ctx context.Context, in ReservationInput) (PaymentIntent, error) {
	if err := in.Validate(); err != nil {
		return PaymentIntent{}, err
	}

	trajet, err := s.TrajetRepo.GetByID(in.TrajetID)
	if err != nil {
		return PaymentIntent{}, err
	}
	if len(trajet.Horaires) > 0 && !trajet.SertHoraire(in.Horaire) {
		return PaymentIntent{}, domain.ValidationError{Field: "horaire", Msg: "horaire non desservi sur ce trajet"}
	}

	montant := trajet.Prix * int64(in.NbPlaces)

	reservationID, err := s.ReservationRepo.CreateReservation(models.Reservation{
		TrajetID:          in.TrajetID,
		UserID:            in.UserID,
		NbPlaces:          in.NbPlaces,
		Horaire:           in.Horaire,
		DateVoyage:        in.DateVoyage,
		NomPassager:       utils.NormalizeSpace(in.NomPassager),
		TelephonePassager: utils.TrimOrEmpty(in.TelephonePassager),
		EmailPassager:     utils.TrimOrEmpty(in.EmailPassager),
		MontantTotal:      montant,
	})
	if err != nil {
		return PaymentIntent{}, err
	}
	_ = s.Events.PublishReservation(events.ReservationEvent{
		ReservationID:  reservationID,
		Action:         events.ActionCreated,
		Statut:         models.StatutEnAttente,
		StatutPaiement: models.PaiementPending,
	})

	tx, err := s.Gateway.CreateTransaction(ctx, fedapay.TransactionParams{
		Amount: montant,
		Description: fmt.Sprintf("Réservation %s → %s - %d place(s) - %s",
			trajet.Depart, trajet.Arrivee, in.NbPlaces, utils.FormatFCFA(montant)),
		CustomerName:  in.NomPassager,
		CustomerEmail: in.EmailPassager,
		CustomerPhone: in.TelephonePassager,
		Operator:      in.OperateurMobile,
	})
	if err != nil {
		// The row exists but no transaction will ever reference it.
		utils.LogEvent(s.RequestID, "reservation", "orphan_reservation",
			fmt.Sprintf("reservation_id=%d err=%v", reservationID, err))
		return PaymentIntent{}, err
	}

	if err := s.ReservationRepo.AttachPaymentInfo(reservationID, tx.ID, tx.PaymentToken, models.PaiementPending); err != nil {
		// Transaction created but not linked: same operational debt as the
		// orphan case, with the transaction id in the log for manual repair.
		utils.LogEvent(s.RequestID, "reservation", "unlinked_transaction",
			fmt.Sprintf("reservation_id=%d transaction_id=%s err=%v", reservationID, tx.ID, err))
		return PaymentIntent{}, err
	}
	_ = s.Events.PublishReservation(events.ReservationEvent{
		ReservationID:        reservationID,
		Action:               events.ActionPaymentAttached,
		Statut:               models.StatutEnAttente,
		StatutPaiement:       models.PaiementPending,
		FedapayTransactionID: tx.ID,
	})

	utils.LogEvent(s.RequestID, "reservation", "create_and_pay",
		fmt.Sprintf("reservation_id=%d transaction_id=%s montant=%d", reservationID, tx.ID, montant))

	return PaymentIntent{
		ReservationID: reservationID,
		TransactionID: tx.ID,
		PaymentURL:    tx.PaymentURL,
		MontantTotal:  montant,
	}, nil
}

// statusTransition maps an observed gateway status to the stored pair.
// write=false means the attempt changes nothing (still pending).
func statusTransition(gatewayStatus string) (statut, statutPaiement string, write bool) {
	switch gatewayStatus {
	case fedapay.StatusApproved:
		return models.StatutConfirmee, models.PaiementApproved, true
	case fedapay.StatusDeclined:
		return models.StatutAnnulee, models.PaiementDeclined, true
	case fedapay.StatusCanceled:
		return models.StatutAnnulee, models.PaiementCanceled, true
	default:
		// pending, or a status this flow does not know: leave everything
		// unchanged rather than guessing.
		return "", "", false
	}
}

// VerifyPayment reconciles the gateway's observed transaction status into
// the reservation's stored status. Caller-driven: nothing schedules it. The
// status check strictly precedes any store write. A failed check changes
// nothing and can simply be re-invoked; a failed store write after a
// terminal gateway status is logged as a reconcile gap and surfaced, with
// no compensating retry.
func (s ReservationService) VerifyPayment(ctx context.Context, reservationID int64) (ReconcileResult, error) {
	res, err := s.ReservationRepo.GetByID(reservationID)
	if err != nil {
		return ReconcileResult{}, err
	}

	if res.EstTerminale() {
		// Terminal transitions stop the polling: answer from the store.
		return ReconcileResult{
			ReservationID:  res.ID,
			Statut:         res.Statut,
			StatutPaiement: res.StatutPaiement,
			Terminal:       true,
			Message:        models.StatutLabel(res.Statut),
		}, nil
	}

	if res.FedapayTransactionID == "" {
		return ReconcileResult{}, domain.ValidationError{Field: "reservation", Msg: "aucune transaction de paiement trouvée"}
	}

	status, err := s.Gateway.CheckStatus(ctx, res.FedapayTransactionID)
	if err != nil {
		return ReconcileResult{}, err
	}

	statut, statutPaiement, write := statusTransition(status)
	if !write {
		return ReconcileResult{
			ReservationID:  res.ID,
			Statut:         res.Statut,
			StatutPaiement: res.StatutPaiement,
			Terminal:       false,
			Message:        "Paiement toujours en attente",
		}, nil
	}

	if err := s.ReservationRepo.UpdateReservationStatus(res.ID, statut, statutPaiement); err != nil {
		// The gateway holds a terminal status the store does not: the one
		// genuine risk window of this flow. No automatic repair; logged for
		// operators, error surfaced to the caller.
		utils.LogEvent(s.RequestID, "reservation", "reconcile_gap",
			fmt.Sprintf("reservation_id=%d transaction_id=%s statut_gateway=%s err=%v",
				res.ID, res.FedapayTransactionID, status, err))
		return ReconcileResult{}, err
	}

	_ = s.Events.PublishReservation(events.ReservationEvent{
		ReservationID:        res.ID,
		Action:               events.ActionReconciled,
		Statut:               statut,
		StatutPaiement:       statutPaiement,
		FedapayTransactionID: res.FedapayTransactionID,
	})

	utils.LogEvent(s.RequestID, "reservation", "reconcile",
		fmt.Sprintf("reservation_id=%d statut=%s statut_paiement=%s", res.ID, statut, statutPaiement))

	return ReconcileResult{
		ReservationID:  res.ID,
		Statut:         statut,
		StatutPaiement: statutPaiement,
		Terminal:       true,
		Message:        models.StatutLabel(statutPaiement),
	}, nil
}

// Cancel asks the store to cancel. The store enforces the rule (only while
// statut is still en_attente); false means "cannot cancel" and is never
// retried here.
func (s ReservationService) Cancel(ctx context.Context, reservationID int64) (bool, error) {
	_ = ctx

	ok, err := s.ReservationRepo.CancelReservation(reservationID)
	if err != nil {
		return false, err
	}
	if ok {
		_ = s.Events.PublishReservation(events.ReservationEvent{
			ReservationID: reservationID,
			Action:        events.ActionCanceled,
			Statut:        models.StatutAnnulee,
		})
		utils.LogEvent(s.RequestID, "reservation", "cancel", fmt.Sprintf("reservation_id=%d", reservationID))
	}
	return ok, nil
}

// Get returns the reservation when the caller owns it or is an admin.
func (s ReservationService) Get(reservationID int64, rc domain.RequestContext) (models.Reservation, error) {
	res, err := s.ReservationRepo.GetByID(reservationID)
	if err != nil {
		return models.Reservation{}, err
	}
	if !rc.Admin && res.UserID != int64(rc.UserID) {
		return models.Reservation{}, domain.NotFoundError{Resource: "reservation"}
	}
	return res, nil
}

// ListFor returns the reservations visible to the caller: admins see all,
// compagnie accounts see their trajets' reservations, users see their own.
func (s ReservationService) ListFor(rc domain.RequestContext, adminView bool) ([]models.Reservation, error) {
	if adminView {
		if rc.Admin {
			return s.ReservationRepo.ListAll()
		}
		if rc.CompagnieID > 0 {
			return s.ReservationRepo.ListByCompagnie(int64(rc.CompagnieID))
		}
		return nil, domain.ValidationError{Field: "role", Msg: "accès réservé"}
	}
	return s.ReservationRepo.ListByUser(int64(rc.UserID))
}
