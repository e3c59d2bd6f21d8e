package models

import "time"

// Booking statuses stored on reservations.statut.
const (
	StatutEnAttente = "en_attente"
	StatutConfirmee = "confirmee"
	StatutAnnulee   = "annulee"
	StatutExpiree   = "expiree"
)

// Payment statuses as reported by FedaPay, stored on reservations.statut_paiement.
const (
	PaiementPending  = "pending"
	PaiementApproved = "approved"
	PaiementDeclined = "declined"
	PaiementCanceled = "canceled"
)

// Reservation is a passenger's booking request against a trajet. The payment
// gateway owns transaction status; this row owns booking status. Rows are
// never deleted: cancellation and expiry are status mutations.
type Reservation struct {
	ID                   int64     `json:"id"`
	TrajetID             int64     `json:"trajet_id"`
	UserID               int64     `json:"user_id"`
	NbPlaces             int       `json:"nb_places"`
	Horaire              string    `json:"horaire"`
	DateVoyage           string    `json:"date_voyage"`
	NomPassager          string    `json:"nom_passager"`
	TelephonePassager    string    `json:"telephone_passager"`
	EmailPassager        string    `json:"email_passager,omitempty"`
	MontantTotal         int64     `json:"montant_total"`
	Statut               string    `json:"statut"`
	StatutPaiement       string    `json:"statut_paiement"`
	FedapayTransactionID string    `json:"fedapay_transaction_id,omitempty"`
	FedapayToken         string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
}

// EstTerminale reports whether the booking status can no longer change
// through payment reconciliation.
func (r Reservation) EstTerminale() bool {
	switch r.Statut {
	case StatutConfirmee, StatutAnnulee, StatutExpiree:
		return true
	}
	return false
}

// StatutLabel maps stored statuses to the user-facing French labels.
func StatutLabel(statut string) string {
	switch statut {
	case PaiementPending, StatutEnAttente:
		return "En attente"
	case PaiementApproved:
		return "Payé"
	case PaiementDeclined:
		return "Refusé"
	case PaiementCanceled:
		return "Annulé"
	case StatutConfirmee:
		return "Confirmée"
	case StatutAnnulee:
		return "Annulée"
	case StatutExpiree:
		return "Expirée"
	}
	return statut
}

// PaiementValide reports whether s is one of the four canonical gateway
// statuses. Anything else is rejected before it reaches the store.
func PaiementValide(s string) bool {
	switch s {
	case PaiementPending, PaiementApproved, PaiementDeclined, PaiementCanceled:
		return true
	}
	return false
}
