package models

import "time"

// Trajet is a route offering: depart/arrivee cities, a per-seat price in
// FCFA and the departure time slots served.
type Trajet struct {
	ID          int64     `json:"id"`
	Depart      string    `json:"depart"`
	Arrivee     string    `json:"arrivee"`
	Prix        int64     `json:"prix"`
	Horaires    []string  `json:"horaires"`
	CompagnieID int64     `json:"compagnie_id"`
	Compagnie   string    `json:"compagnie,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SertHoraire reports whether the trajet serves the given departure slot.
func (t Trajet) SertHoraire(horaire string) bool {
	for _, h := range t.Horaires {
		if h == horaire {
			return true
		}
	}
	return false
}

type Compagnie struct {
	ID  int64  `json:"id"`
	Nom string `json:"nom"`
}
