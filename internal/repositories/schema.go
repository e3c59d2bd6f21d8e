package repositories

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables when they do not exist yet. Kept additive:
// it never alters or drops existing tables.
func EnsureSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS compagnies (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			nom VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_compagnie_nom (nom)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS trajets (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			depart VARCHAR(255) NOT NULL,
			arrivee VARCHAR(255) NOT NULL,
			prix BIGINT NOT NULL DEFAULT 0,
			horaires JSON NULL,
			compagnie_id BIGINT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_trajets_depart (depart),
			KEY idx_trajets_arrivee (arrivee),
			KEY idx_trajets_compagnie (compagnie_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			nom VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			telephone VARCHAR(100) NULL,
			password_hash VARCHAR(255) NOT NULL,
			admin TINYINT(1) NOT NULL DEFAULT 0,
			compagnie_id BIGINT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			trajet_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			nb_places INT NOT NULL,
			horaire VARCHAR(20) NOT NULL,
			date_voyage VARCHAR(20) NOT NULL,
			nom_passager VARCHAR(255) NOT NULL,
			telephone_passager VARCHAR(100) NOT NULL,
			email_passager VARCHAR(255) NULL,
			montant_total BIGINT NOT NULL DEFAULT 0,
			statut VARCHAR(30) NOT NULL DEFAULT 'en_attente',
			statut_paiement VARCHAR(30) NOT NULL DEFAULT 'pending',
			fedapay_transaction_id VARCHAR(100) NULL,
			fedapay_token VARCHAR(255) NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_reservation_transaction (fedapay_transaction_id),
			KEY idx_reservations_user (user_id),
			KEY idx_reservations_trajet (trajet_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("préparation schéma: %w", err)
		}
	}
	return nil
}
