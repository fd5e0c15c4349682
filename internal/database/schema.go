package database

import (
	"context"
	"database/sql"
)

// Schema statements executed at startup. Collections that were embedded
// documents in earlier iterations of the product (photos, documents,
// customer, details) live in JSON columns; ids are CHAR(24) hex strings
// assigned by the application, never by the database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(24) PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'user',
		active        TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME     NOT NULL,
		updated_at    DATETIME     NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id         CHAR(24) PRIMARY KEY,
		brand      VARCHAR(255) NOT NULL,
		model      VARCHAR(255) NOT NULL,
		year       INT          NOT NULL,
		price      DOUBLE       NOT NULL,
		color      VARCHAR(64)  NOT NULL,
		status     VARCHAR(32)  NOT NULL DEFAULT 'Available',
		details    JSON         NULL,
		photos     JSON         NOT NULL,
		documents  JSON         NOT NULL,
		created_by CHAR(24)     NOT NULL,
		created_at DATETIME     NOT NULL,
		updated_at DATETIME     NOT NULL,
		KEY idx_vehicles_status (status),
		KEY idx_vehicles_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sales (
		id             CHAR(24) PRIMARY KEY,
		vehicle_id     CHAR(24)    NOT NULL,
		sale_price     DOUBLE      NOT NULL,
		customer       JSON        NOT NULL,
		payment_method VARCHAR(32) NOT NULL,
		date           DATETIME    NOT NULL,
		notes          TEXT        NULL,
		status         VARCHAR(16) NOT NULL DEFAULT 'completed',
		documents      JSON        NOT NULL,
		created_by     CHAR(24)    NOT NULL,
		created_at     DATETIME    NOT NULL,
		updated_at     DATETIME    NOT NULL,
		KEY idx_sales_vehicle (vehicle_id),
		KEY idx_sales_date (date),
		KEY idx_sales_status (status),
		KEY idx_sales_created_by (created_by)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id             CHAR(24) PRIMARY KEY,
		type           VARCHAR(16) NOT NULL,
		category       VARCHAR(32) NOT NULL,
		description    TEXT        NOT NULL,
		amount         DOUBLE      NOT NULL,
		date           DATETIME    NOT NULL,
		payment_method VARCHAR(32) NOT NULL,
		status         VARCHAR(16) NOT NULL DEFAULT 'pending',
		vehicle_id     CHAR(24)    NULL,
		attachments    JSON        NOT NULL,
		notes          TEXT        NULL,
		created_by     CHAR(24)    NOT NULL,
		created_at     DATETIME    NOT NULL,
		updated_at     DATETIME    NOT NULL,
		KEY idx_tx_type (type),
		KEY idx_tx_category (category),
		KEY idx_tx_date (date),
		KEY idx_tx_created_by (created_by)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// There are intentionally no foreign keys on vehicle_id: deleting a
// vehicle leaves historical sales and transactions pointing at it, and
// readers resolve the reference as null.

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
