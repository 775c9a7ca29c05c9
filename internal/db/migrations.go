package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "postgis";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'report_status') THEN
			CREATE TYPE report_status AS ENUM ('PENDING', 'APPROVED', 'REJECTED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'handling_status') THEN
			CREATE TYPE handling_status AS ENUM ('NOT_HANDLED', 'HANDLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'report_severity') THEN
			CREATE TYPE report_severity AS ENUM ('RINGAN', 'SEDANG', 'BERAT');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		reporter_name VARCHAR(255) NOT NULL,
		contact VARCHAR(64) NOT NULL,
		village VARCHAR(255),
		asset_name VARCHAR(255) NOT NULL,
		damage_type VARCHAR(128) NOT NULL,
		severity report_severity NOT NULL,
		description TEXT,
		photos TEXT[] NOT NULL DEFAULT '{}',
		location GEOMETRY(Point, 4326) NOT NULL,
		status report_status NOT NULL DEFAULT 'PENDING',
		handling_status handling_status NOT NULL DEFAULT 'NOT_HANDLED',
		submitted_at TIMESTAMPTZ NOT NULL,
		reviewed_at TIMESTAMPTZ,
		reviewed_by_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		review_note TEXT,
		auto_approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_location ON reports USING GIST (location);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_submitted_at ON reports (submitted_at);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status_submitted_at ON reports (status, submitted_at);`,
	`CREATE TABLE IF NOT EXISTS report_disputes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		reason TEXT NOT NULL,
		reporter_name VARCHAR(255),
		contact VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_disputes_report_id ON report_disputes (report_id);`,
	`CREATE INDEX IF NOT EXISTS idx_report_disputes_created_at ON report_disputes (created_at);`,
	`CREATE TABLE IF NOT EXISTS report_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		old_status report_status,
		new_status report_status NOT NULL,
		note TEXT,
		changed_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_status_log_report_id ON report_status_log (report_id);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_reports_updated_at') THEN
			CREATE TRIGGER trg_reports_updated_at
				BEFORE UPDATE ON reports
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
