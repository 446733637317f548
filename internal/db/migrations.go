package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'meeting_type') THEN
			CREATE TYPE meeting_type AS ENUM ('DISCOVERY', 'PROJECT');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'meeting_status') THEN
			CREATE TYPE meeting_status AS ENUM ('PENDING', 'CONFIRMED', 'AWAITING_CLIENT_DECISION', 'COMPLETED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'client_decision') THEN
			CREATE TYPE client_decision AS ENUM ('PENDING', 'ACCEPTED', 'REJECTED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'project_status') THEN
			CREATE TYPE project_status AS ENUM ('ACTIVE', 'COMPLETED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'milestone_status') THEN
			CREATE TYPE milestone_status AS ENUM ('PENDING', 'IN_PROGRESS', 'COMPLETED', 'APPROVED', 'REJECTED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_status') THEN
			CREATE TYPE payment_status AS ENUM ('PENDING', 'ESCROWED', 'RELEASED', 'REFUNDED', 'FAILED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'verification_state') THEN
			CREATE TYPE verification_state AS ENUM ('UNVERIFIED', 'PENDING', 'VERIFIED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		client_id UUID NOT NULL,
		freelancer_id UUID NOT NULL,
		type meeting_type NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
		status meeting_status NOT NULL DEFAULT 'PENDING',
		client_decision client_decision,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		meeting_id UUID REFERENCES meetings(id),
		client_id UUID NOT NULL,
		freelancer_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		total_amount NUMERIC(18,2) NOT NULL CHECK (total_amount > 0),
		status project_status NOT NULL DEFAULT 'ACTIVE',
		start_date TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_projects_meeting_id ON projects (meeting_id) WHERE meeting_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS milestones (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		amount NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		status milestone_status NOT NULL DEFAULT 'PENDING',
		due_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID REFERENCES projects(id),
		milestone_id UUID REFERENCES milestones(id),
		meeting_id UUID REFERENCES meetings(id),
		client_id UUID NOT NULL,
		freelancer_id UUID NOT NULL,
		amount NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		status payment_status NOT NULL DEFAULT 'PENDING',
		hold_ref VARCHAR(128),
		description TEXT NOT NULL DEFAULT '',
		released_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS verification_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		id_verification verification_state NOT NULL DEFAULT 'UNVERIFIED',
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
		portfolio_verified BOOLEAN NOT NULL DEFAULT FALSE,
		background_check verification_state NOT NULL DEFAULT 'UNVERIFIED',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_verification_user_id ON verification_records (user_id);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		recipient_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		type VARCHAR(64) NOT NULL,
		data JSONB,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_client_id ON meetings (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_freelancer_id ON meetings (freelancer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_scheduled_at ON meetings (scheduled_at);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client_id ON projects (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_freelancer_id ON projects (freelancer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_milestones_project_id ON milestones (project_id);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_project_id ON payments (project_id) WHERE project_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_payments_milestone_id ON payments (milestone_id) WHERE milestone_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_id ON notifications (recipient_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
