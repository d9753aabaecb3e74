package storage

import (
	"context"
	"time"

	"linksite/internal/core"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Inquiry — заявка с формы контактов
type Inquiry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Company   string    `db:"company" json:"company"`
	Website   string    `db:"website" json:"website"`
	Budget    string    `db:"budget" json:"budget"`
	Message   string    `db:"message" json:"message"`
	IP        string    `db:"ip" json:"-"`
	UserAgent string    `db:"user_agent" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type InquiryRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewInquiryRepo(db *sqlx.DB) *InquiryRepo {
	return &InquiryRepo{db: db, now: time.Now}
}

// Create сохраняет заявку, проставляя ID (uuid) и время
func (r *InquiryRepo) Create(ctx context.Context, in *Inquiry) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.now().UTC()
	}

	const q = `
		INSERT INTO inquiries (id, name, email, company, website, budget, message, ip, user_agent, created_at)
		VALUES (:id, :name, :email, :company, :website, :budget, :message, :ip, :user_agent, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, q, in); err != nil {
		core.LogError("create inquiry", map[string]interface{}{"id": in.ID, "error": err.Error()})
		return err
	}
	return nil
}
