package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"improvdb/contexts/identity-access/user-directory/domain/entities"
	domainerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
	"improvdb/contexts/identity-access/user-directory/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"email":          row.Email,
			"name":           row.Name,
			"first_name":     row.FirstName,
			"last_name":      row.LastName,
			"company":        row.Company,
			"city":           row.City,
			"state":          row.State,
			"country":        row.Country,
			"phone":          row.Phone,
			"url":            row.URL,
			"title":          row.Title,
			"date_logged_in": row.DateLoggedIn,
			"date_modified":  time.Now().UTC(),
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("user_directory_repo_save_user_failed", create.Error, "user_id", row.ID)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("user_directory_repo_get_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SetLocked(ctx context.Context, userID string, locked bool, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", strings.TrimSpace(userID)).
		Updates(map[string]any{
			"locked":        locked,
			"date_modified": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("user_directory_repo_set_locked_failed", result.Error,
			"user_id", strings.TrimSpace(userID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) TouchLogin(ctx context.Context, userID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", strings.TrimSpace(userID)).
		Update("date_logged_in", at.UTC())
	if result.Error != nil {
		return r.logError("user_directory_repo_touch_login_failed", result.Error,
			"user_id", strings.TrimSpace(userID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/user-directory",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("user directory repository operation failed", fields...)
	return err
}

type userModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Email        string     `gorm:"column:email"`
	Name         string     `gorm:"column:name"`
	FirstName    string     `gorm:"column:first_name"`
	LastName     string     `gorm:"column:last_name"`
	Company      string     `gorm:"column:company"`
	City         string     `gorm:"column:city"`
	State        string     `gorm:"column:state"`
	Country      string     `gorm:"column:country"`
	Phone        string     `gorm:"column:phone"`
	URL          string     `gorm:"column:url"`
	Title        string     `gorm:"column:title"`
	Locked       bool       `gorm:"column:locked"`
	SuperAdmin   bool       `gorm:"column:super_admin"`
	DateLoggedIn time.Time  `gorm:"column:date_logged_in"`
	Status       string     `gorm:"column:status"`
	DateAdded    time.Time  `gorm:"column:date_added"`
	DateModified *time.Time `gorm:"column:date_modified"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	row := userModel{
		ID:           strings.TrimSpace(user.UserID),
		Email:        strings.TrimSpace(user.Email),
		Name:         strings.TrimSpace(user.Name),
		FirstName:    strings.TrimSpace(user.FirstName),
		LastName:     strings.TrimSpace(user.LastName),
		Company:      strings.TrimSpace(user.Company),
		City:         strings.TrimSpace(user.City),
		State:        strings.TrimSpace(user.State),
		Country:      strings.TrimSpace(user.Country),
		Phone:        strings.TrimSpace(user.Phone),
		URL:          strings.TrimSpace(user.URL),
		Title:        strings.TrimSpace(user.Title),
		Locked:       user.Locked,
		SuperAdmin:   user.SuperAdmin,
		DateLoggedIn: user.DateLoggedIn.UTC(),
		Status:       string(user.Status),
		DateAdded:    user.DateAdded.UTC(),
		DateModified: user.DateModified,
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	if row.Status == "" {
		row.Status = string(entities.StatusActive)
	}
	return row
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.ID,
		Email:        m.Email,
		Name:         m.Name,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Company:      m.Company,
		City:         m.City,
		State:        m.State,
		Country:      m.Country,
		Phone:        m.Phone,
		URL:          m.URL,
		Title:        m.Title,
		Locked:       m.Locked,
		SuperAdmin:   m.SuperAdmin,
		DateLoggedIn: m.DateLoggedIn.UTC(),
		Status:       entities.RecordStatus(m.Status),
		DateAdded:    m.DateAdded.UTC(),
		DateModified: m.DateModified,
	}
}

var _ ports.UserRepository = (*Repository)(nil)
